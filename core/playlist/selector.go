package playlist

import "dhammasound/model"

// SelectorKind tags how a playlist reference should be resolved.
type SelectorKind int

const (
	// SelectDefault addresses the caller's favorites playlist by type.
	SelectDefault SelectorKind = iota
	// SelectHistory addresses the caller's history playlist by type.
	SelectHistory
	// SelectBySlug addresses one of the caller's created playlists by slug.
	SelectBySlug
)

// Selector identifies one of the caller's playlists: either a reserved
// word ("DEFAULT"/"HISTORY") for a system playlist, or the slug of a
// created one. System playlist slugs are opaque and never routed on.
type Selector struct {
	Kind SelectorKind
	Slug string
}

// ParseSelector classifies a raw selector string.
func ParseSelector(raw string) Selector {
	switch raw {
	case model.PlaylistTypeDefault:
		return Selector{Kind: SelectDefault}
	case model.PlaylistTypeHistory:
		return Selector{Kind: SelectHistory}
	default:
		return Selector{Kind: SelectBySlug, Slug: raw}
	}
}

// IsHistory reports whether the selector addresses the history playlist.
func (s Selector) IsHistory() bool {
	return s.Kind == SelectHistory
}
