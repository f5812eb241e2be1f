// Package playlist implements the member playlist workflow: the two
// system playlists every account owns, user-created playlists, and the
// admission rules for adding audio to them.
package playlist

import (
	"context"
	"errors"
	"time"

	"dhammasound/logger"
	"dhammasound/model"
	"dhammasound/repository"

	"github.com/google/uuid"
)

// HistoryThrottle is the window within which a repeated play of the same
// audio is not written to the history again. It absorbs client double
// fires without client-side debouncing.
const HistoryThrottle = 60 * time.Second

var (
	// ErrPlaylistNotFound covers absent playlists and playlists owned by
	// someone else; the two cases are deliberately indistinguishable.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrAudioNotFound covers absent and inactive audio.
	ErrAudioNotFound = errors.New("audio not found")
	// ErrAlreadyInPlaylist is returned for duplicate membership in
	// non-history playlists.
	ErrAlreadyInPlaylist = errors.New("audio already in playlist")
)

// Workflow manages a user's playlists.
type Workflow struct {
	playlists repository.PlaylistRepository
	audios    repository.AudioRepository
	throttle  time.Duration
	now       func() time.Time
}

// NewWorkflow creates a playlist workflow over the given repositories.
func NewWorkflow(playlists repository.PlaylistRepository, audios repository.AudioRepository) *Workflow {
	return &Workflow{
		playlists: playlists,
		audios:    audios,
		throttle:  HistoryThrottle,
		now:       time.Now,
	}
}

var memberTypes = []string{
	model.PlaylistTypeDefault,
	model.PlaylistTypeHistory,
	model.PlaylistTypeCreate,
}

// ListPlaylists returns the caller's active playlists: both system
// playlists plus any created ones.
func (w *Workflow) ListPlaylists(ctx context.Context, userID int64) ([]model.Playlist, error) {
	return w.playlists.ListForUser(ctx, userID, memberTypes)
}

// ListPlaylistsWithCounts is ListPlaylists with the active-audio count of
// each playlist; empty playlists are listed with a zero count.
func (w *Workflow) ListPlaylistsWithCounts(ctx context.Context, userID int64) ([]repository.PlaylistWithCount, error) {
	return w.playlists.ListForUserWithCounts(ctx, userID, memberTypes)
}

// Resolve finds the caller's playlist addressed by the selector.
func (w *Workflow) Resolve(ctx context.Context, userID int64, sel Selector) (*model.Playlist, error) {
	var (
		found *model.Playlist
		err   error
	)
	switch sel.Kind {
	case SelectDefault:
		found, err = w.playlists.FindByTypeForUser(ctx, userID, model.PlaylistTypeDefault)
	case SelectHistory:
		found, err = w.playlists.FindByTypeForUser(ctx, userID, model.PlaylistTypeHistory)
	default:
		found, err = w.playlists.FindBySlugForUser(ctx, userID, sel.Slug)
	}
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrPlaylistNotFound
	}
	return found, nil
}

// Detail resolves the playlist and loads its member audio. History is
// returned whole and unordered; every other playlist is ordered by the
// join record's most recent update.
func (w *Workflow) Detail(ctx context.Context, userID int64, sel Selector) (*model.Playlist, []model.PlaylistAudio, error) {
	found, err := w.Resolve(ctx, userID, sel)
	if err != nil {
		return nil, nil, err
	}

	var entries []model.PlaylistAudio
	if sel.IsHistory() {
		entries, err = w.playlists.HistoryEntries(ctx, found.ID)
	} else {
		entries, err = w.playlists.MemberEntries(ctx, found.ID)
	}
	if err != nil {
		return nil, nil, err
	}
	return found, entries, nil
}

// AddAudio adds the audio to the playlist addressed by the selector.
//
// Non-history playlists behave as sets: a second add of the same audio is
// rejected with ErrAlreadyInPlaylist, even when the audio itself has
// since gone missing. History accumulates repeats, except that a repeat
// within the throttle window is silently dropped; the returned bool
// reports whether a row was actually written.
func (w *Workflow) AddAudio(ctx context.Context, userID int64, sel Selector, audioID int64) (bool, error) {
	found, err := w.Resolve(ctx, userID, sel)
	if err != nil {
		return false, err
	}

	latest, err := w.playlists.LatestJoin(ctx, found.ID, audioID)
	if err != nil {
		return false, err
	}
	audio, err := w.audios.GetActiveByID(ctx, audioID)
	if err != nil {
		return false, err
	}

	if latest != nil && !sel.IsHistory() {
		return false, ErrAlreadyInPlaylist
	}
	if audio == nil {
		return false, ErrAudioNotFound
	}

	throttle := time.Duration(0)
	if sel.IsHistory() {
		throttle = w.throttle
	}
	added, err := w.playlists.AddAudio(ctx, found.ID, audio.ID, !sel.IsHistory(), throttle, w.now())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAudio) {
			return false, ErrAlreadyInPlaylist
		}
		return false, err
	}
	if !added {
		logger.Debug("history write throttled",
			logger.Int64("playlistId", found.ID),
			logger.Int64("audioId", audioID))
	}
	return added, nil
}

// Create makes a new user-authored playlist. The slug is an opaque token,
// not derived from the name: names need not be unique.
func (w *Workflow) Create(ctx context.Context, userID int64, name, description string, isPrivate bool, coverImage string) (*model.Playlist, error) {
	created := &model.Playlist{
		Name:        name,
		Description: description,
		Slug:        uuid.NewString(),
		UserID:      userID,
		Type:        model.PlaylistTypeCreate,
		IsPrivate:   isPrivate,
	}
	if coverImage != "" {
		created.CoverImage = coverImage
	}
	if err := w.playlists.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes one of the caller's created playlists together with its
// membership rows. System playlists and foreign slugs resolve to
// ErrPlaylistNotFound.
func (w *Workflow) Delete(ctx context.Context, userID int64, slug string) error {
	found, err := w.playlists.FindCreateBySlugForUser(ctx, userID, slug)
	if err != nil {
		return err
	}
	if found == nil {
		return ErrPlaylistNotFound
	}
	return w.playlists.DeleteCascade(ctx, found.ID)
}
