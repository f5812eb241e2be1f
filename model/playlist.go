package model

import "time"

// Playlist types. Every user owns exactly one DEFAULT ("favorites") and
// one HISTORY playlist, both provisioned with the account; CREATE
// playlists are user-authored.
const (
	PlaylistTypeDefault = "DEFAULT"
	PlaylistTypeHistory = "HISTORY"
	PlaylistTypeCreate  = "CREATE"
)

// Playlist is a named audio collection owned by one user. Its slug is an
// opaque generated token; system playlists are addressed by type, not slug.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"size:512;not null"`
	CoverImage  string    `json:"coverImage" gorm:"size:512;not null;default:'/images/default/album-default.png'"`
	Slug        string    `json:"slug" gorm:"size:64;uniqueIndex;not null"`
	UserID      int64     `json:"userId" gorm:"index;not null"`
	Type        string    `json:"type" gorm:"size:10;default:'CREATE';not null"`
	// IsPrivate has no column default: false must survive the insert.
	IsPrivate bool      `json:"isPrivate" gorm:"not null"`
	IsActive  bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User   *User           `json:"-" gorm:"foreignKey:UserID"`
	Audios []PlaylistAudio `json:"-" gorm:"foreignKey:PlaylistID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name.
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistAudio is the join record placing one audio in one playlist.
// (playlist_id, audio_id) is deliberately NOT unique: HISTORY playlists
// accumulate one row per (throttled) play.
type PlaylistAudio struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlistId" gorm:"index;not null"`
	AudioID    int64     `json:"audioId" gorm:"index;not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Playlist *Playlist `json:"-" gorm:"foreignKey:PlaylistID"`
	Audio    *Audio    `json:"audio,omitempty" gorm:"foreignKey:AudioID"`
}

// TableName specifies the table name.
func (PlaylistAudio) TableName() string {
	return "playlist_audios"
}
