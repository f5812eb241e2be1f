package repository

import (
	"context"
	"errors"
	"time"

	"dhammasound/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateAudio is returned when an audio is already a member of a
// playlist with set semantics.
var ErrDuplicateAudio = errors.New("audio already in playlist")

// PlaylistWithCount is the list projection carrying the number of active
// audios in each playlist.
type PlaylistWithCount struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	CoverImage  string `json:"coverImage"`
	Description string `json:"description"`
	Type        string `json:"type"`
	AudioCount  int64  `json:"audioCount"`
}

// PlaylistRepository is the data access interface for playlists and their
// membership rows.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	// DeleteCascade removes the playlist together with its join rows.
	DeleteCascade(ctx context.Context, playlistID int64) error

	FindByTypeForUser(ctx context.Context, userID int64, playlistType string) (*model.Playlist, error)
	FindBySlugForUser(ctx context.Context, userID int64, slug string) (*model.Playlist, error)
	FindCreateBySlugForUser(ctx context.Context, userID int64, slug string) (*model.Playlist, error)

	ListForUser(ctx context.Context, userID int64, types []string) ([]model.Playlist, error)
	ListForUserWithCounts(ctx context.Context, userID int64, types []string) ([]PlaylistWithCount, error)

	// HistoryEntries returns every join row of the playlist whose audio is
	// still active, with album and priest loaded, unordered.
	HistoryEntries(ctx context.Context, playlistID int64) ([]model.PlaylistAudio, error)
	// MemberEntries returns the join rows of the playlist whose audio is
	// still active, most recently updated first.
	MemberEntries(ctx context.Context, playlistID int64) ([]model.PlaylistAudio, error)

	LatestJoin(ctx context.Context, playlistID, audioID int64) (*model.PlaylistAudio, error)
	// AddAudio inserts a join row under a per-playlist lock. With dedupe
	// set, an existing row yields ErrDuplicateAudio; otherwise a row newer
	// than the throttle window makes the call a no-op (returns false).
	AddAudio(ctx context.Context, playlistID, audioID int64, dedupe bool, throttle time.Duration, now time.Time) (bool, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM-backed playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *gormPlaylistRepository) DeleteCascade(ctx context.Context, playlistID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlistID).
			Delete(&model.PlaylistAudio{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Playlist{}, playlistID).Error
	})
}

func (r *gormPlaylistRepository) FindByTypeForUser(ctx context.Context, userID int64, playlistType string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, playlistType).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) FindBySlugForUser(ctx context.Context, userID int64, slug string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND slug = ?", userID, slug).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) FindCreateBySlugForUser(ctx context.Context, userID int64, slug string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND slug = ? AND type = ?", userID, slug, model.PlaylistTypeCreate).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) ListForUser(ctx context.Context, userID int64, types []string) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND type IN ?", userID, true, types).
		Find(&playlists).Error
	return playlists, err
}

func (r *gormPlaylistRepository) ListForUserWithCounts(ctx context.Context, userID int64, types []string) ([]PlaylistWithCount, error) {
	var rows []PlaylistWithCount
	err := r.db.WithContext(ctx).
		Table("playlists").
		Select("playlists.slug, playlists.name, playlists.cover_image, playlists.description, playlists.type, COUNT(audios.id) AS audio_count").
		Joins("LEFT JOIN playlist_audios ON playlist_audios.playlist_id = playlists.id").
		Joins("LEFT JOIN audios ON audios.id = playlist_audios.audio_id AND audios.is_active = ?", true).
		Where("playlists.user_id = ? AND playlists.is_active = ? AND playlists.type IN ?", userID, true, types).
		Group("playlists.id, playlists.slug, playlists.name, playlists.cover_image, playlists.description, playlists.type").
		Scan(&rows).Error
	return rows, err
}

func (r *gormPlaylistRepository) HistoryEntries(ctx context.Context, playlistID int64) ([]model.PlaylistAudio, error) {
	var entries []model.PlaylistAudio
	err := r.db.WithContext(ctx).
		Joins("JOIN audios ON audios.id = playlist_audios.audio_id AND audios.is_active = ?", true).
		Where("playlist_audios.playlist_id = ?", playlistID).
		Preload("Audio").
		Preload("Audio.Album").
		Preload("Audio.Album.Priest").
		Find(&entries).Error
	return entries, err
}

func (r *gormPlaylistRepository) MemberEntries(ctx context.Context, playlistID int64) ([]model.PlaylistAudio, error) {
	var entries []model.PlaylistAudio
	err := r.db.WithContext(ctx).
		Joins("JOIN audios ON audios.id = playlist_audios.audio_id AND audios.is_active = ?", true).
		Where("playlist_audios.playlist_id = ?", playlistID).
		Order("playlist_audios.updated_at DESC").
		Preload("Audio").
		Preload("Audio.Album").
		Preload("Audio.Album.Priest").
		Find(&entries).Error
	return entries, err
}

func (r *gormPlaylistRepository) LatestJoin(ctx context.Context, playlistID, audioID int64) (*model.PlaylistAudio, error) {
	var entry model.PlaylistAudio
	err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND audio_id = ?", playlistID, audioID).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *gormPlaylistRepository) AddAudio(ctx context.Context, playlistID, audioID int64, dedupe bool, throttle time.Duration, now time.Time) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent adds to the same playlist on its row lock.
		// sqlite has no FOR UPDATE; there the database write lock already
		// serializes the transaction.
		playlistQuery := tx.Model(&model.Playlist{})
		if tx.Dialector.Name() == "mysql" {
			playlistQuery = playlistQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var locked model.Playlist
		if err := playlistQuery.Where("id = ?", playlistID).First(&locked).Error; err != nil {
			return err
		}

		var latest model.PlaylistAudio
		err := tx.Where("playlist_id = ? AND audio_id = ?", playlistID, audioID).
			Order("created_at DESC").
			First(&latest).Error
		switch {
		case err == nil:
			if dedupe {
				return ErrDuplicateAudio
			}
			if now.Sub(latest.CreatedAt) < throttle {
				// Recent repeat play; drop it silently.
				return nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First membership row for this pair.
		default:
			return err
		}

		entry := model.PlaylistAudio{
			PlaylistID: playlistID,
			AudioID:    audioID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}
