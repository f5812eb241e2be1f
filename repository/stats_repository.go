package repository

import (
	"context"
	"time"

	"dhammasound/model"

	"gorm.io/gorm"
)

// Thai month labels for the dashboard chart, January first.
var thaiMonths = []string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// DashboardCounts aggregates the headline numbers of the admin dashboard.
type DashboardCounts struct {
	UserCount     int64 `json:"userCount"`
	AlbumCount    int64 `json:"albumCount"`
	ContactCount  int64 `json:"contactCount"`
	PlaylistCount int64 `json:"playlistCount"` // plays recorded this year
}

// MonthlyPlays is one bar of the plays-per-month chart.
type MonthlyPlays struct {
	Month int    `json:"month"`
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// StatsRepository serves the admin dashboard aggregates.
type StatsRepository interface {
	Counts(ctx context.Context, now time.Time) (*DashboardCounts, error)
	// PlaysByMonth returns twelve entries for the year of now, zero-filled.
	PlaysByMonth(ctx context.Context, now time.Time) ([]MonthlyPlays, error)
}

type gormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a GORM-backed stats repository.
func NewGormStatsRepository(db *gorm.DB) StatsRepository {
	return &gormStatsRepository{db: db}
}

func yearBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(1, 0, 0)
}

func (r *gormStatsRepository) Counts(ctx context.Context, now time.Time) (*DashboardCounts, error) {
	var counts DashboardCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.User{}).Count(&counts.UserCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Album{}).Count(&counts.AlbumCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Contact{}).
		Where("is_active = ? AND is_reply = ?", true, false).
		Count(&counts.ContactCount).Error; err != nil {
		return nil, err
	}
	start, end := yearBounds(now)
	if err := db.Model(&model.PlaylistAudio{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&counts.PlaylistCount).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *gormStatsRepository) PlaysByMonth(ctx context.Context, now time.Time) ([]MonthlyPlays, error) {
	// The year filter uses portable range bounds; only the month bucket
	// expression is dialect-specific.
	monthExpr := "MONTH(updated_at)"
	if r.db.Dialector.Name() == "sqlite" {
		monthExpr = "CAST(strftime('%m', updated_at) AS INTEGER)"
	}

	start, end := yearBounds(now)
	var rows []struct {
		Month int
		Value int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.PlaylistAudio{}).
		Select(monthExpr + " AS month, COUNT(id) AS value").
		Where("updated_at >= ? AND updated_at < ?", start, end).
		Group(monthExpr).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	chart := make([]MonthlyPlays, 12)
	for i := range chart {
		chart[i] = MonthlyPlays{Month: i + 1, Label: thaiMonths[i]}
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			chart[row.Month-1].Value = row.Value
		}
	}
	return chart, nil
}
