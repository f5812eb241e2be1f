package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dhammasound/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&model.Role{}, &model.User{},
		&model.Priest{}, &model.Album{}, &model.Audio{},
		&model.Playlist{}, &model.PlaylistAudio{},
		&model.Quote{}, &model.Contact{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func TestCreateWithPlaylistsRejectsDuplicateEmail(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewGormUserRepository(gdb)
	ctx := context.Background()

	first := &model.User{FirstName: "ก", LastName: "ข", Email: "dup@example.com", Password: "x", IsActive: true}
	if err := repo.CreateWithPlaylists(ctx, first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := &model.User{FirstName: "ค", LastName: "ง", Email: "dup@example.com", Password: "x", IsActive: true}
	if err := repo.CreateWithPlaylists(ctx, second); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("got %v, want ErrDuplicateUser", err)
	}

	// The failed transaction must not leave a half-provisioned account.
	var users, playlists int64
	gdb.Model(&model.User{}).Count(&users)
	gdb.Model(&model.Playlist{}).Count(&playlists)
	if users != 1 || playlists != 2 {
		t.Errorf("got %d users and %d playlists, want 1 and 2", users, playlists)
	}
}

func TestUserDeleteCascadesPlaylists(t *testing.T) {
	gdb := openTestDB(t)
	users := NewGormUserRepository(gdb)
	playlists := NewGormPlaylistRepository(gdb)
	ctx := context.Background()

	user := &model.User{FirstName: "ก", LastName: "ข", Email: "user@example.com", Password: "x", IsActive: true}
	if err := users.CreateWithPlaylists(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	def, err := playlists.FindByTypeForUser(ctx, user.ID, model.PlaylistTypeDefault)
	if err != nil || def == nil {
		t.Fatalf("find DEFAULT: %v", err)
	}
	if _, err := playlists.AddAudio(ctx, def.ID, 1, true, 0, time.Now()); err != nil {
		t.Fatalf("add audio: %v", err)
	}

	if err := users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var remainingPlaylists, remainingJoins int64
	gdb.Model(&model.Playlist{}).Where("user_id = ?", user.ID).Count(&remainingPlaylists)
	gdb.Model(&model.PlaylistAudio{}).Count(&remainingJoins)
	if remainingPlaylists != 0 || remainingJoins != 0 {
		t.Errorf("left %d playlists and %d joins behind", remainingPlaylists, remainingJoins)
	}
}

func TestEmailTakenByOther(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewGormUserRepository(gdb)
	ctx := context.Background()

	user := &model.User{FirstName: "ก", LastName: "ข", Email: "user@example.com", Password: "x", IsActive: true}
	if err := repo.CreateWithPlaylists(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	taken, err := repo.EmailTakenByOther(ctx, "user@example.com", user.ID)
	if err != nil {
		t.Fatalf("EmailTakenByOther: %v", err)
	}
	if taken {
		t.Error("own email reported as taken")
	}

	taken, err = repo.EmailTakenByOther(ctx, "user@example.com", user.ID+1)
	if err != nil {
		t.Fatalf("EmailTakenByOther: %v", err)
	}
	if !taken {
		t.Error("foreign email not reported as taken")
	}
}

func TestRoleDeleteRejectedWhileInUse(t *testing.T) {
	gdb := openTestDB(t)
	roles := NewGormRoleRepository(gdb)
	users := NewGormUserRepository(gdb)
	ctx := context.Background()

	role := &model.Role{Name: "user", IsActive: true}
	if err := roles.Create(ctx, role); err != nil {
		t.Fatalf("create role: %v", err)
	}
	user := &model.User{FirstName: "ก", LastName: "ข", Email: "user@example.com", Password: "x", RoleID: role.ID, IsActive: true}
	if err := users.CreateWithPlaylists(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := roles.Delete(ctx, role.ID); !errors.Is(err, ErrRoleInUse) {
		t.Fatalf("got %v, want ErrRoleInUse", err)
	}

	if err := users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := roles.Delete(ctx, role.ID); err != nil {
		t.Fatalf("delete unused role: %v", err)
	}
}

func TestPlaysByMonthZeroFills(t *testing.T) {
	gdb := openTestDB(t)
	stats := NewGormStatsRepository(gdb)
	ctx := context.Background()
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)

	// Two plays in March, one in August, one in another year.
	rows := []model.PlaylistAudio{
		{PlaylistID: 1, AudioID: 1, CreatedAt: now.AddDate(0, -5, 0), UpdatedAt: now.AddDate(0, -5, 0)},
		{PlaylistID: 1, AudioID: 2, CreatedAt: now.AddDate(0, -5, 1), UpdatedAt: now.AddDate(0, -5, 1)},
		{PlaylistID: 1, AudioID: 3, CreatedAt: now, UpdatedAt: now},
		{PlaylistID: 1, AudioID: 4, CreatedAt: now.AddDate(-1, 0, 0), UpdatedAt: now.AddDate(-1, 0, 0)},
	}
	if err := gdb.Create(&rows).Error; err != nil {
		t.Fatalf("seed joins: %v", err)
	}

	chart, err := stats.PlaysByMonth(ctx, now)
	if err != nil {
		t.Fatalf("PlaysByMonth: %v", err)
	}
	if len(chart) != 12 {
		t.Fatalf("got %d entries, want 12", len(chart))
	}
	if chart[2].Value != 2 {
		t.Errorf("March value = %d, want 2", chart[2].Value)
	}
	if chart[7].Value != 1 {
		t.Errorf("August value = %d, want 1", chart[7].Value)
	}
	if chart[0].Value != 0 {
		t.Errorf("January value = %d, want 0", chart[0].Value)
	}
	if chart[0].Label != "มกราคม" {
		t.Errorf("January label = %q", chart[0].Label)
	}
}

func TestDashboardCounts(t *testing.T) {
	gdb := openTestDB(t)
	stats := NewGormStatsRepository(gdb)
	users := NewGormUserRepository(gdb)
	ctx := context.Background()
	now := time.Now()

	user := &model.User{FirstName: "ก", LastName: "ข", Email: "user@example.com", Password: "x", IsActive: true}
	if err := users.CreateWithPlaylists(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	contacts := []model.Contact{
		{Title: "สอบถาม", Description: "รายละเอียด", FullName: "ก ข", Email: "a@b.c", IsActive: true},
		{Title: "ตอบแล้ว", Description: "รายละเอียด", FullName: "ก ข", Email: "a@b.c", IsReply: true, IsActive: true},
	}
	if err := gdb.Create(&contacts).Error; err != nil {
		t.Fatalf("seed contacts: %v", err)
	}

	counts, err := stats.Counts(ctx, now)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.UserCount != 1 {
		t.Errorf("UserCount = %d, want 1", counts.UserCount)
	}
	if counts.ContactCount != 1 {
		t.Errorf("ContactCount = %d, want 1 (replied ones excluded)", counts.ContactCount)
	}
}
