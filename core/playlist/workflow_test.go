package playlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dhammasound/db"
	"dhammasound/model"
	"dhammasound/repository"
)

type testEnv struct {
	workflow *Workflow
	users    repository.UserRepository
	audios   repository.AudioRepository
	gdb      *gorm.DB
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
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
	// Every pool connection gets its own :memory: database, so keep one.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		users:  repository.NewGormUserRepository(gdb),
		audios: repository.NewGormAudioRepository(gdb),
		gdb:    gdb,
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.workflow = NewWorkflow(repository.NewGormPlaylistRepository(gdb), env.audios)
	env.workflow.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName: "สมชาย",
		LastName:  "ใจดี",
		Email:     email,
		Password:  "x",
		IsActive:  true,
	}
	if err := e.users.CreateWithPlaylists(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) createAudio(t *testing.T, name string) *model.Audio {
	t.Helper()
	audio := &model.Audio{Name: name, Source: "/audios/" + name + ".mp3", AlbumID: 1, IsActive: true}
	if err := e.audios.Create(context.Background(), audio); err != nil {
		t.Fatalf("create audio: %v", err)
	}
	return audio
}

func TestProvisioningCreatesSystemPlaylists(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")

	playlists, err := env.workflow.ListPlaylists(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListPlaylists: %v", err)
	}
	if len(playlists) != 2 {
		t.Fatalf("got %d playlists, want 2", len(playlists))
	}

	byType := map[string]model.Playlist{}
	for _, pl := range playlists {
		byType[pl.Type] = pl
	}
	def, ok := byType[model.PlaylistTypeDefault]
	if !ok {
		t.Fatal("DEFAULT playlist missing")
	}
	hist, ok := byType[model.PlaylistTypeHistory]
	if !ok {
		t.Fatal("HISTORY playlist missing")
	}
	if def.Name != "รายการโปรด" {
		t.Errorf("DEFAULT name = %q", def.Name)
	}
	if hist.Name != "ประวัติการฟัง" {
		t.Errorf("HISTORY name = %q", hist.Name)
	}
	if def.Slug == "" || hist.Slug == "" || def.Slug == hist.Slug {
		t.Error("system playlists must carry distinct opaque slugs")
	}
}

func TestResolveSelectors(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	ctx := context.Background()

	def, err := env.workflow.Resolve(ctx, user.ID, ParseSelector("DEFAULT"))
	if err != nil {
		t.Fatalf("resolve DEFAULT: %v", err)
	}
	if def.Type != model.PlaylistTypeDefault {
		t.Errorf("got type %q, want DEFAULT", def.Type)
	}

	hist, err := env.workflow.Resolve(ctx, user.ID, ParseSelector("HISTORY"))
	if err != nil {
		t.Fatalf("resolve HISTORY: %v", err)
	}
	if hist.Type != model.PlaylistTypeHistory {
		t.Errorf("got type %q, want HISTORY", hist.Type)
	}

	created, err := env.workflow.Create(ctx, user.ID, "ฟังก่อนนอน", "รวมเสียงก่อนนอน", true, "")
	if err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	got, err := env.workflow.Resolve(ctx, user.ID, ParseSelector(created.Slug))
	if err != nil {
		t.Fatalf("resolve by slug: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("resolved playlist %d, want %d", got.ID, created.ID)
	}

	if _, err := env.workflow.Resolve(ctx, user.ID, ParseSelector("no-such-slug")); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("unknown slug: got %v, want ErrPlaylistNotFound", err)
	}

	// Another user's slug must be indistinguishable from a missing one.
	other := env.createUser(t, "other@example.com")
	if _, err := env.workflow.Resolve(ctx, other.ID, ParseSelector(created.Slug)); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("foreign slug: got %v, want ErrPlaylistNotFound", err)
	}
}

func TestAddAudioSetSemantics(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	audio := env.createAudio(t, "track-one")
	ctx := context.Background()

	added, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), audio.ID)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if !added {
		t.Fatal("first add reported no write")
	}

	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), audio.ID); !errors.Is(err, ErrAlreadyInPlaylist) {
		t.Errorf("second add: got %v, want ErrAlreadyInPlaylist", err)
	}

	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), 9999); !errors.Is(err, ErrAudioNotFound) {
		t.Errorf("unknown audio: got %v, want ErrAudioNotFound", err)
	}

	inactive := env.createAudio(t, "inactive-track")
	inactive.IsActive = false
	if err := env.audios.Update(ctx, inactive); err != nil {
		t.Fatalf("deactivate audio: %v", err)
	}
	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), inactive.ID); !errors.Is(err, ErrAudioNotFound) {
		t.Errorf("inactive audio: got %v, want ErrAudioNotFound", err)
	}
}

func TestAddAudioConflictBeatsMissingAudio(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	audio := env.createAudio(t, "track-one")
	ctx := context.Background()

	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), audio.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Deactivating the audio must not change the duplicate verdict.
	audio.IsActive = false
	if err := env.audios.Update(ctx, audio); err != nil {
		t.Fatalf("deactivate audio: %v", err)
	}
	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), audio.ID); !errors.Is(err, ErrAlreadyInPlaylist) {
		t.Errorf("got %v, want ErrAlreadyInPlaylist", err)
	}
}

func TestHistoryThrottle(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	audio := env.createAudio(t, "track-one")
	ctx := context.Background()
	history := ParseSelector("HISTORY")

	added, err := env.workflow.AddAudio(ctx, user.ID, history, audio.ID)
	if err != nil || !added {
		t.Fatalf("first play: added=%v err=%v", added, err)
	}

	// A repeat inside the window is dropped but not an error.
	env.advance(30 * time.Second)
	added, err = env.workflow.AddAudio(ctx, user.ID, history, audio.ID)
	if err != nil {
		t.Fatalf("throttled play: %v", err)
	}
	if added {
		t.Error("play inside the window must not write")
	}

	env.advance(31 * time.Second)
	added, err = env.workflow.AddAudio(ctx, user.ID, history, audio.ID)
	if err != nil || !added {
		t.Fatalf("play after the window: added=%v err=%v", added, err)
	}

	_, entries, err := env.workflow.Detail(ctx, user.ID, history)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("history has %d rows, want 2", len(entries))
	}
}

func TestHistoryDropsInactiveAudio(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	audio := env.createAudio(t, "track-one")
	keeper := env.createAudio(t, "track-two")
	ctx := context.Background()
	history := ParseSelector("HISTORY")

	if _, err := env.workflow.AddAudio(ctx, user.ID, history, audio.ID); err != nil {
		t.Fatalf("play one: %v", err)
	}
	if _, err := env.workflow.AddAudio(ctx, user.ID, history, keeper.ID); err != nil {
		t.Fatalf("play two: %v", err)
	}

	audio.IsActive = false
	if err := env.audios.Update(ctx, audio); err != nil {
		t.Fatalf("deactivate audio: %v", err)
	}

	_, entries, err := env.workflow.Detail(ctx, user.ID, history)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history has %d rows, want 1", len(entries))
	}
	if entries[0].AudioID != keeper.ID {
		t.Errorf("kept audio %d, want %d", entries[0].AudioID, keeper.ID)
	}
}

func TestDetailOrdersByRecentUpdate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	first := env.createAudio(t, "track-one")
	second := env.createAudio(t, "track-two")
	ctx := context.Background()

	created, err := env.workflow.Create(ctx, user.ID, "ฟังก่อนนอน", "รวมเสียงก่อนนอน", true, "")
	if err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	sel := ParseSelector(created.Slug)

	if _, err := env.workflow.AddAudio(ctx, user.ID, sel, first.ID); err != nil {
		t.Fatalf("add first: %v", err)
	}
	env.advance(time.Minute)
	if _, err := env.workflow.AddAudio(ctx, user.ID, sel, second.ID); err != nil {
		t.Fatalf("add second: %v", err)
	}

	_, entries, err := env.workflow.Detail(ctx, user.ID, sel)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].AudioID != second.ID || entries[1].AudioID != first.ID {
		t.Errorf("entries out of order: got [%d %d], want [%d %d]",
			entries[0].AudioID, entries[1].AudioID, second.ID, first.ID)
	}
}

func TestDetailEmptyPlaylist(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")

	pl, entries, err := env.workflow.Detail(context.Background(), user.ID, ParseSelector("DEFAULT"))
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if pl == nil {
		t.Fatal("playlist missing")
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestListPlaylistsWithCounts(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	audio := env.createAudio(t, "track-one")
	ctx := context.Background()

	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector("DEFAULT"), audio.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	withCounts, err := env.workflow.ListPlaylistsWithCounts(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListPlaylistsWithCounts: %v", err)
	}
	if len(withCounts) != 2 {
		t.Fatalf("got %d playlists, want 2", len(withCounts))
	}
	counts := map[string]int64{}
	for _, pl := range withCounts {
		counts[pl.Type] = pl.AudioCount
	}
	if counts[model.PlaylistTypeDefault] != 1 {
		t.Errorf("DEFAULT count = %d, want 1", counts[model.PlaylistTypeDefault])
	}
	if counts[model.PlaylistTypeHistory] != 0 {
		t.Errorf("HISTORY count = %d, want 0", counts[model.PlaylistTypeHistory])
	}
}

func TestDeletePlaylist(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	audio := env.createAudio(t, "track-one")
	ctx := context.Background()

	created, err := env.workflow.Create(ctx, user.ID, "ฟังก่อนนอน", "รวมเสียงก่อนนอน", true, "")
	if err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if _, err := env.workflow.AddAudio(ctx, user.ID, ParseSelector(created.Slug), audio.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := env.workflow.Delete(ctx, user.ID, created.Slug); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.workflow.Resolve(ctx, user.ID, ParseSelector(created.Slug)); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("deleted playlist still resolves: %v", err)
	}

	var joins int64
	if err := env.gdb.Model(&model.PlaylistAudio{}).Where("playlist_id = ?", created.ID).Count(&joins).Error; err != nil {
		t.Fatalf("count joins: %v", err)
	}
	if joins != 0 {
		t.Errorf("join rows left behind: %d", joins)
	}
}

func TestDeleteRejectsSystemAndForeignPlaylists(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "somchai@example.com")
	ctx := context.Background()

	// System playlists cannot be addressed for deletion, even by slug.
	def, err := env.workflow.Resolve(ctx, user.ID, ParseSelector("DEFAULT"))
	if err != nil {
		t.Fatalf("resolve DEFAULT: %v", err)
	}
	if err := env.workflow.Delete(ctx, user.ID, def.Slug); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("system delete: got %v, want ErrPlaylistNotFound", err)
	}

	created, err := env.workflow.Create(ctx, user.ID, "ฟังก่อนนอน", "รวมเสียงก่อนนอน", true, "")
	if err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	other := env.createUser(t, "other@example.com")
	if err := env.workflow.Delete(ctx, other.ID, created.Slug); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("foreign delete: got %v, want ErrPlaylistNotFound", err)
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		raw      string
		kind     SelectorKind
		wantSlug string
	}{
		{"DEFAULT", SelectDefault, ""},
		{"HISTORY", SelectHistory, ""},
		{"default", SelectBySlug, "default"},
		{"some-slug", SelectBySlug, "some-slug"},
	}
	for _, tt := range tests {
		sel := ParseSelector(tt.raw)
		if sel.Kind != tt.kind || sel.Slug != tt.wantSlug {
			t.Errorf("ParseSelector(%q) = %+v", tt.raw, sel)
		}
	}
}
