package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dhammasound/cache"
	"dhammasound/config"
	"dhammasound/core/auth"
	"dhammasound/core/playlist"
	"dhammasound/db"
	"dhammasound/model"
	"dhammasound/repository"
)

type handlerEnv struct {
	handler *APIHandler
	router  *mux.Router
	gdb     *gorm.DB
	audios  repository.AudioRepository
}

func newHandlerEnv(t *testing.T) *handlerEnv {
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
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		AppMode:    "test",
		JWTSecret:  "test-secret",
		JWTExpires: time.Hour,
		BcryptCost: 4,
		UploadDir:  t.TempDir(),
	}

	userRepo := repository.NewGormUserRepository(gdb)
	roleRepo := repository.NewGormRoleRepository(gdb)
	audioRepo := repository.NewGormAudioRepository(gdb)
	playlistRepo := repository.NewGormPlaylistRepository(gdb)

	if err := roleRepo.Create(context.Background(), &model.Role{Name: "user", IsActive: true}); err != nil {
		t.Fatalf("seed role: %v", err)
	}

	h := NewAPIHandler(cfg,
		userRepo, roleRepo,
		repository.NewGormPriestRepository(gdb),
		repository.NewGormAlbumRepository(gdb),
		audioRepo,
		repository.NewGormQuoteRepository(gdb),
		repository.NewGormContactRepository(gdb),
		playlistRepo,
		repository.NewGormStatsRepository(gdb),
		playlist.NewWorkflow(playlistRepo, audioRepo),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpires),
		nil,
		cache.NewHomeCache(nil, 0),
	)
	return &handlerEnv{handler: h, router: h.Routes(), gdb: gdb, audios: audioRepo}
}

func (e *handlerEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *handlerEnv) register(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "สมชาย",
		"lastName":  "ใจดี",
		"email":     email,
		"password":  "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("register returned no token")
	}
	return resp.Token
}

func (e *handlerEnv) createAudio(t *testing.T) *model.Audio {
	t.Helper()
	audio := &model.Audio{Name: "ตอนที่ 1", Source: "/audios/ep1.mp3", AlbumID: 1, IsActive: true}
	if err := e.audios.Create(context.Background(), audio); err != nil {
		t.Fatalf("create audio: %v", err)
	}
	return audio
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestListPlaylistsRequiresAuth(t *testing.T) {
	env := newHandlerEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/member/playlist", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing token: status %d, want 400", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/member/playlist", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", w.Code)
	}
}

func TestRegisterProvisionsPlaylists(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.register(t, "somchai@example.com")

	w := env.do(t, http.MethodGet, "/api/v1/member/playlist", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Playlists []model.Playlist `json:"playlists"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Playlists) != 2 {
		t.Fatalf("got %d playlists, want 2", len(resp.Playlists))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newHandlerEnv(t)
	env.register(t, "somchai@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"firstName": "สมหญิง",
		"lastName":  "ใจดี",
		"email":     "somchai@example.com",
		"password":  "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate email: status %d, want 409", w.Code)
	}
}

func TestCreatePlaylistHidesID(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.register(t, "somchai@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("name", "ฟังก่อนนอน")
	mw.WriteField("description", "รวมเสียงก่อนนอน")
	mw.WriteField("isPrivate", "true")
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/member/playlist", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Message  string                 `json:"message"`
		Playlist map[string]interface{} `json:"playlist"`
	}
	decodeBody(t, w, &resp)
	if resp.Message != "สร้างรายการเสร็จสิ้น" {
		t.Errorf("message = %q", resp.Message)
	}
	if _, ok := resp.Playlist["id"]; ok {
		t.Error("create response must not expose the id")
	}
	if resp.Playlist["slug"] == "" {
		t.Error("create response must carry the slug")
	}
}

func TestCreatePlaylistValidation(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.register(t, "somchai@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("name", "")
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/member/playlist", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Fields []FieldError `json:"fields"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Fields) != 3 {
		t.Errorf("got %d field errors, want 3", len(resp.Fields))
	}
}

func TestAddAudioFlow(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.register(t, "somchai@example.com")
	audio := env.createAudio(t)

	w := env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "DEFAULT", "audioId": audio.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("first add: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &resp)
	if resp.Message != "เพิ่มเสียงลงรายการสำเร็จ" {
		t.Errorf("message = %q", resp.Message)
	}

	// Set semantics: the second add is a conflict.
	w = env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "DEFAULT", "audioId": audio.ID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate add: status %d, want 400", w.Code)
	}

	// History reports success even when the repeat is throttled away.
	w = env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "HISTORY", "audioId": audio.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("history add: status %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "HISTORY", "audioId": audio.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("throttled history add: status %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &resp)
	if resp.Message != "เสียงไม่ถูกเพิ่ม" {
		t.Errorf("throttled message = %q", resp.Message)
	}

	w = env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "DEFAULT", "audioId": 9999,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown audio: status %d, want 404", w.Code)
	}

	w = env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "no-such-slug", "audioId": audio.ID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown playlist: status %d, want 400", w.Code)
	}
}

func TestGetPlaylistBySelector(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.register(t, "somchai@example.com")
	audio := env.createAudio(t)

	env.do(t, http.MethodPatch, "/api/v1/member/playlist", token, map[string]interface{}{
		"slug": "DEFAULT", "audioId": audio.ID,
	})

	w := env.do(t, http.MethodGet, "/api/v1/member/playlist/DEFAULT", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get DEFAULT: status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Playlist model.Playlist        `json:"playlist"`
		Audios   []model.PlaylistAudio `json:"audios"`
	}
	decodeBody(t, w, &resp)
	if resp.Playlist.Type != model.PlaylistTypeDefault {
		t.Errorf("playlist type = %q", resp.Playlist.Type)
	}
	if len(resp.Audios) != 1 {
		t.Errorf("got %d audios, want 1", len(resp.Audios))
	}

	w = env.do(t, http.MethodGet, "/api/v1/member/playlist/no-such-slug", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown selector: status %d, want 400", w.Code)
	}
}

func TestDeletePlaylistEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	token := env.register(t, "somchai@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("name", "ฟังก่อนนอน")
	mw.WriteField("description", "รวมเสียงก่อนนอน")
	mw.WriteField("isPrivate", "false")
	mw.Close()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/member/playlist", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Playlist struct {
			Slug string `json:"slug"`
		} `json:"playlist"`
	}
	decodeBody(t, w, &created)

	del := env.do(t, http.MethodDelete, "/api/v1/member/playlist/"+created.Playlist.Slug, token, nil)
	if del.Code != http.StatusOK {
		t.Fatalf("delete: status %d: %s", del.Code, del.Body.String())
	}

	del = env.do(t, http.MethodDelete, "/api/v1/member/playlist/"+created.Playlist.Slug, token, nil)
	if del.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", del.Code)
	}

	// Another account cannot delete someone else's playlist either.
	otherToken := env.register(t, "other@example.com")
	del = env.do(t, http.MethodDelete, "/api/v1/member/playlist/any-slug", otherToken, nil)
	if del.Code != http.StatusNotFound {
		t.Errorf("foreign delete: status %d, want 404", del.Code)
	}
}
