package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"dhammasound/cache"
	"dhammasound/config"
	"dhammasound/core/auth"
	"dhammasound/core/playlist"
	"dhammasound/db"
	"dhammasound/logger"
	"dhammasound/repository"
	"dhammasound/storage"
)

// APIHandler carries every dependency the HTTP handlers need.
type APIHandler struct {
	cfg *config.Config

	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	priestRepo   repository.PriestRepository
	albumRepo    repository.AlbumRepository
	audioRepo    repository.AudioRepository
	quoteRepo    repository.QuoteRepository
	contactRepo  repository.ContactRepository
	playlistRepo repository.PlaylistRepository
	statsRepo    repository.StatsRepository

	workflow  *playlist.Workflow
	tokens    *auth.TokenManager
	storage   *storage.Storage
	homeCache *cache.HomeCache
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	cfg *config.Config,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	priestRepo repository.PriestRepository,
	albumRepo repository.AlbumRepository,
	audioRepo repository.AudioRepository,
	quoteRepo repository.QuoteRepository,
	contactRepo repository.ContactRepository,
	playlistRepo repository.PlaylistRepository,
	statsRepo repository.StatsRepository,
	workflow *playlist.Workflow,
	tokens *auth.TokenManager,
	store *storage.Storage,
	homeCache *cache.HomeCache,
) *APIHandler {
	return &APIHandler{
		cfg:          cfg,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		priestRepo:   priestRepo,
		albumRepo:    albumRepo,
		audioRepo:    audioRepo,
		quoteRepo:    quoteRepo,
		contactRepo:  contactRepo,
		playlistRepo: playlistRepo,
		statsRepo:    statsRepo,
		workflow:     workflow,
		tokens:       tokens,
		storage:      store,
		homeCache:    homeCache,
	}
}

// Routes builds the full route tree.
func (h *APIHandler) Routes() *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	api := router.PathPrefix("/api/v1").Subrouter()

	// Authentication endpoints.
	api.HandleFunc("/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.AuthMiddleware(h.MeHandler)).Methods(http.MethodGet)
	api.HandleFunc("/auth/me", h.AuthMiddleware(h.UpdateMeHandler)).Methods(http.MethodPatch)
	api.HandleFunc("/auth/password", h.AuthMiddleware(h.UpdatePasswordHandler)).Methods(http.MethodPatch)

	// Public client endpoints.
	api.HandleFunc("/client/home", h.HomeHandler).Methods(http.MethodGet)
	api.HandleFunc("/client/search", h.SearchAlbumsHandler).Methods(http.MethodGet)
	api.HandleFunc("/client/priest", h.ListPriestsHandler).Methods(http.MethodGet)
	api.HandleFunc("/client/priest/{slug}", h.GetPriestHandler).Methods(http.MethodGet)
	api.HandleFunc("/client/album", h.ListClientAlbumsHandler).Methods(http.MethodGet)
	api.HandleFunc("/client/album/{slug}", h.GetAlbumHandler).Methods(http.MethodGet)
	api.HandleFunc("/client/contact", h.CreateContactHandler).Methods(http.MethodPost)

	// Member playlist endpoints.
	api.HandleFunc("/member/playlist", h.AuthMiddleware(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/member/playlist/with-count", h.AuthMiddleware(h.ListPlaylistsWithCountHandler)).Methods(http.MethodGet)
	api.HandleFunc("/member/playlist", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/member/playlist", h.AuthMiddleware(h.AddPlaylistAudioHandler)).Methods(http.MethodPatch)
	api.HandleFunc("/member/playlist/{selector}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	api.HandleFunc("/member/playlist/{slug}", h.AuthMiddleware(h.DeletePlaylistHandler)).Methods(http.MethodDelete)

	// Admin endpoints.
	admin := api.PathPrefix("/admin").Subrouter()
	adminOnly := h.RoleMiddleware("admin")

	admin.HandleFunc("/dashboard", h.AuthMiddleware(adminOnly(h.DashboardHandler))).Methods(http.MethodGet)

	admin.HandleFunc("/role", h.AuthMiddleware(adminOnly(h.ListRolesHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/role", h.AuthMiddleware(adminOnly(h.CreateRoleHandler))).Methods(http.MethodPost)
	admin.HandleFunc("/role/{id}", h.AuthMiddleware(adminOnly(h.GetRoleHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/role/{id}", h.AuthMiddleware(adminOnly(h.UpdateRoleHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/role/{id}", h.AuthMiddleware(adminOnly(h.DeleteRoleHandler))).Methods(http.MethodDelete)

	admin.HandleFunc("/user", h.AuthMiddleware(adminOnly(h.ListUsersHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/user", h.AuthMiddleware(adminOnly(h.CreateUserHandler))).Methods(http.MethodPost)
	admin.HandleFunc("/user/{id}", h.AuthMiddleware(adminOnly(h.GetUserHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/user/{id}", h.AuthMiddleware(adminOnly(h.UpdateUserHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/user/{id}", h.AuthMiddleware(adminOnly(h.DeleteUserHandler))).Methods(http.MethodDelete)

	admin.HandleFunc("/priest", h.AuthMiddleware(adminOnly(h.AdminListPriestsHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/priest", h.AuthMiddleware(adminOnly(h.CreatePriestHandler))).Methods(http.MethodPost)
	admin.HandleFunc("/priest/{id}", h.AuthMiddleware(adminOnly(h.AdminGetPriestHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/priest/{id}", h.AuthMiddleware(adminOnly(h.UpdatePriestHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/priest/{id}", h.AuthMiddleware(adminOnly(h.DeletePriestHandler))).Methods(http.MethodDelete)

	admin.HandleFunc("/album", h.AuthMiddleware(adminOnly(h.AdminListAlbumsHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/album", h.AuthMiddleware(adminOnly(h.CreateAlbumHandler))).Methods(http.MethodPost)
	admin.HandleFunc("/album/{id}", h.AuthMiddleware(adminOnly(h.AdminGetAlbumHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/album/{id}", h.AuthMiddleware(adminOnly(h.UpdateAlbumHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/album/{id}", h.AuthMiddleware(adminOnly(h.DeleteAlbumHandler))).Methods(http.MethodDelete)

	admin.HandleFunc("/audio", h.AuthMiddleware(adminOnly(h.AdminListAudiosHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/audio", h.AuthMiddleware(adminOnly(h.CreateAudioHandler))).Methods(http.MethodPost)
	admin.HandleFunc("/audio/{id}", h.AuthMiddleware(adminOnly(h.AdminGetAudioHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/audio/{id}", h.AuthMiddleware(adminOnly(h.UpdateAudioHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/audio/{id}", h.AuthMiddleware(adminOnly(h.DeleteAudioHandler))).Methods(http.MethodDelete)

	admin.HandleFunc("/quote", h.AuthMiddleware(adminOnly(h.AdminListQuotesHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/quote", h.AuthMiddleware(adminOnly(h.CreateQuoteHandler))).Methods(http.MethodPost)
	admin.HandleFunc("/quote/{id}", h.AuthMiddleware(adminOnly(h.AdminGetQuoteHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/quote/{id}", h.AuthMiddleware(adminOnly(h.UpdateQuoteHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/quote/{id}", h.AuthMiddleware(adminOnly(h.DeleteQuoteHandler))).Methods(http.MethodDelete)

	admin.HandleFunc("/contact", h.AuthMiddleware(adminOnly(h.AdminListContactsHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/contact/{id}", h.AuthMiddleware(adminOnly(h.AdminGetContactHandler))).Methods(http.MethodGet)
	admin.HandleFunc("/contact/{id}", h.AuthMiddleware(adminOnly(h.ReplyContactHandler))).Methods(http.MethodPatch)
	admin.HandleFunc("/contact/{id}", h.AuthMiddleware(adminOnly(h.DeleteContactHandler))).Methods(http.MethodDelete)

	return router
}

// Start wires every dependency and runs the HTTP server until a
// termination signal arrives.
func Start() {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrate(db.GormDB); err != nil {
		logger.Fatal("failed to migrate database", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, home cache disabled", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	store, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("failed to initialize minio", logger.ErrorField(err))
	}

	userRepo := repository.NewGormUserRepository(db.GormDB)
	roleRepo := repository.NewGormRoleRepository(db.GormDB)
	priestRepo := repository.NewGormPriestRepository(db.GormDB)
	albumRepo := repository.NewGormAlbumRepository(db.GormDB)
	audioRepo := repository.NewGormAudioRepository(db.GormDB)
	quoteRepo := repository.NewGormQuoteRepository(db.GormDB)
	contactRepo := repository.NewGormContactRepository(db.GormDB)
	playlistRepo := repository.NewGormPlaylistRepository(db.GormDB)
	statsRepo := repository.NewGormStatsRepository(db.GormDB)

	workflow := playlist.NewWorkflow(playlistRepo, audioRepo)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpires)
	homeCache := cache.NewHomeCache(db.RedisClient, cfg.HomeCacheTTL)

	apiHandler := NewAPIHandler(cfg,
		userRepo, roleRepo, priestRepo, albumRepo, audioRepo,
		quoteRepo, contactRepo, playlistRepo, statsRepo,
		workflow, tokens, store, homeCache)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      apiHandler.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", logger.ErrorField(err))
	}
}
