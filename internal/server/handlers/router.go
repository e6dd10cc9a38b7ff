package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/prombank/prompthouse/internal/auth"
	"github.com/prombank/prompthouse/internal/server/middleware"
	"github.com/prombank/prompthouse/internal/server/oauth"
	"github.com/prombank/prompthouse/internal/server/session"
	"github.com/prombank/prompthouse/internal/server/storage"
)

// RouterConfig собирает зависимости HTTP слоя
type RouterConfig struct {
	Logger   *slog.Logger
	Users    storage.UserStorage
	Tokens   storage.TokenStorage
	Prompts  storage.PromptStorage
	Articles storage.ArticleStorage
	DB       Pinger
	Sessions *session.Manager
	JWT      *auth.TokenService
	// Provider может быть nil, если OAuth не настроен
	Provider *oauth.GoogleProvider
	// CredentialLimiter ограничивает частоту login/register запросов
	CredentialLimiter *middleware.RateLimiter
}

// NewRouter создает маршрутизатор со всеми эндпоинтами и middleware
func NewRouter(cfg RouterConfig) *mux.Router {
	resolver := middleware.NewResolver(cfg.Logger, cfg.Users, cfg.Tokens, cfg.Sessions, cfg.JWT)

	authHandler := NewAuthHandler(cfg.Logger, cfg.Users, cfg.JWT, cfg.Sessions)
	oauthHandler := NewOAuthHandler(cfg.Logger, cfg.Users, cfg.Sessions, cfg.Provider)
	tokenHandler := NewTokenHandler(cfg.Logger, cfg.Tokens)
	promptHandler := NewPromptHandler(cfg.Logger, cfg.Prompts)
	articleHandler := NewArticleHandler(cfg.Logger, cfg.Articles, cfg.Prompts)
	adminHandler := NewAdminHandler(cfg.Logger, cfg.Users, cfg.Tokens, cfg.Prompts, cfg.Articles)
	healthHandler := NewHealthHandler(cfg.Logger, cfg.DB)

	r := mux.NewRouter()
	r.Use(
		middleware.RecoveryMiddleware(cfg.Logger),
		middleware.LoggingMiddleware(cfg.Logger),
	)

	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Эндпоинты с учетными данными дополнительно ограничены по частоте
	authAPI := api.PathPrefix("/auth").Subrouter()
	authAPI.Handle("/register",
		cfg.CredentialLimiter.Middleware(http.HandlerFunc(authHandler.Register))).Methods(http.MethodPost)
	authAPI.Handle("/login",
		cfg.CredentialLimiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	authAPI.Handle("/change-password",
		resolver.RequireAuth(http.HandlerFunc(authHandler.ChangePassword))).Methods(http.MethodPost)
	authAPI.Handle("/me",
		resolver.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)
	authAPI.HandleFunc("/google", oauthHandler.GoogleStart).Methods(http.MethodGet)
	authAPI.HandleFunc("/google/callback", oauthHandler.GoogleCallback).Methods(http.MethodGet)
	authAPI.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)

	tokensAPI := api.PathPrefix("/tokens").Subrouter()
	tokensAPI.Handle("",
		resolver.RequireAuth(http.HandlerFunc(tokenHandler.Create))).Methods(http.MethodPost)
	tokensAPI.Handle("",
		resolver.RequireAuth(http.HandlerFunc(tokenHandler.List))).Methods(http.MethodGet)
	tokensAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(tokenHandler.Update))).Methods(http.MethodPut)
	tokensAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(tokenHandler.Delete))).Methods(http.MethodDelete)

	// Чтение промптов доступно анонимам (видны только публичные)
	promptsAPI := api.PathPrefix("/prompts").Subrouter()
	promptsAPI.Handle("",
		resolver.OptionalAuth(http.HandlerFunc(promptHandler.List))).Methods(http.MethodGet)
	promptsAPI.Handle("",
		resolver.RequireAuth(http.HandlerFunc(promptHandler.Create))).Methods(http.MethodPost)
	promptsAPI.Handle("/import",
		resolver.RequireAuth(http.HandlerFunc(promptHandler.Import))).Methods(http.MethodPost)
	promptsAPI.Handle("/{id}",
		resolver.OptionalAuth(http.HandlerFunc(promptHandler.Get))).Methods(http.MethodGet)
	promptsAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(promptHandler.Update))).Methods(http.MethodPut)
	promptsAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(promptHandler.Delete))).Methods(http.MethodDelete)

	articlesAPI := api.PathPrefix("/articles").Subrouter()
	articlesAPI.Handle("",
		resolver.RequireAuth(http.HandlerFunc(articleHandler.List))).Methods(http.MethodGet)
	articlesAPI.Handle("",
		resolver.RequireAuth(http.HandlerFunc(articleHandler.Create))).Methods(http.MethodPost)
	articlesAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(articleHandler.Get))).Methods(http.MethodGet)
	articlesAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(articleHandler.Update))).Methods(http.MethodPut)
	articlesAPI.Handle("/{id}",
		resolver.RequireAuth(http.HandlerFunc(articleHandler.Delete))).Methods(http.MethodDelete)

	adminAPI := api.PathPrefix("/admin").Subrouter()
	adminAPI.Handle("/users",
		resolver.RequireAdmin(http.HandlerFunc(adminHandler.ListUsers))).Methods(http.MethodGet)
	adminAPI.Handle("/stats",
		resolver.RequireAdmin(http.HandlerFunc(adminHandler.Stats))).Methods(http.MethodGet)

	return r
}
