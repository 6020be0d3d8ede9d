//POST   /user/register                  # Регистрация (публичный)
//POST   /user/login                     # Логин (публичный)
//POST   /user/logout                    # Выход (auth)
//GET    /api/entries                    # Список записей, закрытые скрыты (auth)
//POST   /api/entries                    # Создать запись (auth)
//GET    /api/entries/search             # Поиск (auth)
//GET    /api/entries/stats              # Статистика (auth)
//GET    /api/entries/{id}               # Получить запись, X-Entry-Password (auth, rate limit)
//PUT    /api/entries/{id}               # Обновить запись (auth, rate limit)
//DELETE /api/entries/{id}               # Удалить запись (auth, rate limit)
//POST   /api/entries/{id}/verify        # Проверить пароль (auth, rate limit)
//POST   /api/entries/{id}/protection    # Установить/сменить пароль (auth, rate limit)
//DELETE /api/entries/{id}/protection    # Снять пароль (auth, rate limit)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	entryAPI "mydiary/internal/app/server/api/http/entry"
	healthAPI "mydiary/internal/app/server/api/http/health"
	"mydiary/internal/app/server/api/http/middleware"
	"mydiary/internal/app/server/api/http/middleware/auth"
	"mydiary/internal/app/server/api/http/middleware/logger"
	"mydiary/internal/app/server/api/http/middleware/ratelimit"
	userAPI "mydiary/internal/app/server/api/http/user"
	"mydiary/internal/app/server/config"
	"mydiary/internal/domain/entry"
	"mydiary/internal/domain/protection"
	"mydiary/internal/domain/session"
	"mydiary/internal/domain/user"
	"mydiary/internal/infrastructure/storage"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Entry  *entryAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(store *storage.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	humaCfg := huma.DefaultConfig("Diary API", "1.0.0")
	humaCfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaCfg)

	h := handlers(store, cfg, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Entry.SetupRoutes(API)

	return mux
}

func handlers(store *storage.Storage, cfg *config.Config, log *slog.Logger) *Handlers {
	sessionService := session.NewService(store.Sessions, cfg.Session.TTL, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	limiter := ratelimit.New(cfg.Protection.VerifyRatePerMinute, log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(store, log, middlewares.GetAllAndClear())

	userService := user.NewService(store.Users, user.NewValidator(user.DefaultRules()), log)
	middlewares.Add(loggerMW.Middleware())
	public := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, public, middlewares.GetAllAndClear())

	verifier := protection.NewVerifier(protection.NewBcryptHasher(cfg.Protection.BcryptCost), cfg.Protection.HashWorkers)
	gateway := protection.NewGateway(store.Entries, verifier, log,
		protection.WithPolicy(protection.Policy{
			MaxAttempts:     cfg.Protection.MaxAttempts,
			LockoutDuration: cfg.Protection.LockoutDuration,
		}),
		protection.WithSessionTerminator(sessionService),
	)
	entryService := entry.NewService(store.Entries, gateway, verifier, log)

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	authed := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	middlewares.Add(limiter.Middleware())
	entryHandler := entryAPI.NewHandler(entryService, log, authed, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Entry:  entryHandler,
	}
}
