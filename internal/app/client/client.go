package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/client/config"
	"mydiary/internal/domain/protection"
)

// App объединяет HTTP клиент, сохраненный токен и кэш паролей записей.
type App struct {
	config *config.Config
	log    *slog.Logger
	http   *HTTPClient
	cache  *PasswordCache
	mu     sync.Mutex
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	app := &App{
		config: cfg,
		log:    log.With("component", "client_app"),
		http:   NewHTTPClient(cfg, log),
		cache:  NewPasswordCache(cfg.PasswordCacheTTL, clockwork.NewRealClock()),
	}

	if token, err := app.GetToken(); err == nil {
		app.http.SetToken(token)
	}

	return app, nil
}

// Cache возвращает кэш паролей записей текущего процесса.
func (a *App) Cache() *PasswordCache {
	return a.cache
}

func (a *App) CheckConnection(ctx context.Context) error {
	return a.http.HealthCheck(ctx)
}

// IsAuthenticated проверяет, есть ли сохраненный токен
func (a *App) IsAuthenticated() bool {
	token, err := a.GetToken()
	return err == nil && token != ""
}

// GetToken возвращает сохраненный токен
func (a *App) GetToken() (string, error) {
	tokenBytes, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("токен не найден. Выполните вход: mydiary auth login")
		}
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return strings.TrimSpace(string(tokenBytes)), nil
}

// SaveToken сохраняет токен аутентификации
func (a *App) SaveToken(token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	a.http.SetToken(token)
	return nil
}

// ClearToken удаляет токен и забывает пароли записей
func (a *App) ClearToken() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.http.SetToken("")
	a.cache.Clear()

	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}

// Register регистрирует нового пользователя
func (a *App) Register(ctx context.Context, login, password string) error {
	if err := a.http.Register(ctx, login, password); err != nil {
		return err
	}

	a.log.Info("Пользователь успешно зарегистрирован", "login", login)
	return nil
}

// Login выполняет вход пользователя и сохраняет токен
func (a *App) Login(ctx context.Context, login, password string) error {
	token, err := a.http.Login(ctx, login, password)
	if err != nil {
		return err
	}

	if err := a.SaveToken(token); err != nil {
		return err
	}

	a.log.Info("Вход выполнен успешно", "login", login)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.http.Logout(ctx)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return a.ClearToken()
}

func (a *App) ListEntries(ctx context.Context, limit, offset int) (EntryList, error) {
	list, err := a.http.ListEntries(ctx, limit, offset)
	return list, a.checkAuth(err)
}

func (a *App) SearchEntries(ctx context.Context, q SearchQuery) (EntryList, error) {
	list, err := a.http.SearchEntries(ctx, q)
	return list, a.checkAuth(err)
}

func (a *App) Stats(ctx context.Context) (Stats, error) {
	st, err := a.http.Stats(ctx)
	return st, a.checkAuth(err)
}

func (a *App) CreateEntry(ctx context.Context, in EntryInput, password string) (EntryView, error) {
	view, err := a.http.CreateEntry(ctx, in, password)
	if err != nil {
		return view, a.checkAuth(err)
	}
	if view.IsProtected {
		a.cache.Put(view.ID, password)
	}
	return view, nil
}

// GetEntry читает запись. Пустой пароль заменяется сохраненным в кэше, если он есть.
func (a *App) GetEntry(ctx context.Context, id int, password string) (*AttemptResult, error) {
	password = a.passwordFor(id, password)
	res, err := a.http.GetEntry(ctx, id, password)
	return a.observe(id, password, res, err)
}

func (a *App) VerifyPassword(ctx context.Context, id int, password string, action protection.Action) (*AttemptResult, error) {
	res, err := a.http.VerifyPassword(ctx, id, password, action)
	return a.observe(id, password, res, err)
}

func (a *App) UpdateEntry(ctx context.Context, id int, in EntryInput, password string) (*AttemptResult, error) {
	password = a.passwordFor(id, password)
	res, err := a.http.UpdateEntry(ctx, id, in, password)
	return a.observe(id, password, res, err)
}

func (a *App) DeleteEntry(ctx context.Context, id int, password string) (*AttemptResult, error) {
	password = a.passwordFor(id, password)
	res, err := a.http.DeleteEntry(ctx, id, password)
	res, err = a.observe(id, password, res, err)
	if err == nil && res.Deleted {
		a.cache.Evict(id)
	}
	return res, err
}

func (a *App) Protect(ctx context.Context, id int, newPassword, currentPassword string) (*AttemptResult, error) {
	currentPassword = a.passwordFor(id, currentPassword)
	res, err := a.http.Protect(ctx, id, newPassword, currentPassword)
	res, err = a.observe(id, currentPassword, res, err)
	if err == nil && (res.Status == StatusSuccess || res.Status == StatusNotProtected) {
		a.cache.Put(id, newPassword)
	}
	return res, err
}

func (a *App) Unprotect(ctx context.Context, id int, currentPassword string) (*AttemptResult, error) {
	currentPassword = a.passwordFor(id, currentPassword)
	res, err := a.http.Unprotect(ctx, id, currentPassword)
	res, err = a.observe(id, currentPassword, res, err)
	if err == nil && res.Status == StatusSuccess {
		a.cache.Evict(id)
	}
	return res, err
}

func (a *App) passwordFor(id int, password string) string {
	if password != "" {
		return password
	}
	cached, _ := a.cache.Get(id)
	return cached
}

// observe обновляет кэш паролей по ответу сервера.
func (a *App) observe(id int, password string, res *AttemptResult, err error) (*AttemptResult, error) {
	if err != nil {
		return nil, a.checkAuth(err)
	}

	switch res.Status {
	case StatusSuccess:
		a.cache.Put(id, password)
	case StatusNotProtected, StatusInvalidPassword, StatusLocked:
		a.cache.Evict(id)
	case StatusAttemptsExceeded:
		if res.SessionTerminated {
			a.log.Warn("Сервер завершил все сессии после превышения числа попыток", "entry_id", id)
			if err := a.ClearToken(); err != nil {
				a.log.Error("Не удалось удалить токен", "error", err)
			}
		} else {
			a.cache.Evict(id)
		}
	}

	return res, nil
}

func (a *App) checkAuth(err error) error {
	if errors.Is(err, ErrUnauthorized) {
		if clearErr := a.ClearToken(); clearErr != nil {
			a.log.Error("Не удалось удалить токен", "error", clearErr)
		}
	}
	return err
}

// Peek читает запись без пароля. Закрытая запись возвращается скрытой, попытка не засчитывается.
func (a *App) Peek(ctx context.Context, id int) (*AttemptResult, error) {
	res, err := a.http.GetEntry(ctx, id, "")
	if err != nil {
		return nil, a.checkAuth(err)
	}
	return res, nil
}
