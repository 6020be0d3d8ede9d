package client

import (
	"errors"
	"fmt"
	"time"

	entryAPI "mydiary/internal/app/server/api/http/entry"
	"mydiary/internal/domain/entry"
)

// Статусы проверки пароля записи, которые возвращает сервер.
const (
	StatusNotProtected     = "not_protected"
	StatusSuccess          = "success"
	StatusInvalidPassword  = "invalid_password"
	StatusLocked           = "locked"
	StatusAttemptsExceeded = "attempts_exceeded"
	StatusPasswordRequired = "password_required"
)

var ErrUnauthorized = errors.New("требуется вход в систему")

type (
	EntryInput    = entryAPI.ContentRequest
	AttemptResult = entryAPI.AttemptResponse
	EntryView     = entry.View
	EntryList     = entry.ListResponse
	Stats         = entry.Stats
)

// SearchQuery параметры поиска. Нулевые значения не передаются.
type SearchQuery struct {
	Query   string
	MoodMin int
	MoodMax int
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// APIError ошибка, которую вернул сервер.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ошибка сервера: статус %d", e.StatusCode)
	}
	return fmt.Sprintf("ошибка сервера: %s", e.Message)
}

// RateLimitError сервер ограничил частоту попыток ввода пароля.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("слишком много попыток, повторите через %s", e.RetryAfter)
}
