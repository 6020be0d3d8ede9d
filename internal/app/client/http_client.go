package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"mydiary/internal/app/client/config"
	entryAPI "mydiary/internal/app/server/api/http/entry"
	userAPI "mydiary/internal/app/server/api/http/user"
	"mydiary/internal/domain/protection"
)

type HTTPClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &HTTPClient{
		client:    client,
		log:       log.With("component", "http_client"),
		baseURL:   cfg.BaseURL(),
		userAgent: "MyDiary-Client/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *HTTPClient) SetToken(token string) {
	h.token = token
}

// HealthCheck проверяет доступность сервера
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, nil)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) Register(ctx context.Context, login, password string) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/user/register", userAPI.BaseRequest{
		Login:    login,
		Password: password,
	}, nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) Login(ctx context.Context, login, password string) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/user/login", userAPI.BaseRequest{
		Login:    login,
		Password: password,
	}, nil)
	if err != nil {
		return "", err
	}

	var loginResp userAPI.LoginResponse
	if err := h.parseResponse(resp, &loginResp); err != nil {
		return "", err
	}

	h.token = loginResp.Token
	return loginResp.Token, nil
}

func (h *HTTPClient) Logout(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/user/logout", nil, nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) ListEntries(ctx context.Context, limit, offset int) (EntryList, error) {
	q := url.Values{}
	setInt(q, "limit", limit)
	setInt(q, "offset", offset)

	var list EntryList
	resp, err := h.doRequest(ctx, http.MethodGet, withQuery("/api/entries", q), nil, nil)
	if err != nil {
		return list, err
	}
	err = h.parseResponse(resp, &list)
	return list, err
}

func (h *HTTPClient) SearchEntries(ctx context.Context, sq SearchQuery) (EntryList, error) {
	q := url.Values{}
	if sq.Query != "" {
		q.Set("q", sq.Query)
	}
	setInt(q, "mood_min", sq.MoodMin)
	setInt(q, "mood_max", sq.MoodMax)
	setInt(q, "limit", sq.Limit)
	setInt(q, "offset", sq.Offset)
	if sq.From != nil {
		q.Set("from", sq.From.Format(time.RFC3339))
	}
	if sq.To != nil {
		q.Set("to", sq.To.Format(time.RFC3339))
	}

	var list EntryList
	resp, err := h.doRequest(ctx, http.MethodGet, withQuery("/api/entries/search", q), nil, nil)
	if err != nil {
		return list, err
	}
	err = h.parseResponse(resp, &list)
	return list, err
}

func (h *HTTPClient) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/entries/stats", nil, nil)
	if err != nil {
		return st, err
	}
	err = h.parseResponse(resp, &st)
	return st, err
}

func (h *HTTPClient) CreateEntry(ctx context.Context, in EntryInput, password string) (EntryView, error) {
	body := struct {
		EntryInput
		Password string `json:"password,omitempty"`
	}{EntryInput: in, Password: password}

	var view EntryView
	resp, err := h.doRequest(ctx, http.MethodPost, "/api/entries", body, nil)
	if err != nil {
		return view, err
	}
	err = h.parseResponse(resp, &view)
	return view, err
}

func (h *HTTPClient) GetEntry(ctx context.Context, id int, password string) (*AttemptResult, error) {
	return h.attempt(ctx, http.MethodGet, entryPath(id), nil, password)
}

func (h *HTTPClient) VerifyPassword(ctx context.Context, id int, password string, action protection.Action) (*AttemptResult, error) {
	return h.attempt(ctx, http.MethodPost, entryPath(id)+"/verify", map[string]any{
		"password": password,
		"action":   action,
	}, "")
}

func (h *HTTPClient) UpdateEntry(ctx context.Context, id int, in EntryInput, password string) (*AttemptResult, error) {
	return h.attempt(ctx, http.MethodPut, entryPath(id), in, password)
}

func (h *HTTPClient) DeleteEntry(ctx context.Context, id int, password string) (*AttemptResult, error) {
	return h.attempt(ctx, http.MethodDelete, entryPath(id), nil, password)
}

func (h *HTTPClient) Protect(ctx context.Context, id int, newPassword, currentPassword string) (*AttemptResult, error) {
	return h.attempt(ctx, http.MethodPost, entryPath(id)+"/protection", map[string]string{
		"password":         newPassword,
		"current_password": currentPassword,
	}, "")
}

func (h *HTTPClient) Unprotect(ctx context.Context, id int, currentPassword string) (*AttemptResult, error) {
	return h.attempt(ctx, http.MethodDelete, entryPath(id)+"/protection", nil, currentPassword)
}

// attempt выполняет запрос, который сервер может засчитать как попытку ввода пароля.
func (h *HTTPClient) attempt(ctx context.Context, method, path string, body any, password string) (*AttemptResult, error) {
	var headers map[string]string
	if password != "" {
		headers = map[string]string{entryAPI.PasswordHeader: password}
	}

	resp, err := h.doRequest(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusForbidden, http.StatusLocked:
	default:
		return nil, h.parseResponse(resp, nil)
	}
	defer resp.Body.Close()

	var res AttemptResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil || res.Status == "" {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	h.log.Debug("Результат проверки пароля", "path", path, "status", res.Status)
	return &res, nil
}

func (h *HTTPClient) doRequest(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	h.log.Debug("Отправка запроса", "method", method, "path", req.URL.Path)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *HTTPClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RateLimitError{RetryAfter: time.Duration(secs) * time.Second}
	case resp.StatusCode >= 400:
		var errResp struct {
			Error  string `json:"error"`
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, &errResp); err == nil {
			switch {
			case errResp.Detail != "":
				apiErr.Message = errResp.Detail
			case errResp.Error != "":
				apiErr.Message = errResp.Error
			default:
				apiErr.Message = errResp.Title
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}

func entryPath(id int) string {
	return "/api/entries/" + strconv.Itoa(id)
}

func setInt(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
