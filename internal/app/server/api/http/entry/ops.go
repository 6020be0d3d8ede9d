package entry

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-list",
		Method:      http.MethodGet,
		Path:        "/api/entries",
		Summary:     "Список записей",
		Description: "Закрытые записи возвращаются скрытыми",
		Tags:        []string{"entries"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) searchOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-search",
		Method:      http.MethodGet,
		Path:        "/api/entries/search",
		Summary:     "Поиск записей",
		Tags:        []string{"entries"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) statsOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-stats",
		Method:      http.MethodGet,
		Path:        "/api/entries/stats",
		Summary:     "Статистика по записям",
		Tags:        []string{"entries"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID:   "entries-create",
		Method:        http.MethodPost,
		Path:          "/api/entries",
		Summary:       "Создать запись",
		Tags:          []string{"entries"},
		DefaultStatus: http.StatusCreated,
		Security:      bearer,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-get",
		Method:      http.MethodGet,
		Path:        "/api/entries/{id}",
		Summary:     "Получить запись",
		Description: "С заголовком X-Entry-Password считается попыткой ввода пароля",
		Tags:        []string{"entries"},
		Security:    bearer,
		Middlewares: h.attemptMiddleware,
	}
}

func (h *Handler) verifyOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-verify-password",
		Method:      http.MethodPost,
		Path:        "/api/entries/{id}/verify",
		Summary:     "Проверить пароль записи",
		Tags:        []string{"entries", "protection"},
		Security:    bearer,
		Middlewares: h.attemptMiddleware,
	}
}

func (h *Handler) updateOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-update",
		Method:      http.MethodPut,
		Path:        "/api/entries/{id}",
		Summary:     "Обновить запись",
		Tags:        []string{"entries"},
		Security:    bearer,
		Middlewares: h.attemptMiddleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-delete",
		Method:      http.MethodDelete,
		Path:        "/api/entries/{id}",
		Summary:     "Удалить запись",
		Tags:        []string{"entries"},
		Security:    bearer,
		Middlewares: h.attemptMiddleware,
	}
}

func (h *Handler) protectOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-protect",
		Method:      http.MethodPost,
		Path:        "/api/entries/{id}/protection",
		Summary:     "Установить или сменить пароль записи",
		Tags:        []string{"protection"},
		Security:    bearer,
		Middlewares: h.attemptMiddleware,
	}
}

func (h *Handler) unprotectOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-unprotect",
		Method:      http.MethodDelete,
		Path:        "/api/entries/{id}/protection",
		Summary:     "Снять пароль с записи",
		Tags:        []string{"protection"},
		Security:    bearer,
		Middlewares: h.attemptMiddleware,
	}
}
