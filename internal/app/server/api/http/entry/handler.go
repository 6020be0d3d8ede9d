package entry

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"mydiary/internal/app/server/api/http/middleware/auth"
	"mydiary/internal/domain/entry"
	"mydiary/internal/domain/protection"
)

type Handler struct {
	service           entry.Servicer
	log               *slog.Logger
	middleware        huma.Middlewares
	attemptMiddleware huma.Middlewares
}

// NewHandler создает обработчик записей. attemptMiddleware применяется к операциям,
// которые могут считаться попыткой ввода пароля.
func NewHandler(service entry.Servicer, log *slog.Logger, middleware, attemptMiddleware huma.Middlewares) *Handler {
	return &Handler{
		service:           service,
		log:               log.With("component", "entry_handler"),
		middleware:        middleware,
		attemptMiddleware: attemptMiddleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.searchOp(), h.search)
	huma.Register(api, h.statsOp(), h.stats)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.verifyOp(), h.verify)
	huma.Register(api, h.updateOp(), h.update)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.protectOp(), h.protect)
	huma.Register(api, h.unprotectOp(), h.unprotect)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.List(ctx, userID, entry.Page{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, h.fail(err)
	}
	return &listOutput{Body: res}, nil
}

func (h *Handler) search(ctx context.Context, input *searchInput) (*listOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Search(ctx, userID, input.criteria())
	if err != nil {
		return nil, h.fail(err)
	}
	return &listOutput{Body: res}, nil
}

func (h *Handler) stats(ctx context.Context, _ *struct{}) (*statsOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	st, err := h.service.Stats(ctx, userID)
	if err != nil {
		return nil, h.fail(err)
	}
	return &statsOutput{Body: st}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	view, err := h.service.Create(ctx, userID, input.Body.input(), input.Body.Password)
	if err != nil {
		return nil, h.fail(err)
	}
	return &createOutput{Body: view}, nil
}

func (h *Handler) get(ctx context.Context, input *getInput) (*attemptOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Get(ctx, userID, input.ID, input.Password)
	if err != nil {
		return nil, h.fail(err)
	}
	return respond(res), nil
}

func (h *Handler) verify(ctx context.Context, input *verifyInput) (*attemptOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	action := input.Body.Action
	if action == "" {
		action = protection.ActionView
	}

	res, err := h.service.Verify(ctx, userID, input.ID, input.Body.Password, action)
	if err != nil {
		return nil, h.fail(err)
	}
	return respond(res), nil
}

func (h *Handler) update(ctx context.Context, input *updateInput) (*attemptOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Update(ctx, userID, input.ID, input.Body.input(), input.Password)
	if err != nil {
		return nil, h.fail(err)
	}
	return respond(res), nil
}

func (h *Handler) delete(ctx context.Context, input *passwordInput) (*attemptOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Delete(ctx, userID, input.ID, input.Password)
	if err != nil {
		return nil, h.fail(err)
	}

	out := respond(res)
	out.Body.Deleted = res.Outcome.Effect == protection.EffectDeleted
	return out, nil
}

func (h *Handler) protect(ctx context.Context, input *protectInput) (*attemptOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Protect(ctx, userID, input.ID, input.Body.Password, input.Body.CurrentPassword)
	if err != nil {
		return nil, h.fail(err)
	}
	return respond(res), nil
}

func (h *Handler) unprotect(ctx context.Context, input *passwordInput) (*attemptOutput, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Unprotect(ctx, userID, input.ID, input.Password)
	if err != nil {
		return nil, h.fail(err)
	}
	return respond(res), nil
}

func currentUser(ctx context.Context) (int, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return 0, huma.Error401Unauthorized("Unauthorized")
	}
	return userID, nil
}

// respond переводит результат проверки пароля в HTTP-ответ.
func respond(res entry.Result) *attemptOutput {
	out := &attemptOutput{Status: http.StatusOK}
	out.Body.Entry = res.Entry

	if errors.Is(res.Err(), entry.ErrPasswordRequired) {
		out.Status = http.StatusForbidden
		out.Body.Status = "password_required"
		return out
	}

	o := res.Outcome
	out.Body.Status = o.Kind.String()

	switch o.Kind {
	case protection.OutcomeInvalidPassword:
		out.Status = http.StatusForbidden
		remaining := o.RemainingAttempts
		out.Body.RemainingAttempts = &remaining
	case protection.OutcomeLocked, protection.OutcomeAttemptsExceeded:
		out.Status = http.StatusLocked
		secs := retrySeconds(o)
		out.RetryAfter = strconv.Itoa(secs)
		out.Body.RetryAfterSeconds = secs
		out.Body.SessionTerminated = o.SessionsTerminated
	}

	return out
}

func retrySeconds(o protection.Outcome) int {
	secs := int(math.Ceil(o.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func (h *Handler) fail(err error) error {
	switch {
	case errors.Is(err, entry.ErrNotFound), errors.Is(err, entry.ErrForbidden):
		return huma.Error404NotFound("Entry not found")
	case errors.Is(err, entry.ErrInvalidData),
		errors.Is(err, protection.ErrInvalidPassword),
		errors.Is(err, protection.ErrUnknownAction):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, entry.ErrPasswordRequired):
		return huma.Error403Forbidden("Entry password required")
	case errors.Is(err, entry.ErrVersionConflict):
		return huma.Error409Conflict("Entry was modified concurrently, retry the request")
	default:
		h.log.Error("entry request failed", "error", err)
		return huma.Error500InternalServerError("Internal server error")
	}
}
