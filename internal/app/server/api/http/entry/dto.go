package entry

import (
	"time"

	"mydiary/internal/domain/entry"
	"mydiary/internal/domain/protection"
)

const PasswordHeader = "X-Entry-Password"

type ContentRequest struct {
	Title       string   `json:"title" minLength:"1" maxLength:"200" doc:"Заголовок"`
	Body        string   `json:"body,omitempty" doc:"Текст записи"`
	Tags        []string `json:"tags,omitempty"`
	Attachments []string `json:"attachments,omitempty" doc:"Ссылки на вложения"`
	Mood        *int     `json:"mood,omitempty" minimum:"1" maximum:"10" doc:"Настроение 1-10"`
}

func (r ContentRequest) input() entry.Input {
	return entry.Input{
		Title:       r.Title,
		Body:        r.Body,
		Tags:        r.Tags,
		Attachments: r.Attachments,
		Mood:        r.Mood,
	}
}

type listInput struct {
	Limit  int `query:"limit" default:"20" minimum:"1" maximum:"100"`
	Offset int `query:"offset" minimum:"0"`
}

type listOutput struct {
	Body entry.ListResponse
}

type searchInput struct {
	Query   string    `query:"q" maxLength:"200" doc:"Поиск по заголовку, тексту и тегам открытых записей"`
	MoodMin int       `query:"mood_min" minimum:"0" maximum:"10"`
	MoodMax int       `query:"mood_max" minimum:"0" maximum:"10"`
	From    time.Time `query:"from"`
	To      time.Time `query:"to"`
	Limit   int       `query:"limit" default:"20" minimum:"1" maximum:"100"`
	Offset  int       `query:"offset" minimum:"0"`
}

func (in *searchInput) criteria() entry.Criteria {
	c := entry.Criteria{
		Query: in.Query,
		Page:  entry.Page{Limit: in.Limit, Offset: in.Offset},
	}
	if in.MoodMin > 0 {
		v := in.MoodMin
		c.MoodMin = &v
	}
	if in.MoodMax > 0 {
		v := in.MoodMax
		c.MoodMax = &v
	}
	if !in.From.IsZero() {
		v := in.From
		c.From = &v
	}
	if !in.To.IsZero() {
		v := in.To
		c.To = &v
	}
	return c
}

type statsOutput struct {
	Body entry.Stats
}

type createInput struct {
	Body struct {
		ContentRequest
		Password string `json:"password,omitempty" maxLength:"72" doc:"Пароль записи; если задан, запись создается закрытой"`
	}
}

type createOutput struct {
	Body entry.View
}

type getInput struct {
	ID       int    `path:"id"`
	Password string `header:"X-Entry-Password" doc:"Пароль записи; без него закрытая запись возвращается скрытой"`
}

type verifyInput struct {
	ID   int `path:"id"`
	Body struct {
		Password string            `json:"password" minLength:"1" maxLength:"72"`
		Action   protection.Action `json:"action,omitempty" doc:"Defaults to view"`
	}
}

type updateInput struct {
	ID       int    `path:"id"`
	Password string `header:"X-Entry-Password"`
	Body     ContentRequest
}

type protectInput struct {
	ID   int `path:"id"`
	Body struct {
		Password        string `json:"password" minLength:"1" maxLength:"72" doc:"Новый пароль"`
		CurrentPassword string `json:"current_password,omitempty" doc:"Текущий пароль, если запись уже закрыта"`
	}
}

type passwordInput struct {
	ID       int    `path:"id"`
	Password string `header:"X-Entry-Password"`
}

// AttemptResponse describes the result of a password-gated operation.
type AttemptResponse struct {
	Status            string      `json:"status" enum:"not_protected,success,invalid_password,locked,attempts_exceeded,password_required" doc:"Результат проверки пароля"`
	RemainingAttempts *int        `json:"remaining_attempts,omitempty"`
	RetryAfterSeconds int         `json:"retry_after_seconds,omitempty"`
	SessionTerminated bool        `json:"session_terminated,omitempty" doc:"Все сессии пользователя завершены"`
	Deleted           bool        `json:"deleted,omitempty"`
	Entry             *entry.View `json:"entry,omitempty"`
}

type attemptOutput struct {
	Status     int
	RetryAfter string `header:"Retry-After"`
	Body       AttemptResponse
}
