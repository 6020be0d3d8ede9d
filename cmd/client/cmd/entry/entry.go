package entry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/prompt"
	"mydiary/internal/app/client"
)

// EntryCmd - родительская команда для операций с записями дневника
var EntryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"entries", "e"},
	Short:   "Записи дневника",
}

func init() {
	EntryCmd.AddCommand(
		ListCmd, SearchCmd, StatsCmd, GetCmd, CreateCmd, EditCmd,
		DeleteCmd, VerifyCmd, ProtectCmd, UnprotectCmd,
	)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("неверный ID записи: %q", arg)
	}
	return id, nil
}

// passwordIfProtected спрашивает пароль, только если запись закрыта и пароля нет в кэше.
// Просмотр без пароля не считается попыткой.
func passwordIfProtected(ctx context.Context, app *client.App, id int) (string, error) {
	res, err := app.Peek(ctx, id)
	if err != nil {
		return "", err
	}
	if res.Status != client.StatusPasswordRequired {
		return "", nil
	}
	if _, ok := app.Cache().Get(id); ok {
		return "", nil
	}
	return prompt.Password("Пароль записи: ")
}

// checkAttempt превращает неуспешный результат проверки пароля в ошибку.
func checkAttempt(res *client.AttemptResult) error {
	switch res.Status {
	case client.StatusSuccess, client.StatusNotProtected:
		return nil
	case client.StatusInvalidPassword:
		remaining := 0
		if res.RemainingAttempts != nil {
			remaining = *res.RemainingAttempts
		}
		return fmt.Errorf("неверный пароль, осталось попыток: %d", remaining)
	case client.StatusLocked:
		return fmt.Errorf("запись заблокирована, повторите через %s", retryIn(res))
	case client.StatusAttemptsExceeded:
		msg := fmt.Sprintf("превышено число попыток, запись заблокирована на %s", retryIn(res))
		if res.SessionTerminated {
			msg += "; все сессии завершены, войдите снова: mydiary auth login"
		}
		return fmt.Errorf("%s", msg)
	case client.StatusPasswordRequired:
		return fmt.Errorf("запись закрыта паролем")
	default:
		return fmt.Errorf("неизвестный ответ сервера: %s", res.Status)
	}
}

func retryIn(res *client.AttemptResult) time.Duration {
	return time.Duration(res.RetryAfterSeconds) * time.Second
}
