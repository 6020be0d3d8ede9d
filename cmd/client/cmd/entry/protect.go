package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/prompt"
	"mydiary/cmd/client/cmd/types"
)

var ProtectCmd = &cobra.Command{
	Use:   "protect ID",
	Short: "Закрыть запись паролем или сменить пароль",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := passwordIfProtected(cmd.Context(), app, id)
		if err != nil {
			return err
		}

		newPassword, err := prompt.NewPassword("Новый пароль записи: ")
		if err != nil {
			return err
		}

		res, err := app.Protect(cmd.Context(), id, newPassword, current)
		if err != nil {
			return fmt.Errorf("ошибка установки пароля: %w", err)
		}
		if err := checkAttempt(res); err != nil {
			return err
		}

		fmt.Printf("✅ Запись %d закрыта паролем\n", id)
		return nil
	},
}

var UnprotectCmd = &cobra.Command{
	Use:   "unprotect ID",
	Short: "Снять пароль с записи",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := passwordIfProtected(cmd.Context(), app, id)
		if err != nil {
			return err
		}

		res, err := app.Unprotect(cmd.Context(), id, current)
		if err != nil {
			return fmt.Errorf("ошибка снятия пароля: %w", err)
		}
		if err := checkAttempt(res); err != nil {
			return err
		}

		fmt.Printf("✅ Пароль с записи %d снят\n", id)
		return nil
	},
}
