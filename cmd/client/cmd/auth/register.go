package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/prompt"
	"mydiary/cmd/client/cmd/types"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		fmt.Println("=== Регистрация нового пользователя ===")
		fmt.Println()

		login, err := prompt.Line("Login: ")
		if err != nil {
			return err
		}

		password, err := prompt.NewPassword("Пароль: ")
		if err != nil {
			return err
		}

		if err := app.Register(cmd.Context(), login, password); err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		fmt.Println()
		fmt.Println("✅ Регистрация успешно завершена!")
		fmt.Println("Теперь вы можете войти в систему: mydiary auth login")

		return nil
	},
}
