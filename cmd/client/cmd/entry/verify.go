package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/prompt"
	"mydiary/cmd/client/cmd/types"
	"mydiary/internal/domain/protection"
)

var verifyAction string

var VerifyCmd = &cobra.Command{
	Use:   "verify ID",
	Short: "Проверить пароль записи",
	Long: `Проверить пароль записи для действия view, edit или delete.

Действие delete после успешной проверки удаляет запись.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		action, err := protection.ParseAction(verifyAction)
		if err != nil {
			return err
		}

		password, err := prompt.Password("Пароль записи: ")
		if err != nil {
			return err
		}

		res, err := app.VerifyPassword(cmd.Context(), id, password, action)
		if err != nil {
			return err
		}
		if types.JSONOutput(cmd) {
			return printJSON(res)
		}
		if err := checkAttempt(res); err != nil {
			return err
		}

		switch {
		case action == protection.ActionDelete:
			fmt.Printf("✅ Запись %d удалена\n", id)
		case res.Entry != nil && action == protection.ActionView:
			printEntry(res.Entry)
		default:
			fmt.Println("✅ Пароль подтвержден")
		}
		return nil
	},
}

func init() {
	VerifyCmd.Flags().StringVarP(&verifyAction, "action", "a", string(protection.ActionView), "действие: view, edit, delete")
}
