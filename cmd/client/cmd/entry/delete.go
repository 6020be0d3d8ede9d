package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/prompt"
	"mydiary/cmd/client/cmd/types"
)

var deleteYes bool

var DeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Удалить запись",
	Long: `Удалить запись. Для закрытой записи пароль проверяется и запись удаляется
одним запросом.`,
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

		if !deleteYes {
			answer, err := prompt.Line(fmt.Sprintf("Удалить запись %d? [y/N]: ", id))
			if err != nil {
				return err
			}
			if answer != "y" && answer != "Y" {
				fmt.Println("Отменено")
				return nil
			}
		}

		password, err := passwordIfProtected(cmd.Context(), app, id)
		if err != nil {
			return err
		}

		res, err := app.DeleteEntry(cmd.Context(), id, password)
		if err != nil {
			return fmt.Errorf("ошибка удаления записи: %w", err)
		}
		if err := checkAttempt(res); err != nil {
			return err
		}

		fmt.Printf("✅ Запись %d удалена\n", id)
		return nil
	},
}

func init() {
	DeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "не спрашивать подтверждение")
}
