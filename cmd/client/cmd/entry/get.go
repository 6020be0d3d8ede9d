package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/types"
)

var GetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Показать запись",
	Long: `Показать запись. Для закрытой записи запрашивается пароль,
неверный пароль засчитывается как попытка.`,
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

		password, err := passwordIfProtected(cmd.Context(), app, id)
		if err != nil {
			return err
		}

		res, err := app.GetEntry(cmd.Context(), id, password)
		if err != nil {
			return err
		}
		if err := checkAttempt(res); err != nil {
			return err
		}

		if res.Entry == nil {
			return fmt.Errorf("сервер не вернул запись")
		}

		if types.JSONOutput(cmd) {
			return printJSON(res.Entry)
		}
		printEntry(res.Entry)
		return nil
	},
}
