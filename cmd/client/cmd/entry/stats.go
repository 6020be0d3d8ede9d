package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/types"
)

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Статистика по записям",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		st, err := app.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения статистики: %w", err)
		}

		if types.JSONOutput(cmd) {
			return printJSON(st)
		}
		printStats(st)
		return nil
	},
}
