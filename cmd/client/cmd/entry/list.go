package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/types"
)

var (
	listLimit  int
	listOffset int
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей",
	Long: `Список записей дневника. Закрытые записи показываются скрытыми.

Поддерживается пагинация через флаги --limit и --offset.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		list, err := app.ListEntries(cmd.Context(), listLimit, listOffset)
		if err != nil {
			return fmt.Errorf("ошибка получения списка записей: %w", err)
		}

		if types.JSONOutput(cmd) {
			return printJSON(list)
		}
		printList(list)
		return nil
	},
}

func init() {
	ListCmd.Flags().IntVar(&listLimit, "limit", 20, "количество записей")
	ListCmd.Flags().IntVar(&listOffset, "offset", 0, "смещение")
}
