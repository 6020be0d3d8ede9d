package entry

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/types"
	"mydiary/internal/app/client"
)

const dayLayout = "2006-01-02"

var (
	searchQuery client.SearchQuery
	searchFrom  string
	searchTo    string
)

var SearchCmd = &cobra.Command{
	Use:   "search [текст]",
	Short: "Поиск записей",
	Long: `Поиск по заголовку, тексту и тегам, фильтры по настроению и датам.

Текст и настроение закрытых записей в поиске не участвуют.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		q := searchQuery
		if len(args) == 1 {
			q.Query = args[0]
		}
		if q.From, err = parseDay(searchFrom, false); err != nil {
			return err
		}
		if q.To, err = parseDay(searchTo, true); err != nil {
			return err
		}

		list, err := app.SearchEntries(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("ошибка поиска: %w", err)
		}

		if types.JSONOutput(cmd) {
			return printJSON(list)
		}
		printList(list)
		return nil
	},
}

// parseDay разбирает дату в локальной зоне. Для конца периода берется конец дня.
func parseDay(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dayLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("неверная дата %q, ожидается %s", s, dayLayout)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func init() {
	SearchCmd.Flags().IntVar(&searchQuery.MoodMin, "mood-min", 0, "минимальное настроение (1-10)")
	SearchCmd.Flags().IntVar(&searchQuery.MoodMax, "mood-max", 0, "максимальное настроение (1-10)")
	SearchCmd.Flags().StringVar(&searchFrom, "from", "", "с даты (ГГГГ-ММ-ДД)")
	SearchCmd.Flags().StringVar(&searchTo, "to", "", "по дату включительно (ГГГГ-ММ-ДД)")
	SearchCmd.Flags().IntVar(&searchQuery.Limit, "limit", 20, "количество записей")
	SearchCmd.Flags().IntVar(&searchQuery.Offset, "offset", 0, "смещение")
}
