package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/prompt"
	"mydiary/cmd/client/cmd/types"
	"mydiary/internal/app/client"
)

var (
	createInput   client.EntryInput
	createMood    int
	createProtect bool
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать запись",
	Long: `Создать запись дневника.

С флагом --protect запись сразу закрывается паролем.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		in := createInput
		if in.Title == "" {
			if in.Title, err = prompt.Line("Заголовок: "); err != nil {
				return err
			}
		}
		if in.Body == "" {
			if in.Body, err = prompt.Line("Текст: "); err != nil {
				return err
			}
		}
		if createMood != 0 {
			mood := createMood
			in.Mood = &mood
		}

		var password string
		if createProtect {
			if password, err = prompt.NewPassword("Пароль записи: "); err != nil {
				return err
			}
		}

		view, err := app.CreateEntry(cmd.Context(), in, password)
		if err != nil {
			return fmt.Errorf("ошибка создания записи: %w", err)
		}

		if types.JSONOutput(cmd) {
			return printJSON(view)
		}
		fmt.Printf("✅ Запись %d создана\n", view.ID)
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createInput.Title, "title", "t", "", "заголовок")
	CreateCmd.Flags().StringVarP(&createInput.Body, "body", "b", "", "текст")
	CreateCmd.Flags().StringSliceVar(&createInput.Tags, "tags", nil, "теги через запятую")
	CreateCmd.Flags().StringSliceVar(&createInput.Attachments, "attach", nil, "ссылки на вложения")
	CreateCmd.Flags().IntVarP(&createMood, "mood", "m", 0, "настроение (1-10)")
	CreateCmd.Flags().BoolVarP(&createProtect, "protect", "p", false, "закрыть запись паролем")
}
