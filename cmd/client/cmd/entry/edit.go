package entry

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/cmd/client/cmd/types"
	"mydiary/internal/app/client"
)

var EditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Изменить запись",
	Long: `Изменить запись. Неуказанные флаги оставляют поля без изменений.

Для закрытой записи пароль проверяется сервером и при чтении, и при сохранении.`,
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

		in, err := editedInput(cmd, res.Entry)
		if err != nil {
			return err
		}

		// пустой пароль: клиент возьмет подтвержденный из кэша
		res, err = app.UpdateEntry(cmd.Context(), id, in, password)
		if err != nil {
			return fmt.Errorf("ошибка сохранения записи: %w", err)
		}
		if err := checkAttempt(res); err != nil {
			return err
		}

		if types.JSONOutput(cmd) {
			return printJSON(res.Entry)
		}
		fmt.Printf("✅ Запись %d обновлена\n", id)
		return nil
	},
}

func editedInput(cmd *cobra.Command, cur *client.EntryView) (client.EntryInput, error) {
	in := client.EntryInput{
		Title:       cur.Title,
		Body:        cur.Body,
		Tags:        cur.Tags,
		Attachments: cur.Attachments,
		Mood:        cur.Mood,
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("title") {
		in.Title, err = flags.GetString("title")
	}
	if err == nil && flags.Changed("body") {
		in.Body, err = flags.GetString("body")
	}
	if err == nil && flags.Changed("tags") {
		in.Tags, err = flags.GetStringSlice("tags")
	}
	if err == nil && flags.Changed("attach") {
		in.Attachments, err = flags.GetStringSlice("attach")
	}
	if err == nil && flags.Changed("mood") {
		var mood int
		mood, err = flags.GetInt("mood")
		in.Mood = &mood
		if mood == 0 {
			in.Mood = nil
		}
	}
	return in, err
}

func init() {
	EditCmd.Flags().StringP("title", "t", "", "новый заголовок")
	EditCmd.Flags().StringP("body", "b", "", "новый текст")
	EditCmd.Flags().StringSlice("tags", nil, "теги через запятую")
	EditCmd.Flags().StringSlice("attach", nil, "ссылки на вложения")
	EditCmd.Flags().IntP("mood", "m", 0, "настроение (1-10, 0 - убрать)")
}
