package types

import (
	"fmt"

	"github.com/spf13/cobra"

	"mydiary/internal/app/client"
)

type contextKey string

const ClientAppKey contextKey = "app"

// App достает приложение, созданное в PersistentPreRunE корневой команды.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// JSONOutput сообщает, передан ли глобальный флаг --json.
func JSONOutput(cmd *cobra.Command) bool {
	f := cmd.Flag("json")
	return f != nil && f.Value.String() == "true"
}
