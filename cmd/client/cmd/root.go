package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mydiary/cmd/client/cmd/auth"
	"mydiary/cmd/client/cmd/entry"
	"mydiary/cmd/client/cmd/types"
	"mydiary/internal/app/client"
	"mydiary/internal/app/client/config"
	"mydiary/internal/utils/logger"
)

var (
	cfgFile    string
	jsonOutput bool
	serverAddr string
)

var rootCmd = &cobra.Command{
	Use:   "mydiary",
	Short: "MyDiary - клиент личного дневника",
	Long: `MyDiary — клиент личного дневника с записями, закрытыми паролем.

Пароль записи проверяется сервером при каждом обращении. После трех неверных
попыток запись блокируется на три часа, а все сессии пользователя завершаются.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	v, err := loadConfigFile()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	// Флаги командной строки важнее конфигурации
	if serverAddr != "" {
		cfg.ServerAddress = serverAddr
	}

	log := logger.NewWithLevel(cfg.Env, cfg.LogLevel)

	app, err := client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, types.ClientAppKey, app))
	return nil
}

func loadConfigFile() (*viper.Viper, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mydiary"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return v, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "адрес сервера MyDiary")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(entry.EntryCmd)
}
