package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pivolan/chart_builder/config"
	"github.com/pivolan/chart_builder/session"
	"github.com/spf13/cobra"
)

// uploadMaxAge is how long uploaded files stay on disk.
const uploadMaxAge = 2 * time.Hour

func main() {
	rootCmd := &cobra.Command{
		Use:   "chart_builder",
		Short: "Build bar, line and pie charts from tabular data",
		Long: `chart_builder classifies the fields of a dataset into dimensions and
measures, binds them to chart channels and renders the chart.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd(), newRenderCmd(), newFieldsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web API and, with TG_TOKEN set, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.GetConfig())
		},
	}
}

func serve(cfg *config.Config) error {
	registry, err := session.NewRegistry(cfg.SessionCacheSize)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return fmt.Errorf("error creating upload dir: %w", err)
	}

	var bot *chatBot
	var api *tgbotapi.BotAPI
	if cfg.TgToken != "" {
		api, err = tgbotapi.NewBotAPI(cfg.TgToken)
		if err != nil {
			return fmt.Errorf("tg error: %w", err)
		}
		bot = newChatBot(api, api, cfg, registry)
		log.Println("bot init")
	}

	var notifier uploadNotifier
	if bot != nil {
		notifier = bot
	}
	srv := newServer(cfg, registry, notifier)

	go func() {
		for {
			time.Sleep(time.Minute)
			if bot != nil {
				bot.expireLinks(time.Now())
			}
			if err := removeOldFiles(cfg.UploadDir, time.Now().Add(-uploadMaxAge)); err != nil {
				log.Printf("Error removing old uploads: %v", err)
			}
		}
	}()

	if bot != nil {
		defer bot.close()
		go func() {
			if err := bot.run(api); err != nil {
				log.Printf("bot stopped: %v", err)
			}
		}()
	}

	log.Printf("listen on: http://localhost%s", cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, srv.routes())
}

func removeOldFiles(dirPath string, maxAge time.Time) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())

		// If the file is a directory, recursively call this function on it
		if file.IsDir() {
			if err := removeOldFiles(filePath, maxAge); err != nil {
				return err
			}
			continue
		}

		info, err := file.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return err
			}
			log.Printf("Removed file: %s", filePath)
		}
	}
	return nil
}
