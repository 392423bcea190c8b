package commands

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"natteescraper/lib/configutil"
	"natteescraper/lib/scrapers/nattee"
	"natteescraper/lib/serviceutil"
	"natteescraper/services/export"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type Config struct {
	BaseUrl string `json:"base_url"`
}

var (
	scrapeWorkers *int
	scrapeOut     *string
)

func init() {
	scrapeWorkers = scrapeCmd.Flags().Int("workers", 8, "Number of concurrent scraping workers.")
	scrapeOut = scrapeCmd.Flags().String("out", "result.json", "The file to write scrape results to.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--workers N] [--out <path/to/result.json>]",
	Short: "Scrapes every task on the grader into a single JSON file.",
	Run: func(cmd *cobra.Command, args []string) {
		godotenv.Load()
		username := os.Getenv("GRADER_USERNAME")
		password := os.Getenv("GRADER_PASSWORD")
		if username == "" || password == "" {
			serviceutil.Fatal(
				"missing credentials",
				errors.New("GRADER_USERNAME and GRADER_PASSWORD must be set"),
			)
		}

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}

		ctx := cmd.Context()

		client, err := nattee.NewClient(ctx, nattee.ClientOptions{BaseUrl: cfg.BaseUrl})
		if err != nil {
			serviceutil.Fatal("failed to initialize grader client", err)
		}
		err = client.Login(ctx, username, password)
		if err != nil {
			serviceutil.Fatal("failed to login to the grader", err)
		}

		descs, err := client.Tasks(ctx)
		if err != nil {
			serviceutil.Fatal("failed to scrape task catalog", err)
		}
		slog.Info("scraped task catalog", "tasks", len(descs))

		var done atomic.Int64
		total := len(descs)

		t1 := time.Now()
		records, err := export.Run(ctx, client, descs, export.Options{
			Workers: *scrapeWorkers,
			Progress: func() {
				slog.Info("progress", "done", done.Add(1), "total", total)
			},
		})
		if err != nil {
			serviceutil.Fatal("failed to resolve tasks", err)
		}
		slog.Info("scraping time", "seconds", time.Since(t1).Seconds())

		data, err := json.Marshal(records)
		if err != nil {
			serviceutil.Fatal("failed to serialize results", err)
		}
		err = os.WriteFile(*scrapeOut, data, 0644)
		if err != nil {
			serviceutil.Fatal("failed to write results", err)
		}
		slog.Info("wrote results", "path", *scrapeOut, "records", len(records))
	},
}
