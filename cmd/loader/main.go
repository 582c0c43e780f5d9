// Command loader bulk-imports CSV exports into the transfer-market
// database.
//
// Usage:
//
//	transferdata-loader clubs --file clubs.csv
//	transferdata-loader players --file players.csv
//	transferdata-loader transfers --file transfers.csv
//	transferdata-loader all --dir ./csv
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kicktrack/transferdata/internal/config"
	"github.com/kicktrack/transferdata/internal/db"
	"github.com/kicktrack/transferdata/internal/loader"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "transferdata-loader",
		Short: "CSV bulk loader for the transfer-market database",
	}

	root.AddCommand(tableCmd("clubs", "Import clubs from CSV", func(im *loader.Importer) tableImport { return im.ImportClubs }))
	root.AddCommand(tableCmd("competitions", "Import competitions from CSV", func(im *loader.Importer) tableImport { return im.ImportCompetitions }))
	root.AddCommand(tableCmd("players", "Import players from CSV", func(im *loader.Importer) tableImport { return im.ImportPlayers }))
	root.AddCommand(tableCmd("games", "Import games from CSV", func(im *loader.Importer) tableImport { return im.ImportGames }))
	root.AddCommand(tableCmd("transfers", "Import transfers from CSV", func(im *loader.Importer) tableImport { return im.ImportTransfers }))
	root.AddCommand(allCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type tableImport func(context.Context, string) (*loader.Result, error)

func tableCmd(name, short string, pick func(*loader.Importer) tableImport) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withImporter(func(ctx context.Context, im *loader.Importer) error {
				res, err := pick(im)(ctx, file)
				if res != nil {
					logResult(res)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", name+".csv", "CSV file to import")
	return cmd
}

func allCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Import every table in FK-safe order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withImporter(func(ctx context.Context, im *loader.Importer) error {
				results, err := im.ImportAll(ctx, loader.Files{
					Clubs:        filepath.Join(dir, "clubs.csv"),
					Competitions: filepath.Join(dir, "competitions.csv"),
					Players:      filepath.Join(dir, "players.csv"),
					Games:        filepath.Join(dir, "games.csv"),
					Transfers:    filepath.Join(dir, "transfers.csv"),
				})
				for _, res := range results {
					logResult(res)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory containing the CSV files")
	return cmd
}

// withImporter wires config, database pool, and signal handling around
// an import run.
func withImporter(fn func(context.Context, *loader.Importer) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, loader.New(pool.Pool, logger))
}

func logResult(res *loader.Result) {
	logger.Info("import result", "summary", res.Summary())
	for _, msg := range res.Errors {
		logger.Warn("row error", "table", res.Table, "error", msg)
	}
}
