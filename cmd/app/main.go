package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/hangar/internal"
	pkgconfig "github.com/starford/hangar/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Info("config file not found, using defaults", slog.String("path", configPath))
	}
	// Flags win over the file.
	if dir := cmd.String("content"); dir != "" {
		cfg.Content.Dir = dir
	}
	if dir := cmd.String("artifacts"); dir != "" {
		cfg.Artifacts.Dir = dir
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("dev") {
		cfg.App.Mode = internal.ModeDev
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func ingest(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Ingest(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("ingest error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "hangar",
		Usage:   "Aircraft-maintenance training content organised by ATA chapter",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "content",
				Usage:   "Markdown content directory (overrides content.dir)",
				Sources: cli.EnvVars("HANGAR_CONTENT_DIR"),
			},
			&cli.StringFlag{
				Name:    "artifacts",
				Usage:   "Build artifacts directory (overrides artifacts.dir)",
				Sources: cli.EnvVars("HANGAR_ARTIFACTS_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the content API (default)",
				Action: serve,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dev",
						Usage: "Watch the content directory and rebuild on change",
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Build index.json and documents.json from the content directory",
				Action: ingest,
			},
			{
				Name:   "mcp",
				Usage:  "Expose the content queries over MCP stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
