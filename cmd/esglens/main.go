// Package main provides the esglens binary entry point.
// Esglens is an ESG reporting assistant: it indexes sustainability
// documents into a vector store and answers questions grounded in them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// Register LLM providers via init()
	_ "github.com/esglens/esglens/llm/providers"

	"github.com/spf13/cobra"

	"github.com/esglens/esglens/config"
)

const (
	Version = "0.1.0"
	appName = "esglens"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "ESG reporting assistant",
		Long: `Esglens indexes ESG documents (frameworks, disclosures, company data)
into a vector store and answers questions grounded in them, with
framework-aware retrieval across GRI, SASB, TCFD, CSRD, and IFRS.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(&configPath, &logLevel))
	cmd.AddCommand(ingestCmd(&configPath, &logLevel))
	cmd.AddCommand(askCmd(&configPath, &logLevel))
	cmd.AddCommand(statsCmd(&configPath, &logLevel))
	cmd.AddCommand(configCmd(&logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func serveCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and document watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Serve(ctx)
		},
	}
}

func ingestCmd(configPath, logLevel *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index documents from a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer app.Close()

			indexed, err := app.IngestDir(cmd.Context(), dir)
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %d files (%d chunks total)\n", indexed, app.Stats().TotalChunks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to scan (default: configured documents_dir)")
	return cmd
}

func askCmd(configPath, logLevel *string) *cobra.Command {
	var frameworks string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question against the indexed documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer app.Close()

			answer := app.Ask(cmd.Context(), strings.Join(args, " "), frameworks)

			fmt.Println(answer.Response)
			fmt.Printf("\nConfidence: %.2f | References: %d | Template: %s\n",
				answer.ConfidenceScore, len(answer.References), answer.PromptTemplate)
			return nil
		},
	}

	cmd.Flags().StringVarP(&frameworks, "frameworks", "f", "", "Comma-separated framework focus (e.g. GRI,TCFD)")
	return cmd
}

func statsCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := json.MarshalIndent(app.Stats(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func configCmd(logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(*logLevel)
			return config.NewLoader(logger).EnsureUserConfig()
		},
	})

	return cmd
}

// setup loads configuration, configures logging, and builds the app.
func setup(configPath, logLevel string) (*App, error) {
	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(logger).Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return newApp(cfg, logger)
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
