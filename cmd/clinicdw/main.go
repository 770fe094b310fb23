package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinicdw/internal/archive"
	"clinicdw/internal/assistant"
	"clinicdw/internal/config"
	"clinicdw/internal/warehouse"
)

func main() {
	root := &cobra.Command{
		Use:           "clinicdw",
		Short:         "Clinical data warehouse loader and query assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(initCmd(), loadCmd(), archiveCmd(), askCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr, err := cfg.ResolveDatabaseURL()
	if err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	poolConfig.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func initCmd() *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the warehouse schema (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx := cmd.Context()
			pool, err := newPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if drop {
				if err := warehouse.DropSchema(ctx, pool); err != nil {
					return err
				}
				log.Info().Msg("dropped existing schema")
			}
			if err := warehouse.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			log.Info().Msg("schema ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "Drop all warehouse tables before creating them")
	return cmd
}

func loadCmd() *cobra.Command {
	var dataDir, from string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Run the extract-to-warehouse pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			if dataDir == "" {
				dataDir = cfg.DataDir
			}

			ctx := cmd.Context()
			pool, err := newPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := warehouse.EnsureSchema(ctx, pool); err != nil {
				return err
			}

			p := warehouse.NewPipeline(pool, dataDir, warehouse.DefaultPolicies(), log)
			if err := p.Run(ctx, from); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory containing the four extract files")
	cmd.Flags().StringVar(&from, "from", "", "Resume from this stage (staging, dimensions, entities, facts)")
	return cmd
}

func archiveCmd() *cobra.Command {
	var inFile, outFile, source string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Convert a raw extract to Parquet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inFile == "" || source == "" {
				return fmt.Errorf("--file and --source are required")
			}
			if outFile == "" {
				base := strings.TrimSuffix(filepath.Base(inFile), filepath.Ext(inFile))
				outFile = base + ".parquet"
			}

			n, err := archive.Archive(source, inFile, outFile)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", n, outFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&inFile, "file", "", "Input extract file (tab-separated)")
	cmd.Flags().StringVar(&outFile, "out", "", "Output Parquet file (default: input name with .parquet)")
	cmd.Flags().StringVar(&source, "source", "", "Extract kind (patients, admissions, diagnoses, labs)")
	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask",
		Short: "Interactive natural-language query assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.OpenAIAPIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY is required")
			}

			ctx := cmd.Context()
			pool, err := newPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			gen := assistant.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
			session := assistant.NewSession(gen, pool, os.Stdin, os.Stdout)
			return session.Run(ctx)
		},
	}
}
