package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matthias/iso20022-toolkit/internal/config"
	"github.com/matthias/iso20022-toolkit/internal/db"
	"github.com/matthias/iso20022-toolkit/internal/types"
	"github.com/matthias/iso20022-toolkit/internal/xsd"
)

// resolveConfig loads the optional config file, applies persistent flag
// overrides and environment fallbacks, then fills remaining gaps with the
// built-in defaults. Flags win over the file, the file wins over env vars.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
		if rootVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", rootConfigPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = rootOutputDir
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = rootVerbose
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv("SCHEMA_TOOLKIT_OUTPUT_DIR")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg.MergeWithDefaults(config.DefaultConfig()), nil
}

// ensureOutputDir creates the artifact directory if it does not exist.
func ensureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

// resolveSchema loads one XSD file and resolves it into its field model.
func resolveSchema(path string, maxDepth int) (*types.SchemaModel, error) {
	doc, err := xsd.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return xsd.NewResolver(doc, xsd.WithMaxDepth(maxDepth)).Resolve()
}

// persistRun records a completed operation and its artifacts when a database
// is configured. The command already produced its output files, so
// persistence failures warn instead of failing the command.
func persistRun(ctx context.Context, databaseURL, operation string, schemaNames []string, save func(context.Context, *db.DB, uuid.UUID) error) {
	if databaseURL == "" {
		return
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to connect to database: %v\n", err)
		return
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to ensure database schema: %v\n", err)
		return
	}

	runID, err := database.CreateRun(ctx, operation, schemaNames)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
		return
	}
	if err := save(ctx, database, runID); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to save artifacts: %v\n", err)
		_ = database.FailRun(ctx, runID, err.Error())
		return
	}
	if err := database.CompleteRun(ctx, runID); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to complete run: %v\n", err)
		return
	}

	_, _ = fmt.Fprintf(os.Stdout, "Run recorded: %s\n", runID)
}
