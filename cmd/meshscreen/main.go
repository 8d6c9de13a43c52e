package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshscreen/internal/catalog"
	"github.com/Faultbox/meshscreen/internal/config"
	"github.com/Faultbox/meshscreen/internal/fetch"
	"github.com/Faultbox/meshscreen/internal/logger"
	"github.com/Faultbox/meshscreen/internal/pipeline"
	"github.com/Faultbox/meshscreen/internal/store"
	"github.com/Faultbox/meshscreen/internal/validate"
)

var (
	flagConfig  string
	flagOutput  string
	flagWorkers int
	flagCatalog string
	flagIDs     string
	flagMirror  string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "meshscreen",
	Short: "Screen 3D asset files for structurally broken geometry",
	Long: `meshscreen fetches catalogued GLB assets, validates their geometry
(face count, degeneracy, self-intersection, winding), and exports a
normalized OBJ mesh plus PBR texture metadata for every asset that
passes. Rejected assets leave no output behind.`,
	SilenceUsage: true,
	RunE:         run,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage meshscreen configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Writes the default configuration as a starting point for editing.
Without a path the file goes to the user config directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if len(args) == 1 {
			if err := cfg.SaveTo(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", args[0])
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote",
			filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Path to config file")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory for screened assets")
	rootCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "Worker pool size")
	rootCmd.Flags().StringVar(&flagCatalog, "catalog", "", "Path to the asset catalog JSON")
	rootCmd.Flags().StringVar(&flagIDs, "ids", "", "Path to the eligible id list JSON")
	rootCmd.Flags().StringVar(&flagMirror, "mirror", "", "Mirror base URL to fetch assets from")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	cat, err := catalog.Load(cfg.Source.CatalogPath, log)
	if err != nil {
		return err
	}
	entries, err := cat.Select(cfg.Source.IDListPath)
	if err != nil {
		return err
	}
	log.Info("catalog loaded",
		zap.Int("catalogued", cat.Len()),
		zap.Int("eligible", len(entries)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewHTTP(cfg.Source.MirrorBase, cfg.Source.FetchTimeout, log)
	validator := validate.New(cfg.Validator, log)
	p := pipeline.New(
		pipeline.Options{OutputRoot: cfg.Run.OutputDir, Workers: cfg.Run.Workers},
		fetcher, validator, log,
	)

	startedAt := time.Now()
	res, runErr := p.Run(ctx, entries)

	counts := res.CountByStatus()
	log.Info("run summary",
		zap.String("run_id", res.RunID),
		zap.Int("exported", counts[pipeline.StatusExported]),
		zap.Int("invalid", counts[pipeline.StatusInvalid]),
		zap.Int("acquisition_failed", counts[pipeline.StatusAcquisitionFailed]),
		zap.Int("export_failed", counts[pipeline.StatusExportFailed]),
		zap.Duration("elapsed", res.Elapsed))
	for src, n := range res.ValidBySource {
		log.Info("valid per source", zap.String("source", src), zap.Int("count", n))
	}

	if cfg.Report.Enabled {
		if err := persistReport(cfg.Report.Path, startedAt, res); err != nil {
			log.Error("failed to persist run report", zap.Error(err))
		}
	}

	return runErr
}

func persistReport(path string, startedAt time.Time, res *pipeline.Result) error {
	s, err := store.New(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRun(startedAt, res)
}

// applyFlags overrides file configuration with explicit CLI flags.
func applyFlags(cfg *config.Config) {
	if flagOutput != "" {
		cfg.Run.OutputDir = flagOutput
	}
	if flagWorkers > 0 {
		cfg.Run.Workers = flagWorkers
	}
	if flagCatalog != "" {
		cfg.Source.CatalogPath = flagCatalog
	}
	if flagIDs != "" {
		cfg.Source.IDListPath = flagIDs
	}
	if flagMirror != "" {
		cfg.Source.MirrorBase = flagMirror
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
