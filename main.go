package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

func loadSweepConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func buildSink(id string) (ResultSink, error) {
	orgName := StringEnv("TURSO_ORG_NAME", "")
	authToken := StringEnv("TURSO_AUTH_TOKEN", "")
	if orgName == "" || authToken == "" {
		Logger.Infof("no storage credentials configured, keeping results in memory")
		return &MemorySink{}, nil
	}
	storage := Storage{
		OrgName:   orgName,
		GroupName: StringEnv("TURSO_GROUP_NAME", "pyretic-bench"),
		ApiToken:  StringEnv("TURSO_API_TOKEN", ""),
		AuthToken: authToken,
	}
	name := StringEnv("TURSO_DB_NAME", "")
	if name == "" {
		name = fmt.Sprintf("sweep-%v-%v", Version, strings.Split(id, "-")[0])
		err := storage.CreateDatabase(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create results database %v: %w", name, err)
		}
	}
	db, err := storage.ConnectDb(name)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to results database %v: %w", name, err)
	}
	sink, err := NewDbSink(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize results database %v: %w", name, err)
	}
	Logger.Infof("recording results to %v", storage.DbLink(name))
	return sink, nil
}

func runCommand() *cobra.Command {
	var configPath string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute all enabled sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadSweepConfig(configPath)
			if err != nil {
				return err
			}
			id := uuid.NewString()

			var runner SweepRunner
			var sink ResultSink
			if dryRun {
				runner, sink = &DryRunner{}, &MemorySink{}
			} else {
				outDir := StringEnv("BENCH_OUT", "results")
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory %v: %w", outDir, err)
				}
				runner = &ExecRunner{
					Binary: StringEnv("BENCH_BIN", "pyretic_test"),
					OutDir: outDir,
					Benchmark: Benchmark{
						Warmup:      IntEnv("BENCH_WARMUP", 1),
						ClearCaches: BoolEnv("BENCH_CLEAR_CACHES", false),
					},
				}
				sink, err = buildSink(id)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			system := System{config: config, runner: runner, sink: sink, id: id}
			err = system.Run(ctx)
			if err != nil {
				return err
			}
			if memory, ok := sink.(*MemorySink); ok {
				Logger.Infof("collected %v measurements (not persisted)", len(memory.Measurements))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML sweep configuration (defaults to the built-in plan)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log every combination without invoking the benchmark binary")
	return cmd
}

func sweepsCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "sweeps",
		Short: "List configured sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadSweepConfig(configPath)
			if err != nil {
				return err
			}
			for i := range config.Sweeps {
				sweep := &config.Sweeps[i]
				status := "enabled"
				if sweep.Skip {
					status = "skipped"
				}
				fmt.Printf("%v [%v]: %v queries, %v node counts, %v topologies, count %v, %v combinations, opt %v\n",
					sweep.Name, status, len(sweep.Queries), len(sweep.NodeCounts), len(sweep.Topologies),
					sweep.Count, sweep.Combinations(), sweep.OptName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML sweep configuration (defaults to the built-in plan)")
	return cmd
}

func validateCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a sweep configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadSweepConfig(configPath)
			if err != nil {
				return err
			}
			err = config.Validate()
			if err != nil {
				return err
			}
			Logger.Infof("configuration is valid: %v sweeps", len(config.Sweeps))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML sweep configuration (defaults to the built-in plan)")
	return cmd
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "pyretic-bench",
		Short:         "Path-query benchmark sweeps over Waxman topologies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCommand(), sweepsCommand(), validateCommand())

	if err := root.Execute(); err != nil {
		Logger.Fatalf("%v", err)
	}
}
