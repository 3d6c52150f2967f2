package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gsymbex/internal/config"
	"gsymbex/internal/module"
	"gsymbex/internal/report"
	"gsymbex/internal/sat"
	"gsymbex/internal/search"
	"gsymbex/internal/smt"
	"gsymbex/internal/solver"
	"gsymbex/internal/vm"
)

var exploreCommand = &cobra.Command{
	Use:   "explore",
	Short: "explore every feasible path of the given programs",
	Long:  ``,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return exploreExec(cmd)
	},
}

var (
	ProgramFiles []string
	ConfigFile   string
	MetricsAddr  string
	LogLevel     string
	Backend      string
)

func init() {
	exploreCommand.Flags().StringSliceVar(&ProgramFiles, "file", nil, "program files, explored independently")
	exploreCommand.Flags().StringVar(&ConfigFile, "config", "", "yaml config file")
	exploreCommand.Flags().StringVar(&MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	exploreCommand.Flags().StringVar(&LogLevel, "log-level", "", "overrides log_level of the config")
	exploreCommand.Flags().StringVar(&Backend, "backend", "", "overrides solver.backend of the config: yices or gini")
	_ = exploreCommand.MarkFlagRequired("file")
}

func exploreExec(cmd *cobra.Command) error {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = LogLevel
	}
	if cmd.Flags().Changed("backend") {
		cfg.Solver.Backend = Backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	if MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Infof("serving metrics on %s", MetricsAddr)
			if err := http.ListenAndServe(MetricsAddr, mux); err != nil {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	parallelism := cfg.Search.Parallelism
	if cfg.Solver.Backend == config.BackendYices {
		smt.Init()
		defer smt.Exit()
		// yices keeps process wide state
		parallelism = 1
	}

	choiceConfig, err := cfg.Choice()
	if err != nil {
		return err
	}
	var (
		jobs     = make([]search.Job, len(ProgramFiles))
		methods  = make([]string, len(ProgramFiles))
		managers = make([]*module.ModuleManager, len(ProgramFiles))
	)
	for i, file := range ProgramFiles {
		program, err := loadProgram(file)
		if err != nil {
			return err
		}
		mm := module.NewModuleManager(program.Method)
		mm.AddModule(module.NewUncaughtException())
		mm.AddModule(module.NewUnorderedCompare())
		methods[i], managers[i] = program.Method, mm

		jobs[i] = search.Job{
			Name: file,
			New: func() (*search.Driver, search.Executor, error) {
				logger := log.WithField("method", program.Method)
				machine, err := vm.New(program, choiceConfig, vm.WithLogger(logger))
				if err != nil {
					return nil, nil, err
				}
				manager := solver.NewManager(newBackend(cfg, logger), solver.WithLogger(logger))
				driver := search.NewDriver(manager,
					search.WithOptions(cfg.SearchOptions()),
					search.WithListener(mm),
					search.WithLogger(logger))
				return driver, machine, nil
			},
		}
	}

	explorer := &search.Explorer{Parallelism: parallelism}
	results, err := explorer.Run(context.Background(), jobs)
	if err != nil {
		return errors.Wrap(err, "explore")
	}
	for i, result := range results {
		if err := report.WriteResult(os.Stdout, methods[i], result); err != nil {
			return err
		}
		issues := managers[i].RetrieveIssues()
		log.Infof("total issues found in %s: %d", methods[i], len(issues))
		for _, is := range issues {
			fmt.Println(is)
		}
	}
	return nil
}

func newBackend(cfg config.Config, logger *log.Entry) solver.Backend {
	if cfg.Solver.Backend == config.BackendGini {
		return sat.NewSolver(sat.WithTimeout(cfg.Solver.Timeout), sat.WithLogger(logger))
	}
	return smt.NewSolver(smt.WithTimeout(cfg.Solver.Timeout), smt.WithLogger(logger))
}
