package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdftables-golang/pkg/config"
	"github.com/pyhub-apps/pdftables-golang/pkg/logging"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	envFiles   []string
	policy     string
	format     string
	logLevel   string
	logColor   string
	logJSON    bool
	backend    string
	password   string
	workers    int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "pdftables",
		Short:         "Extract tables from PDF datasheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	pf.StringSliceVar(&g.envFiles, "env-file", nil, "env files to load (default ./.env when present)")
	pf.StringVarP(&g.policy, "policy", "p", "", "section policy name")
	pf.StringVarP(&g.format, "format", "f", "", "output format: text, csv, tsv, json, jsonl or xlsx")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn, error or disabled")
	pf.StringVar(&g.logColor, "log-color", "", "auto, always or never")
	pf.BoolVar(&g.logJSON, "log-json", false, "log JSON lines")
	pf.StringVar(&g.backend, "backend", "", "text backend: auto, ledongthuc or dslipak")
	pf.StringVar(&g.password, "password", "", "PDF password")
	pf.IntVar(&g.workers, "workers", 0, "pages decoded in parallel")

	root.AddCommand(newExtractCmd(g), newShapesCmd(g), newPoliciesCmd(g))
	return root
}

// load reads the configuration and applies flags the user set explicitly
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath, g.envFiles...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Policy = g.policy
	}
	if flags.Changed("format") {
		cfg.Format = g.format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-color") {
		cfg.LogColor = g.logColor
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = g.logJSON
	}
	if flags.Changed("backend") {
		cfg.Backend = g.backend
	}
	if flags.Changed("password") {
		cfg.Password = g.password
	}
	if flags.Changed("workers") {
		cfg.Workers = g.workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*zap.Logger, error) {
	opts := cfg.LoggingOptions()
	// tables own stdout
	opts.Stdout = cmd.ErrOrStderr()
	opts.Stderr = cmd.ErrOrStderr()
	return logging.New(opts)
}
