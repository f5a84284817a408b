package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdftables-golang"
	"github.com/pyhub-apps/pdftables-golang/pkg/config"
	"github.com/pyhub-apps/pdftables-golang/pkg/engine"
	"github.com/pyhub-apps/pdftables-golang/pkg/render"
	"github.com/pyhub-apps/pdftables-golang/pkg/table"
)

func newExtractCmd(g *globalFlags) *cobra.Command {
	var output string
	var strict bool

	cmd := &cobra.Command{
		Use:   "extract <pdf>...",
		Short: "Reconstruct the tables of one or more PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			results, failed, err := extractAll(cmd, cfg, logger, args)
			if err != nil {
				return err
			}
			if err := writeResults(cmd, cfg.OutputFormat(), output, results); err != nil {
				return err
			}
			if strict && failed > 0 {
				return fmt.Errorf("%d section(s) could not be reconstructed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a section fails to reconstruct")
	return cmd
}

func extractAll(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, paths []string) ([]engine.Result, int, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, 0, err
	}
	opts := pdftables.Options{
		Policy:   cfg.Policy,
		Registry: registry,
		Layout:   cfg.LayoutOptions(),
		Table: []table.Option{func(o *table.Options) {
			*o = cfg.TableOptions(*o)
		}},
	}

	var all []engine.Result
	failed := 0
	for _, path := range paths {
		opts.Logger = logger.With(zap.String("file", path))
		results, sum, err := pdftables.ExtractFile(cmd.Context(), path, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		opts.Logger.Info("extracted",
			zap.Int("pages", sum.Pages),
			zap.Int("sections", sum.Sections),
			zap.Int("tables", sum.Tables),
			zap.Int("failed", sum.Failed),
			zap.Int("rejected", sum.Rejected),
			zap.Int("unterminated", sum.Unterminated),
		)
		failed += sum.Failed
		all = append(all, results...)
	}
	return all, failed, nil
}

func writeResults(cmd *cobra.Command, format render.Format, output string, results []engine.Result) error {
	if output == "" {
		out := cmd.OutOrStdout()
		if format.Binary() && out == os.Stdout && isatty.IsTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("refusing to write %s to a terminal, use --output", format)
		}
		return writeBuffered(out, format, results)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeBuffered(f, format, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeBuffered(w io.Writer, format render.Format, results []engine.Result) error {
	bw := bufio.NewWriter(w)
	if err := render.Write(bw, format, results); err != nil {
		return err
	}
	return bw.Flush()
}
