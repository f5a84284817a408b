package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdftables-golang/pkg/layout"
	"github.com/pyhub-apps/pdftables-golang/pkg/shape"
	"github.com/pyhub-apps/pdftables-golang/pkg/table"
)

func newShapesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shapes <pdf>",
		Short: "Print the flattened shapes of every page in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			doc, err := layout.OpenFile(args[0], cfg.LayoutOptions())
			if err != nil {
				return err
			}
			defer doc.Close()

			maxLineWidth := cfg.TableOptions(table.DefaultOptions()).MaxLineWidth
			return dumpShapes(cmd, doc, maxLineWidth)
		},
	}
}

func dumpShapes(cmd *cobra.Command, src layout.PageSource, maxLineWidth float64) error {
	out := cmd.OutOrStdout()
	for {
		page, err := src.Next(cmd.Context())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		shapes, rejected := layout.FlattenPage(page)
		shape.SortReadingOrder(shapes)
		fmt.Fprintf(out, "=== Page %d (%.2f x %.2f) ===\n", page.Number, page.Width, page.Height)
		for _, s := range shapes {
			fmt.Fprintln(out, s.Describe(maxLineWidth))
		}
		for _, rerr := range rejected {
			fmt.Fprintf(out, "rejected: %v\n", rerr)
		}
	}
}
