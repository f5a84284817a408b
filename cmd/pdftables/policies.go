package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdftables-golang/pkg/policy"
)

func newPoliciesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List the section policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}

			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"Name", "Pattern", "First only", "Header rule", "Description"})
			tw.SetAutoWrapText(false)
			for _, d := range registry.Definitions() {
				rule := "default"
				if d.HeaderRuleLength > 0 {
					rule = strconv.FormatFloat(d.HeaderRuleLength, 'f', -1, 64)
				}
				pattern := d.Pattern
				if pattern == "" {
					pattern = policy.DefaultCaptionPattern
				}
				tw.Append([]string{d.Name, pattern, fmt.Sprint(d.FirstOnly), rule, d.Description})
			}
			tw.Render()
			return nil
		},
	}
}
