package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdftables-golang/pkg/layout"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPoliciesCommand(t *testing.T) {
	out, err := execute(t, "policies")
	require.NoError(t, err)
	assert.Contains(t, out, "caption")
	assert.Contains(t, out, "lpc")
	assert.Contains(t, out, "383")
}

func TestInvalidFormatFlag(t *testing.T) {
	_, err := execute(t, "policies", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestExtractMissingFile(t *testing.T) {
	_, err := execute(t, "extract", "--log-level", "disabled", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestExtractRequiresArgs(t *testing.T) {
	_, err := execute(t, "extract")
	assert.Error(t, err)
}

func TestDumpShapes(t *testing.T) {
	page := &layout.Page{
		Number: 3,
		Width:  612,
		Height: 800,
		Root: layout.NewGroup(layout.KindGroup,
			&layout.Node{Kind: layout.KindHorizontalText, X0: 10, X1: 60, Y0: 790, Y1: 796, Text: "Table 1"},
			&layout.Node{Kind: layout.KindLine, X0: 10, X1: 393, Y0: 780, Y1: 780.5},
		),
	}

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	require.NoError(t, dumpShapes(cmd, layout.NewStaticSource(page), 2))

	out := buf.String()
	assert.Contains(t, out, "=== Page 3 (612.00 x 800.00) ===")
	assert.Contains(t, out, "Table 1")
	assert.Contains(t, out, "Horizontal Line")
}
