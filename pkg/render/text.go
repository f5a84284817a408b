package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/pyhub-apps/pdftables-golang/pkg/engine"
)

// Text draws every table as an ASCII grid with its title as caption.
// Failed sections are listed with their error.
func Text(w io.Writer, results []engine.Result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if r.Err != nil {
			_, err := fmt.Fprintf(w, "%s (pages %d-%d): %v\n", label(r), r.Section.StartPage, r.Section.EndPage, r.Err)
			if err != nil {
				return err
			}
			continue
		}

		tw := tablewriter.NewWriter(w)
		tw.SetAutoWrapText(false)
		tw.SetAutoFormatHeaders(false)
		tw.SetHeader(r.Table.Header)
		tw.AppendBulk(r.Table.Rows)
		tw.SetCaption(true, fmt.Sprintf("%s (pages %d-%d)", label(r), r.Section.StartPage, r.Section.EndPage))
		tw.Render()
	}
	return nil
}
