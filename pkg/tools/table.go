package tools

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
)

func ShowTable(header []string, data [][]string) {
	ShowTableWriter(os.Stdout, header, data)
}

// ShowTableWriter renders the table to an arbitrary writer, which keeps
// the output testable.
func ShowTableWriter(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)

	for _, v := range data {
		table.Append(v)
	}

	fmt.Fprintln(w)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.Render()
	fmt.Fprintln(w)
}
