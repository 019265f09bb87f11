package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"dupe-checker/internal/dupes"
	"dupe-checker/internal/view"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type tableOptions struct {
	// fancy selects rounded box drawing; plain ASCII otherwise.
	fancy bool
	// width caps the rendered row length; zero means unlimited.
	width int
}

// tableOptionsFor uses box drawing and the terminal width when out is a
// terminal, and plain unbounded ASCII when it is piped.
func tableOptionsFor(out io.Writer) tableOptions {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return tableOptions{}
	}
	opts := tableOptions{fancy: true}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil {
		opts.width = width
	}
	return opts
}

func renderDuplicates(dups []dupes.Duplicate, opts tableOptions) string {
	headers := []string{"#", "Name", "Folder", "Size", "Duration", "Kind", "Matched", "Preview"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft}

	rows := make([][]string, 0, len(dups))
	for _, d := range dups {
		row := view.NewRow(d)
		preview := ""
		if row.HasThumbnail {
			preview = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(row.Index + 1),
			row.Name,
			row.Path,
			row.SizeHuman,
			row.Duration,
			row.Kind,
			row.Matched,
			preview,
		})
	}

	return renderTable(headers, rows, aligns, opts)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, opts tableOptions) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if opts.fancy {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	if opts.width > 0 {
		tw.SetAllowedRowLength(opts.width)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
