package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func (a columnAlignment) pretty() text.Align {
	if a == alignRight {
		return text.AlignRight
	}
	return text.AlignLeft
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	// Build the header row and per-column configs in one pass so a column
	// never ends up with a title but no alignment.
	header := make(table.Row, columns)
	configs := make([]table.ColumnConfig, columns)
	for i, title := range headers {
		header[i] = title
		cfg := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if i < len(aligns) {
			cfg.Align = aligns[i].pretty()
		}
		configs[i] = cfg
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, columns)
		for i := range cells {
			cells[i] = ""
		}
		for i, cell := range row {
			if i >= columns {
				break
			}
			cells[i] = cell
		}
		tw.AppendRow(cells)
	}

	return tw.Render()
}
