package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. color picks the colors of a cell from
// its value and is only applied on styled output.
type column struct {
	header string
	align  text.Align
	color  func(value string) text.Colors
}

func left(header string) column {
	return column{header: header, align: text.AlignLeft}
}

func right(header string) column {
	return column{header: header, align: text.AlignRight}
}

func (c column) colored(color func(string) text.Colors) column {
	c.color = color
	return c
}

// renderTable lays rows out under columns. Missing cells render empty and
// extra cells are dropped.
func renderTable(columns []column, rows [][]string, styled bool) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.header
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       col.align,
			AlignHeader: text.AlignLeft,
		}
		if styled && col.color != nil {
			configs[i].Transformer = colorTransformer(col.color)
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

func colorTransformer(color func(string) text.Colors) text.Transformer {
	return func(val interface{}) string {
		s := fmt.Sprint(val)
		if s == "" {
			return s
		}
		colors := color(s)
		if len(colors) == 0 {
			return s
		}
		return colors.Sprint(s)
	}
}
