// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Column describes one output column of a record type.
type Column[T any] struct {
	Header string
	Value  func(T) string

	// Display renders the table cell instead of Value when set (colors etc).
	Display func(T) string

	// Wide columns are truncated to the terminal width in tables.
	Wide bool

	// Right aligns the column in tables.
	Right bool
}

// WriteRecords outputs records using the configured output format. Structured
// formats encode the records themselves; text and csv go through the columns.
func WriteRecords[T any](cfg *contract.Config, records []T, columns []Column[T]) error {
	if records == nil {
		records = []T{}
	}
	switch cfg.Output {
	case schema.JSONOut, schema.PrettyJSONOut, schema.YAMLOut:
		return WriteValue(cfg, records)
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsCSV(w, records, columns)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordsTable(w, records, columns, GetMaxColumnWidth(cfg, len(columns)))
		}, "Wrote table")
	}
}

// WriteValue outputs a single document. Text and csv fall back to indented JSON.
func WriteValue(cfg *contract.Config, v any) error {
	switch cfg.Output {
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, v)
		}, "Wrote YAML")
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCompactJSON(w, v)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, v)
		}, "Wrote JSON")
	}
}

// WriteLines outputs plain text lines. Structured formats get a list of strings.
func WriteLines(cfg *contract.Config, lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	switch cfg.Output {
	case schema.JSONOut, schema.PrettyJSONOut, schema.YAMLOut:
		return WriteValue(cfg, lines)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, line := range lines {
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
			return nil
		}, "Wrote text")
	}
}

// writeRecordsCSV writes a header and one row per record.
func writeRecordsCSV[T any](w io.Writer, records []T, columns []Column[T]) error {
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			row := make([]string, len(columns))
			for i, c := range columns {
				row[i] = c.Value(r)
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeRecordsTable renders the human-readable table.
func writeRecordsTable[T any](w io.Writer, records []T, columns []Column[T], maxWidth int) error {
	table := tablewriter.NewWriter(w)

	headers := make([]string, len(columns))
	aligns := make([]tw.Align, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
		aligns[i] = tw.AlignLeft
		if c.Right {
			aligns[i] = tw.AlignRight
		}
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = aligns
	})

	data := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			cell := c.Value(r)
			if c.Wide {
				cell = contract.TruncateText(cell, maxWidth)
			}
			if c.Display != nil {
				cell = c.Display(r)
			}
			row[i] = cell
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d rows\n", len(records))
	return err
}
