package exporter

import (
	"encoding/csv"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/redisgtid/gtidcore/models"
)

// Exporter renders a set of UUIDSetViews to an output destination.
type Exporter interface {
	Export(views []*models.UUIDSetView, output string) error
}

// CSVExporter exports results to CSV format
type CSVExporter struct {
	IncludeHeader bool
	Delimiter     rune
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{
		IncludeHeader: true,
		Delimiter:     ',',
	}
}

// Export writes UUID set views to CSV file
func (e *CSVExporter) Export(views []*models.UUIDSetView, output string) error {
	var file *os.File
	var err error

	if output == "" || output == "-" {
		file = os.Stdout
	} else {
		file, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer file.Close()
	}

	writer := csv.NewWriter(file)
	writer.Comma = e.Delimiter
	defer writer.Flush()

	if e.IncludeHeader {
		header := []string{"uuid", "intervals", "gap_count", "gno_count"}
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, v := range views {
		row := []string{
			v.UUID,
			v.Intervals,
			fmt.Sprintf("%d", v.GapCount),
			fmt.Sprintf("%d", v.GNOCount),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

// JSONExporter exports results to JSON format, using goccy/go-json for
// its lower allocation overhead over large GTID sets.
type JSONExporter struct {
	PrettyPrint bool
}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter(prettyPrint bool) *JSONExporter {
	return &JSONExporter{
		PrettyPrint: prettyPrint,
	}
}

// Export writes UUID set views to JSON file
func (e *JSONExporter) Export(views []*models.UUIDSetView, output string) error {
	var file *os.File
	var err error

	if output == "" || output == "-" {
		file = os.Stdout
	} else {
		file, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create JSON file: %w", err)
		}
		defer file.Close()
	}

	encoder := json.NewEncoder(file)
	if e.PrettyPrint {
		encoder.SetIndent("", "  ")
	}

	result := map[string]interface{}{
		"total": len(views),
		"uuids": views,
	}

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// StatJSONExporter renders a single IndexStatView as JSON, the payload
// for GTIDX STAT.
type StatJSONExporter struct {
	PrettyPrint bool
}

// Export writes the stat view to output.
func (e *StatJSONExporter) Export(stat *models.IndexStatView, output string) error {
	var file *os.File
	var err error

	if output == "" || output == "-" {
		file = os.Stdout
	} else {
		file, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create JSON file: %w", err)
		}
		defer file.Close()
	}

	encoder := json.NewEncoder(file)
	if e.PrettyPrint {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(stat)
}
