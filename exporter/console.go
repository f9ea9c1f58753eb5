package exporter

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/redisgtid/gtidcore/models"
)

// ConsoleExporter exports results to console with formatting
type ConsoleExporter struct {
	UseColor bool
	printer  *message.Printer
}

// NewConsoleExporter creates a new console exporter
func NewConsoleExporter() *ConsoleExporter {
	return &ConsoleExporter{
		UseColor: true,
		printer:  message.NewPrinter(language.English),
	}
}

// Export prints UUID set views to console
func (e *ConsoleExporter) Export(views []*models.UUIDSetView, output string) error {
	if len(views) == 0 {
		fmt.Println("❌ No producer UUIDs found")
		return nil
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("📊 %d producer UUID(s)\n", len(views))
	fmt.Println(strings.Repeat("=", 70))

	for i, v := range views {
		fmt.Printf("\n[%d] %s\n", i+1, v.UUID)
		fmt.Println(strings.Repeat("-", 70))
		fmt.Printf("  📍 Intervals: %s\n", v.Intervals)
		e.printer.Printf("  🔢 GNOs:      %d\n", v.GNOCount)
		fmt.Printf("  🕳  Gaps:      %d\n", v.GapCount)
	}

	fmt.Println(strings.Repeat("=", 70))
	return nil
}

// ExportStat prints a single index stat snapshot, the payload for GTIDX
// STAT.
func (e *ConsoleExporter) ExportStat(stat *models.IndexStatView) error {
	if stat == nil {
		fmt.Println("❌ no stats available")
		return nil
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Println("✅ GTID index stats")
	e.printer.Printf("  🧮 UUIDs:            %d\n", stat.UUIDCount)
	e.printer.Printf("  🕳  Gaps:             %d\n", stat.GapCount)
	e.printer.Printf("  🔢 Total GNOs:       %d\n", stat.GNOCount)
	e.printer.Printf("  💾 Used memory:      %d bytes\n", stat.UsedMemory)
	e.printer.Printf("  🧩 Sequence segments: %d\n", stat.NSegment)
	if stat.EarliestOffset >= 0 {
		e.printer.Printf("  ⏮  Earliest offset:  %d\n", stat.EarliestOffset)
	} else {
		fmt.Println("  ⏮  Earliest offset:  (empty)")
	}
	fmt.Printf("  🕐 Sampled at:       %s\n", stat.SampledAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Println(strings.Repeat("-", 60))

	return nil
}
