package app

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.trai.ch/lokal/internal/core/domain"
)

var summaryHeader = table.Row{"Class", "Processed", "Cached", "Degraded", "Failed", "Size"}

// WriteSummary prints the per-class asset table followed by the page and
// diagnostic totals of a build.
func WriteSummary(w io.Writer, r *BuildResult) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(summaryHeader)

	for _, class := range domain.AssetClasses {
		stats := r.Assets.Classes[class]
		tw.AppendRow(table.Row{
			string(class),
			strconv.Itoa(stats.Processed),
			strconv.Itoa(stats.Cached),
			strconv.Itoa(stats.Degraded),
			strconv.Itoa(stats.Failed),
			humanize.Bytes(uint64(max(stats.Bytes, 0))),
		})
	}

	configs := make([]table.ColumnConfig, 0, len(summaryHeader))
	for i := range summaryHeader {
		align := text.AlignRight
		if i == 0 {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	_, _ = fmt.Fprintln(w, tw.Render())
	_, _ = fmt.Fprintf(w, "pages: %d rendered (%d written, %d unchanged), %d skipped, %d failed\n",
		r.Pages.Rendered(), len(r.Pages.Written), r.Pages.Unchanged, r.Pages.Skipped, r.Pages.Failed)
	_, _ = fmt.Fprintf(w, "diagnostics: %d warnings, %d errors\n", r.Warnings(), r.Errors())
	_, _ = fmt.Fprintf(w, "built in %s\n", r.Duration.Round(time.Millisecond))
}
