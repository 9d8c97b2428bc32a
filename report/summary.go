package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/aluiziolira/go-amazon-bsr/models"
)

// PrintSummary renders the end-of-run summary block. The ranking statistics
// section is omitted when no successful record carries a primary rank.
func PrintSummary(w io.Writer, records []*models.ProductRecord) {
	s := models.Summarize(records)

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total products processed: %d\n", s.Total)
	fmt.Fprintf(w, "Successful: %d\n", s.Successful)
	fmt.Fprintf(w, "Failed: %d\n", s.Failed)

	if !s.HasRankStats {
		return
	}

	fmt.Fprintln(w, "\nRanking Statistics:")
	fmt.Fprintf(w, "  Average BSR: #%s\n", humanize.Comma(int64(s.AverageRank)))
	fmt.Fprintf(w, "  Best BSR: #%s\n", humanize.Comma(int64(s.BestRank)))
	fmt.Fprintf(w, "  Worst BSR: #%s\n", humanize.Comma(int64(s.WorstRank)))
}
