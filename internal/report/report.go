package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"rental-harvester/logger"
	"rental-harvester/services/store"
)

// Reporter produces the per-area summary consumed by the weekly report.
type Reporter struct {
	store store.Store
	log   *logger.Logger
}

// NewReporter creates a reporter over an open store.
func NewReporter(st store.Store) *Reporter {
	return &Reporter{
		store: st,
		log:   logger.ForReport(),
	}
}

// Generate aggregates the store by area and writes the summary CSV to
// path. Returns the rows it wrote.
func (r *Reporter) Generate(path string) ([]store.AreaSummary, error) {
	summaries, err := r.store.AreaSummaries()
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer f.Close()

	if err := r.WriteCSV(f, summaries); err != nil {
		return nil, err
	}

	r.log.Info().Int("areas", len(summaries)).Str("path", path).Msg("Report written")
	return summaries, nil
}

// WriteCSV writes summary rows as CSV with a header row. An area whose
// rents never parsed gets an empty avg_rent cell.
func (r *Reporter) WriteCSV(w io.Writer, summaries []store.AreaSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"area", "listings", "avg_rent"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range summaries {
		avg := ""
		if s.AvgRentZAR != nil {
			avg = strconv.Itoa(*s.AvgRentZAR)
		}
		if err := cw.Write([]string{s.Area, strconv.Itoa(s.Listings), avg}); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", s.Area, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
