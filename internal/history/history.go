// Package history lists, filters, deletes, and exports persisted
// analyses. Deletes are remote-first: the in-memory list only changes
// after the backend confirms.
package history

import (
	"context"
	"encoding/json"
	"strings"

	"atsctl/internal/analysis"
	"atsctl/internal/api"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/common/metrics"
	"atsctl/internal/reconcile"
)

type Service struct {
	client     *api.Client
	propagator *reconcile.Propagator
	log        logger.Logger
}

func NewService(client *api.Client, propagator *reconcile.Propagator, log logger.Logger) *Service {
	return &Service{client: client, propagator: propagator, log: log}
}

// List fetches all persisted analyses in backend order. Rows that fail
// normalization are dropped with a warning instead of failing the list.
func (s *Service) List(ctx context.Context) ([]analysis.HistoryEntry, error) {
	rows, err := s.client.ListAnalyses(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]analysis.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := analysis.NormalizeHistoryEntry(row)
		if err != nil {
			s.log.WithError(err).Warn("unusable history row skipped", map[string]interface{}{"id": row["id"]})
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Remove deletes one analysis remotely, then filters it out of the
// given list. On failure the list comes back unchanged; the row stays
// visible because it still exists.
func (s *Service) Remove(ctx context.Context, entries []analysis.HistoryEntry, id int64) ([]analysis.HistoryEntry, error) {
	if err := s.client.DeleteAnalysis(ctx, id); err != nil {
		metrics.HistoryDeletes.WithLabelValues("error").Inc()
		if apperrors.CodeOf(err) == apperrors.ErrCodeAuthRequired {
			return entries, err
		}
		return entries, apperrors.NewDeleteFailedError(id, err)
	}
	metrics.HistoryDeletes.WithLabelValues("ok").Inc()

	remaining := make([]analysis.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != nil && *entry.ID == id {
			continue
		}
		remaining = append(remaining, entry)
	}
	return remaining, nil
}

// Select stages an entry for the next details view.
func (s *Service) Select(ctx context.Context, entry *analysis.HistoryEntry) error {
	return s.propagator.MarkSelected(ctx, &entry.AnalysisRecord)
}

// Criteria filters a history list. Zero-valued fields pass everything,
// set fields intersect.
type Criteria struct {
	Query string        // substring over job title and resume filename
	Year  string        // four-digit year prefix of CreatedAt
	Band  analysis.Band // score band
}

// Filter applies the criteria without touching the input slice. Order
// is preserved.
func Filter(entries []analysis.HistoryEntry, c Criteria) []analysis.HistoryEntry {
	query := strings.ToLower(strings.TrimSpace(c.Query))

	out := make([]analysis.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if query != "" &&
			!strings.Contains(strings.ToLower(entry.JobTitle), query) &&
			!strings.Contains(strings.ToLower(entry.ResumeFilename), query) {
			continue
		}
		if c.Year != "" && !strings.HasPrefix(entry.CreatedAt, c.Year) {
			continue
		}
		if c.Band != "" && analysis.BandOf(entry.ATSScore) != c.Band {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Export serializes entries for offline use.
func Export(entries []analysis.HistoryEntry) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, apperrors.NewMalformedPayloadError("history_export", err)
	}
	return data, nil
}
