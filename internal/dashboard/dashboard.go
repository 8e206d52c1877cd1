// Package dashboard aggregates the account overview: uploaded resumes
// and the analysis history, fetched concurrently. One failed half
// degrades to an empty section instead of blanking the whole view.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"atsctl/internal/analysis"
	"atsctl/internal/api"
	"atsctl/internal/common/logger"
	"atsctl/internal/history"
)

type Service struct {
	client  *api.Client
	history *history.Service
	log     logger.Logger
}

func NewService(client *api.Client, hist *history.Service, log logger.Logger) *Service {
	return &Service{client: client, history: hist, log: log}
}

// Data is the overview. Per-half errors are carried alongside the data
// so a renderer can show what loaded and flag what did not.
type Data struct {
	Resumes     []api.Resume
	Analyses    []analysis.HistoryEntry
	ResumesErr  error
	AnalysesErr error

	TotalAnalyses int
	AverageScore  float64
	BestScore     float64
	HighBandCount int
}

// Load fetches both halves concurrently. The returned error is non-nil
// only when nothing loaded at all.
func (s *Service) Load(ctx context.Context) (*Data, error) {
	data := &Data{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resumes, err := s.client.ListResumes(gctx)
		if err != nil {
			s.log.WithError(err).Warn("resume list unavailable", nil)
			data.ResumesErr = err
			return nil
		}
		data.Resumes = resumes
		return nil
	})
	g.Go(func() error {
		entries, err := s.history.List(gctx)
		if err != nil {
			s.log.WithError(err).Warn("analysis history unavailable", nil)
			data.AnalysesErr = err
			return nil
		}
		data.Analyses = entries
		return nil
	})
	_ = g.Wait()

	if data.ResumesErr != nil && data.AnalysesErr != nil {
		return nil, data.AnalysesErr
	}

	data.summarize()
	return data, nil
}

func (d *Data) summarize() {
	d.TotalAnalyses = len(d.Analyses)
	if d.TotalAnalyses == 0 {
		return
	}
	var sum float64
	for _, entry := range d.Analyses {
		sum += entry.ATSScore
		if entry.ATSScore > d.BestScore {
			d.BestScore = entry.ATSScore
		}
		if analysis.BandOf(entry.ATSScore) == analysis.BandHigh {
			d.HighBandCount++
		}
	}
	d.AverageScore = sum / float64(d.TotalAnalyses)
}
