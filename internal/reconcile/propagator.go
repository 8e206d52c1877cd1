// internal/reconcile/propagator.go
package reconcile

import (
	"context"
	"encoding/json"
	"errors"

	"atsctl/internal/analysis"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/common/metrics"
	"atsctl/internal/storage"
)

// Propagator broadcasts a record to every tier that mirrors it. Writes
// are independent: one failed tier is left stale and reported, the
// others still commit. There is no rollback.
type Propagator struct {
	store storage.Store
	log   logger.Logger
}

func NewPropagator(store storage.Store, log logger.Logger) *Propagator {
	return &Propagator{store: store, log: log}
}

// Propagate writes a fresh record to the handoff and session tiers plus
// the session input fragments. A non-nil error means one or more tiers
// are stale; the record itself is intact and the caller should continue.
func (p *Propagator) Propagate(ctx context.Context, record *analysis.AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewStorageWriteFailedError(string(storage.ScopeHandoff), storage.KeyFreshAnalysis, err)
	}

	var failures []error
	failures = append(failures, p.put(ctx, storage.ScopeHandoff, storage.KeyFreshAnalysis, payload))
	failures = append(failures, p.put(ctx, storage.ScopeSession, storage.KeyRecentAnalysis, payload))

	if record.ResumeText != "" {
		failures = append(failures, p.put(ctx, storage.ScopeSession, storage.KeyResumeText, []byte(record.ResumeText)))
	}
	if record.JobDescriptionText != "" {
		failures = append(failures, p.put(ctx, storage.ScopeSession, storage.KeyJobDescription, []byte(record.JobDescriptionText)))
	}
	if keywords := record.MissingKeywords(); len(keywords) > 0 {
		encoded, err := json.Marshal(keywords)
		if err == nil {
			failures = append(failures, p.put(ctx, storage.ScopeSession, storage.KeyMissingKeywords, encoded))
		}
	}

	return errors.Join(failures...)
}

// MarkSelected stages a history record for the next details view. The
// value lives in the handoff tier so it is consumed on first read.
func (p *Propagator) MarkSelected(ctx context.Context, record *analysis.AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewStorageWriteFailedError(string(storage.ScopeHandoff), storage.KeySelectedAnalysis, err)
	}
	return p.put(ctx, storage.ScopeHandoff, storage.KeySelectedAnalysis, payload)
}

// StoreOptimized keeps the latest optimized resume text in the session
// tier so the user can re-export it later.
func (p *Propagator) StoreOptimized(ctx context.Context, text string) error {
	return p.put(ctx, storage.ScopeSession, storage.KeyOptimizedResume, []byte(text))
}

func (p *Propagator) put(ctx context.Context, scope storage.Scope, key string, value []byte) error {
	if err := p.store.Put(ctx, scope, key, value); err != nil {
		metrics.PropagateWrites.WithLabelValues(string(scope), "error").Inc()
		p.log.WithError(err).Warn("tier write failed, tier left stale", map[string]interface{}{
			"scope": string(scope),
			"key":   key,
		})
		return apperrors.NewStorageWriteFailedError(string(scope), key, err)
	}
	metrics.PropagateWrites.WithLabelValues(string(scope), "ok").Inc()
	return nil
}
