// Package reconcile decides what analysis state a view starts from. A
// load probes the storage tiers in a fixed order and reports which tier
// fed the result; a propagate broadcasts a fresh record to every tier
// that mirrors it.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"

	"atsctl/internal/analysis"
	"atsctl/internal/common/logger"
	"atsctl/internal/common/metrics"
	"atsctl/internal/storage"
)

// State classifies what a load produced.
type State string

const (
	// StatePopulated means a full record was recovered.
	StatePopulated State = "populated"
	// StatePartiallyPopulated means only input fragments were found; a
	// view can pre-fill inputs but has no scores to show.
	StatePartiallyPopulated State = "partially_populated"
	// StateAbsent means no tier held anything usable.
	StateAbsent State = "absent"
)

// Source names the tier that produced the result.
type Source string

const (
	SourceFreshHandoff     Source = "handoff_fresh"
	SourceSelectedHandoff  Source = "handoff_selected"
	SourceSessionRecent    Source = "session_recent"
	SourceSessionFragments Source = "session_fragments"
	SourceNone             Source = "none"
)

// Result is the outcome of one load.
type Result struct {
	State  State
	Source Source
	Record *analysis.AnalysisRecord

	// Fragments survive even when no full record does.
	ResumeText         string
	JobDescriptionText string
	MissingKeywords    []string
}

// Loader probes the tiers. Probe order is strict: a hit at an earlier
// tier wins even if later tiers hold newer-looking data, because
// handoff values were written for exactly this load.
type Loader struct {
	store storage.Store
	log   logger.Logger
}

func NewLoader(store storage.Store, log logger.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// Load resolves the current analysis state. Malformed or unscored
// payloads are skipped, not fatal; a handoff value consumed during a
// failed probe stays consumed.
func (l *Loader) Load(ctx context.Context) *Result {
	handoffProbes := []struct {
		key    string
		source Source
	}{
		{storage.KeyFreshAnalysis, SourceFreshHandoff},
		{storage.KeySelectedAnalysis, SourceSelectedHandoff},
	}

	for _, probe := range handoffProbes {
		record, ok := l.takeRecord(ctx, probe.key)
		if !ok {
			continue
		}
		result := l.populated(ctx, record, probe.source)
		metrics.ReconcileLoads.WithLabelValues(string(result.State), string(result.Source)).Inc()
		return result
	}

	if record, ok := l.peekRecord(ctx, storage.KeyRecentAnalysis); ok {
		result := l.populated(ctx, record, SourceSessionRecent)
		metrics.ReconcileLoads.WithLabelValues(string(result.State), string(result.Source)).Inc()
		return result
	}

	result := l.fragmentsOnly(ctx)
	metrics.ReconcileLoads.WithLabelValues(string(result.State), string(result.Source)).Inc()
	return result
}

func (l *Loader) populated(ctx context.Context, record *analysis.AnalysisRecord, source Source) *Result {
	result := &Result{
		State:              StatePopulated,
		Source:             source,
		Record:             record,
		ResumeText:         record.ResumeText,
		JobDescriptionText: record.JobDescriptionText,
		MissingKeywords:    record.MissingKeywords(),
	}
	// The record wins, but fragments backfill inputs it lacks.
	if result.ResumeText == "" {
		result.ResumeText = l.peekString(ctx, storage.KeyResumeText)
	}
	if result.JobDescriptionText == "" {
		result.JobDescriptionText = l.peekString(ctx, storage.KeyJobDescription)
	}
	if len(result.MissingKeywords) == 0 {
		result.MissingKeywords = l.peekKeywords(ctx)
	}
	return result
}

func (l *Loader) fragmentsOnly(ctx context.Context) *Result {
	result := &Result{
		ResumeText:         l.peekString(ctx, storage.KeyResumeText),
		JobDescriptionText: l.peekString(ctx, storage.KeyJobDescription),
		MissingKeywords:    l.peekKeywords(ctx),
	}
	if result.ResumeText == "" && result.JobDescriptionText == "" && len(result.MissingKeywords) == 0 {
		result.State = StateAbsent
		result.Source = SourceNone
		return result
	}
	result.State = StatePartiallyPopulated
	result.Source = SourceSessionFragments
	return result
}

// takeRecord consumes a handoff value and normalizes it.
func (l *Loader) takeRecord(ctx context.Context, key string) (*analysis.AnalysisRecord, bool) {
	value, err := l.store.TakeOnce(ctx, storage.ScopeHandoff, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.WithError(err).Warn("handoff tier read failed", map[string]interface{}{"key": key})
		}
		return nil, false
	}
	return l.normalize(key, value)
}

func (l *Loader) peekRecord(ctx context.Context, key string) (*analysis.AnalysisRecord, bool) {
	value, err := l.store.Peek(ctx, storage.ScopeSession, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.WithError(err).Warn("session tier read failed", map[string]interface{}{"key": key})
		}
		return nil, false
	}
	return l.normalize(key, value)
}

func (l *Loader) normalize(key string, value []byte) (*analysis.AnalysisRecord, bool) {
	record, err := analysis.NormalizeJSON(value)
	if err != nil {
		l.log.WithError(err).Warn("stored analysis payload unusable", map[string]interface{}{"key": key})
		return nil, false
	}
	return record, true
}

func (l *Loader) peekString(ctx context.Context, key string) string {
	value, err := l.store.Peek(ctx, storage.ScopeSession, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.WithError(err).Warn("session tier read failed", map[string]interface{}{"key": key})
		}
		return ""
	}
	return string(value)
}

func (l *Loader) peekKeywords(ctx context.Context) []string {
	value, err := l.store.Peek(ctx, storage.ScopeSession, storage.KeyMissingKeywords)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.log.WithError(err).Warn("session tier read failed", map[string]interface{}{"key": storage.KeyMissingKeywords})
		}
		return nil
	}
	var keywords []string
	if err := json.Unmarshal(value, &keywords); err != nil {
		l.log.WithError(err).Warn("stored keyword list unusable", nil)
		return nil
	}
	return keywords
}
