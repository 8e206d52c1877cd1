// Package optimize rewrites a resume around its missing keywords and
// re-scores the result. The backend rewrite, the local fallback, and
// the re-score are independent stages: a failed later stage never
// discards what an earlier one produced.
package optimize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"atsctl/internal/analysis"
	"atsctl/internal/api"
	apperrors "atsctl/internal/common/errors"
	"atsctl/internal/common/logger"
	"atsctl/internal/reconcile"
)

const maxFallbackKeywords = 8

type Service struct {
	client     *api.Client
	propagator *reconcile.Propagator
	log        logger.Logger
}

func NewService(client *api.Client, propagator *reconcile.Propagator, log logger.Logger) *Service {
	return &Service{client: client, propagator: propagator, log: log}
}

// Input carries the state the optimization starts from, usually a
// reconcile load result.
type Input struct {
	ResumeText         string
	JobDescriptionText string
	MissingKeywords    []string
	BeforeScore        float64
}

// Run optimizes the resume and attempts a re-score. The returned result
// is usable even when the error is non-nil: a re-score failure leaves
// AfterScore nil with the optimized text intact.
func (s *Service) Run(ctx context.Context, in Input) (*analysis.OptimizationResult, error) {
	if strings.TrimSpace(in.ResumeText) == "" {
		return nil, apperrors.NewNoAnalysisError()
	}

	result := &analysis.OptimizationResult{
		BeforeScore:    in.BeforeScore,
		BeforeKeywords: in.MissingKeywords,
	}

	resp, err := s.client.Optimize(ctx, in.ResumeText, in.JobDescriptionText, in.MissingKeywords)
	switch {
	case err == nil:
		result.OptimizedResumeText = resp.OptimizedText
		result.KeywordsUsed = resp.KeywordsUsed
	case apperrors.CodeOf(err) == apperrors.ErrCodeAuthRequired:
		return nil, err
	default:
		s.log.WithError(err).Warn("backend optimization unavailable, using rule-based fallback", nil)
		result.OptimizedResumeText = Fallback(in.ResumeText, in.MissingKeywords)
		result.KeywordsUsed = capKeywords(in.MissingKeywords)
		result.UsedFallback = true
	}

	if err := s.propagator.StoreOptimized(ctx, result.OptimizedResumeText); err != nil {
		s.log.WithError(err).Warn("optimized text not persisted", nil)
	}

	rescored, err := s.rescore(ctx, result.OptimizedResumeText, in.JobDescriptionText)
	if err != nil {
		return result, apperrors.NewRescoreFailedError(err)
	}

	after := rescored.ATSScore
	result.AfterScore = &after
	result.AfterKeywords = rescored.MissingKeywords()

	if err := s.propagator.Propagate(ctx, rescored); err != nil {
		s.log.WithError(err).Warn("re-scored record not fully propagated", nil)
	}
	return result, nil
}

func (s *Service) rescore(ctx context.Context, resumeText, jobDescription string) (*analysis.AnalysisRecord, error) {
	payload, err := s.client.Analyze(ctx, resumeText, jobDescription)
	if err != nil {
		return nil, err
	}
	record, err := analysis.Normalize(payload)
	if err != nil {
		return nil, err
	}
	record.ResumeText = resumeText
	record.JobDescriptionText = jobDescription
	return record, nil
}

var (
	skillsSectionRe = regexp.MustCompile(`(?i)(SKILLS[\s\S]*?)(\n\n|\n[A-Z]|\z)`)
	bulletRe        = regexp.MustCompile(`• ([^.\n]+)`)
)

// Fallback is the rule-based rewrite used when the backend cannot
// optimize. It folds up to eight missing keywords into the skills
// section, creating one if needed, and pads weak bullet points with
// quantified outcomes.
func Fallback(resumeText string, missingKeywords []string) string {
	if len(missingKeywords) == 0 {
		return resumeText
	}
	keywords := capKeywords(missingKeywords)
	optimized := resumeText

	if loc := skillsSectionRe.FindStringSubmatchIndex(optimized); loc != nil {
		section := optimized[loc[2]:loc[3]]
		line := fmt.Sprintf("  • %s", strings.Join(keywords, ", "))
		if strings.HasSuffix(section, "\n") {
			section = section + line + "\n"
		} else {
			section = section + "\n" + line
		}
		optimized = optimized[:loc[2]] + section + optimized[loc[3]:]
	} else {
		var b strings.Builder
		b.WriteString(optimized)
		b.WriteString("\n\nSKILLS")
		for _, kw := range keywords {
			b.WriteString("\n• ")
			b.WriteString(kw)
		}
		optimized = b.String()
	}

	optimized = bulletRe.ReplaceAllStringFunc(optimized, func(match string) string {
		body := strings.TrimPrefix(match, "• ")
		lower := strings.ToLower(body)
		switch {
		case strings.Contains(lower, "develop"):
			return fmt.Sprintf("• %s, resulting in 30%% faster delivery", body)
		case strings.Contains(lower, "collaborat"):
			return fmt.Sprintf("• %s across 3+ teams, improving efficiency by 25%%", body)
		case strings.Contains(lower, "improv"):
			return fmt.Sprintf("• %s by 40%% through optimization", body)
		}
		return match
	})

	return optimized
}

func capKeywords(keywords []string) []string {
	if len(keywords) > maxFallbackKeywords {
		return keywords[:maxFallbackKeywords]
	}
	return keywords
}
