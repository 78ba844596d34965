package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"labtrust-hq/calibra/pkg/audit"
	"labtrust-hq/calibra/pkg/audit/storage"
	"labtrust-hq/calibra/pkg/catalog"
)

// Config contains configuration for the scoring engine.
type Config struct {
	// PartialCredit is the fraction of a question's weight earned by a P
	// answer, in [0, 1]. Default: 0 (no credit for partial compliance).
	PartialCredit float64
}

// Engine computes audit scores from the catalog and the response store.
type Engine struct {
	catalogs catalog.Provider
	store    storage.Store
	config   Config
	logger   *slog.Logger
}

// NewEngine creates a scoring engine.
func NewEngine(catalogs catalog.Provider, store storage.Store, config Config) (*Engine, error) {
	if catalogs == nil {
		return nil, fmt.Errorf("scoring: catalog provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("scoring: store is required")
	}
	if config.PartialCredit < 0 || config.PartialCredit > 1 {
		return nil, fmt.Errorf("scoring: partial credit must be in [0, 1], got %v", config.PartialCredit)
	}
	return &Engine{
		catalogs: catalogs,
		store:    store,
		config:   config,
		logger:   slog.Default().With("component", "audit.scoring"),
	}, nil
}

// Compute derives the current Score for the audit. It iterates the full
// catalog; questions with no response stay in the denominator and earn
// nothing. A catalog with zero effective denominator yields a zero score,
// never an error.
func (e *Engine) Compute(ctx context.Context, auditID string) (*audit.Score, error) {
	if _, err := e.store.GetAudit(ctx, auditID); err != nil {
		return nil, err
	}

	responses, err := e.store.ListResponses(ctx, auditID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]*audit.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
	}

	cat := e.catalogs.Current()
	score := &audit.Score{}
	for _, q := range cat.Questions() {
		r, answered := byQuestion[q.ID]
		if !answered {
			continue
		}
		switch r.Answer {
		case audit.AnswerYes:
			score.Earned += float64(q.Weight)
		case audit.AnswerPartial:
			score.Earned += float64(q.Weight) * e.config.PartialCredit
		case audit.AnswerNA:
			score.NAPointsExcluded += q.Weight
		}
	}

	score.AdjustedDenominator = cat.TotalWeight() - score.NAPointsExcluded
	score.Percentage = percentage(score.Earned, score.AdjustedDenominator)
	score.StarLevel = StarLevel(score.Percentage)

	e.logger.Debug("score computed",
		"audit_id", auditID,
		"earned", score.Earned,
		"adjusted_denominator", score.AdjustedDenominator,
		"percentage", score.Percentage,
		"star_level", score.StarLevel,
	)

	return score, nil
}

// percentage returns earned/denominator×100 rounded to one decimal place,
// or 0 when the denominator is not positive.
func percentage(earned float64, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return math.Round(earned/float64(denominator)*1000) / 10
}
