package core

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elum-utils/gatekeeper/heuristics"
	"github.com/elum-utils/gatekeeper/models"
)

// stageResult is a stage's contribution to the cascade. A non-final record
// means "inconclusive, keep evaluating"; only final records leave the
// pipeline. This keeps the continuation signal distinct from a terminal
// human-review decision.
type stageResult struct {
	record models.DecisionRecord
	final  bool
}

// Moderate runs the full cascade on raw text and returns the caller-facing
// result. It never returns an error: unexpected failures become a
// human-review result with zero confidence.
func (p *Pipeline) Moderate(ctx context.Context, text string) models.ModerationResult {
	return p.ModerateFor(ctx, text, models.AuthorRef{})
}

// ModerateFor is Moderate with a known author identity.
func (p *Pipeline) ModerateFor(ctx context.Context, text string, author models.AuthorRef) models.ModerationResult {
	record := p.Evaluate(ctx, models.NewContent(text), author, "")
	return p.Project(record)
}

// ModerateBatch evaluates texts concurrently and independently. The output is
// positionally aligned with the input; one item's failure never fails the
// batch.
func (p *Pipeline) ModerateBatch(ctx context.Context, texts []string) []models.ModerationResult {
	if len(texts) == 0 {
		return nil
	}
	out := make([]models.ModerationResult, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			out[i] = p.ModerateFor(gctx, text, models.AuthorRef{})
			return nil
		})
	}
	// Workers only ever return nil; panics are recovered inside evaluate.
	_ = g.Wait()
	return out
}

// Evaluate is the pipeline entry point: it runs the cascade, stamps the
// processing time, records metrics, and dispatches callbacks and events.
func (p *Pipeline) Evaluate(ctx context.Context, content models.Content, author models.AuthorRef, source string) models.DecisionRecord {
	record := p.evaluate(ctx, content, author, source)
	p.record(ctx, record)
	return record
}

func (p *Pipeline) evaluate(ctx context.Context, content models.Content, author models.AuthorRef, source string) (rec models.DecisionRecord) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.logWarn("moderation stage panic", map[string]any{"panic": fmt.Sprint(r), "source": source})
			rec = models.DecisionRecord{
				Outcome:    models.OutcomeRequiresHumanReview,
				Confidence: 0,
				Reason:     "internal moderation error",
			}
		}
		rec.ProcessingTimeMs = time.Since(start).Milliseconds()
	}()

	if err := p.validate(); err != nil {
		p.logWarn("pipeline misconfigured", map[string]any{"error": err.Error()})
		return models.DecisionRecord{
			Outcome:    models.OutcomeRequiresHumanReview,
			Confidence: 0,
			Reason:     "moderation unavailable",
		}
	}

	res := p.basicChecks(content)
	if res.final {
		return res.record
	}

	res = p.checkSensitiveWords(ctx, content, res.record)
	if res.final {
		return res.record
	}

	if p.cfg.AIModerationEnabled && p.ai != nil {
		if record, ok := p.classifyRemote(ctx, content, author, res.record); ok {
			return record
		}
	}

	return p.scoreByRules(content, author, res.record)
}

// basicChecks rejects degenerate input before any collaborator is consulted.
func (p *Pipeline) basicChecks(content models.Content) stageResult {
	text := content.Text()
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < 2 {
		return stageResult{final: true, record: models.DecisionRecord{
			Outcome:    models.OutcomeRejectedInappropriate,
			Confidence: 1.0,
			Reason:     "content is empty or too short",
		}}
	}
	if heuristics.IsLowQualityContent(text) {
		return stageResult{final: true, record: models.DecisionRecord{
			Outcome:    models.OutcomeRejectedSpam,
			Confidence: 0.9,
			Reason:     "low quality content",
		}}
	}
	if heuristics.IsObviousSpam(text) {
		return stageResult{final: true, record: models.DecisionRecord{
			Outcome:    models.OutcomeRejectedSpam,
			Confidence: 0.95,
			Reason:     "matches known spam pattern",
		}}
	}
	return stageResult{record: models.DecisionRecord{
		Outcome:    models.OutcomeRequiresHumanReview,
		Confidence: 0.5,
	}}
}

// checkSensitiveWords consults the word collaborator. Any detected word ends
// the cascade; lookup failures fall through to the next stage.
func (p *Pipeline) checkSensitiveWords(ctx context.Context, content models.Content, prior models.DecisionRecord) stageResult {
	res, err := p.words.CheckContent(ctx, content.Text())
	if err != nil {
		p.logWarn("sensitive word lookup failed", map[string]any{"error": err.Error()})
		return stageResult{record: prior}
	}
	if !res.ContainsSensitiveWords {
		return stageResult{record: prior}
	}

	flagged := prior.With(func(r *models.DecisionRecord) {
		r.ContainsSensitiveWords = true
		r.DetectedSensitiveWords = append([]string(nil), res.DetectedWords...)
	})
	switch {
	case len(res.HighRiskWords) > 0:
		return stageResult{final: true, record: flagged.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRejectedHateSpeech
			r.Confidence = 0.95
			r.Reason = "high-risk sensitive words detected"
		})}
	case len(res.MediumRiskWords) > 0:
		return stageResult{final: true, record: flagged.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRejectedInappropriate
			r.Confidence = 0.95
			r.Reason = "medium-risk sensitive words detected"
		})}
	default:
		return stageResult{final: true, record: flagged.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRequiresHumanReview
			r.Confidence = 0.75
			r.Reason = "sensitive words require review"
		})}
	}
}

// classifyRemote fails open: any gateway error reads as "classifier
// unavailable" and the cascade falls through to rule-based scoring.
func (p *Pipeline) classifyRemote(ctx context.Context, content models.Content, author models.AuthorRef, prior models.DecisionRecord) (models.DecisionRecord, bool) {
	resp, err := p.ai.Classify(ctx, content.Text(), author)
	if err != nil {
		p.logWarn("ai classification failed", map[string]any{
			"error":      err.Error(),
			"classifier": p.ai.Name(),
		})
		return models.DecisionRecord{}, false
	}
	if resp == nil {
		return models.DecisionRecord{}, false
	}
	return p.interpretAIResponse(*resp, prior), true
}

func (p *Pipeline) interpretAIResponse(resp models.AIModerationResponse, prior models.DecisionRecord) models.DecisionRecord {
	maxScore := resp.Max()

	outcome := models.OutcomeApproved
	reason := ""
	switch {
	case resp.HateSpeech > p.cfg.HateSpeechThreshold:
		outcome = models.OutcomeRejectedHateSpeech
		reason = "hate speech detected by classifier"
	case resp.Toxicity > p.cfg.ToxicityThreshold:
		outcome = models.OutcomeRejectedInappropriate
		reason = "toxic content detected by classifier"
	case resp.Spam > p.cfg.SpamThreshold:
		outcome = models.OutcomeRejectedSpam
		reason = "spam detected by classifier"
	case maxScore > 0.5:
		outcome = models.OutcomeRequiresHumanReview
		reason = "classifier scores are inconclusive"
	}

	return prior.With(func(r *models.DecisionRecord) {
		r.Outcome = outcome
		r.Confidence = maxScore
		r.Reason = reason
	})
}

// scoreByRules always terminates the cascade. Risk scores are weighted by
// (2.0 - trust), so low trust amplifies risk and high trust dampens it.
func (p *Pipeline) scoreByRules(content models.Content, author models.AuthorRef, prior models.DecisionRecord) models.DecisionRecord {
	text := content.Text()
	spamScore := heuristics.CalculateSpamScore(text)
	toxicityScore := heuristics.CalculateToxicityScore(text)
	trustScore := p.trustScore(author)

	weight := 2.0 - trustScore
	adjustedSpam := spamScore * weight
	adjustedToxicity := toxicityScore * weight

	switch {
	case adjustedToxicity > p.cfg.HateSpeechThreshold:
		return prior.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRejectedHateSpeech
			r.Confidence = clamp01(adjustedToxicity)
			r.Reason = "toxicity score exceeds hate speech threshold"
		})
	case adjustedToxicity > p.cfg.ToxicityThreshold:
		return prior.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRejectedInappropriate
			r.Confidence = clamp01(adjustedToxicity)
			r.Reason = "toxicity score exceeds threshold"
		})
	case adjustedSpam > p.cfg.SpamThreshold:
		return prior.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRejectedSpam
			r.Confidence = clamp01(adjustedSpam)
			r.Reason = "spam score exceeds threshold"
		})
	case trustScore > 0.8 && spamScore < 0.3 && toxicityScore < 0.3:
		return prior.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeApproved
			r.Confidence = trustScore
			r.Reason = ""
		})
	default:
		return prior.With(func(r *models.DecisionRecord) {
			r.Outcome = models.OutcomeRequiresHumanReview
			r.Confidence = math.Max(0.5, clamp01(math.Max(adjustedSpam, adjustedToxicity)))
			r.Reason = "scores are inconclusive"
		})
	}
}

// trustScore guards the estimator: any failure or out-of-range value
// collapses to the neutral bound.
func (p *Pipeline) trustScore(author models.AuthorRef) (score float64) {
	defer func() {
		if recover() != nil {
			score = 0.5
		}
	}()
	score = p.trust.GetTrustScore(author)
	if math.IsNaN(score) || score < 0.5 {
		score = 0.5
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
