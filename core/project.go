package core

import (
	"time"

	"github.com/elum-utils/gatekeeper/models"
)

// Project maps an internal decision record to the caller-facing result.
func (p *Pipeline) Project(rec models.DecisionRecord) models.ModerationResult {
	result := models.ModerationResult{
		Approved:         rec.Outcome == models.OutcomeApproved,
		Confidence:       rec.Confidence,
		Reason:           rec.Reason,
		SuggestedAction:  suggestedActionFor(rec.Outcome),
		RiskLevel:        riskLevelFor(rec.Outcome, rec.Confidence),
		ModelVersion:     p.cfg.ModelVersion,
		ProcessedAt:      time.Now().UTC(),
		ProcessingTimeMs: rec.ProcessingTimeMs,
	}

	if rec.ContainsSensitiveWords {
		result.Issues = append(result.Issues, models.Issue{Type: "sensitive_words", Severity: 0.8})
	}
	if rec.Outcome == models.OutcomeRejectedSpam {
		result.Issues = append(result.Issues, models.Issue{Type: "spam", Severity: 0.7})
	}

	for _, word := range rec.DetectedSensitiveWords {
		result.SensitiveWordDetections = append(result.SensitiveWordDetections, models.SensitiveWordDetection{
			Word:     word,
			Category: p.cfg.DetectionCategory,
			Severity: p.cfg.DetectionSeverity,
		})
	}

	return result
}

func suggestedActionFor(outcome models.ModerationOutcome) models.SuggestedAction {
	switch outcome {
	case models.OutcomeApproved:
		return models.ActionApprove
	case models.OutcomeRequiresHumanReview:
		return models.ActionReview
	case models.OutcomeRejectedSpam:
		return models.ActionMarkAsSpam
	case models.OutcomeRejectedInappropriate:
		return models.ActionDelete
	case models.OutcomeRejectedHateSpeech:
		return models.ActionDelete
	case models.OutcomeRejectedSensitiveWords:
		return models.ActionReview
	default:
		return models.ActionReview
	}
}

func riskLevelFor(outcome models.ModerationOutcome, confidence float64) models.RiskLevel {
	switch outcome {
	case models.OutcomeApproved:
		return models.RiskLow
	case models.OutcomeRequiresHumanReview:
		if confidence > 0.7 {
			return models.RiskMedium
		}
		return models.RiskLow
	case models.OutcomeRejectedSpam:
		return models.RiskMedium
	case models.OutcomeRejectedInappropriate:
		return models.RiskHigh
	case models.OutcomeRejectedHateSpeech:
		return models.RiskCritical
	case models.OutcomeRejectedSensitiveWords:
		return models.RiskHigh
	default:
		return models.RiskMedium
	}
}
