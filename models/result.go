package models

import (
	"encoding/json"
	"time"
)

// ModerationOutcome is the terminal classification of one evaluation.
type ModerationOutcome int

const (
	OutcomeApproved ModerationOutcome = 1 + iota
	OutcomeRequiresHumanReview
	OutcomeRejectedSpam
	OutcomeRejectedInappropriate
	OutcomeRejectedHateSpeech
	OutcomeRejectedSensitiveWords
)

// Valid returns true when the outcome is in range [1..6].
func (o ModerationOutcome) Valid() bool {
	return o >= OutcomeApproved && o <= OutcomeRejectedSensitiveWords
}

func (o ModerationOutcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeRequiresHumanReview:
		return "requires_human_review"
	case OutcomeRejectedSpam:
		return "rejected_spam"
	case OutcomeRejectedInappropriate:
		return "rejected_inappropriate"
	case OutcomeRejectedHateSpeech:
		return "rejected_hate_speech"
	case OutcomeRejectedSensitiveWords:
		return "rejected_sensitive_words"
	default:
		return "unknown"
	}
}

// RiskTier classifies a sensitive word by how dangerous it is.
type RiskTier int

const (
	TierLow RiskTier = 1 + iota
	TierMedium
	TierHigh
)

// Valid returns true when the tier is in range [1..3].
func (t RiskTier) Valid() bool {
	return t >= TierLow && t <= TierHigh
}

// RiskLevel is the caller-facing risk bucket of a result.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// SuggestedAction is the remedial action recommended to the caller.
type SuggestedAction string

const (
	ActionApprove    SuggestedAction = "approve"
	ActionReview     SuggestedAction = "review"
	ActionMarkAsSpam SuggestedAction = "mark_as_spam"
	ActionDelete     SuggestedAction = "delete"
)

// SensitiveWordResult is what the sensitive-word collaborator returns for one text.
type SensitiveWordResult struct {
	ContainsSensitiveWords bool     `json:"contains_sensitive_words"`
	DetectedWords          []string `json:"detected_words,omitempty"`
	HighRiskWords          []string `json:"high_risk_words,omitempty"`
	MediumRiskWords        []string `json:"medium_risk_words,omitempty"`
}

// AIModerationResponse carries the external classifier's scores, each in [0,1].
type AIModerationResponse struct {
	Toxicity   float64 `json:"toxicity"`
	Spam       float64 `json:"spam"`
	HateSpeech float64 `json:"hate_speech"`
}

type aiResponseAlias struct {
	Toxicity        float64  `json:"toxicity"`
	Spam            float64  `json:"spam"`
	HateSpeechSnake *float64 `json:"hate_speech"`
	HateSpeechCamel *float64 `json:"hateSpeech"`
}

// UnmarshalJSON accepts both snake_case and camelCase hate-speech fields,
// depending on how the remote endpoint is configured.
func (r *AIModerationResponse) UnmarshalJSON(data []byte) error {
	var alias aiResponseAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	r.Toxicity = alias.Toxicity
	r.Spam = alias.Spam
	switch {
	case alias.HateSpeechSnake != nil:
		r.HateSpeech = *alias.HateSpeechSnake
	case alias.HateSpeechCamel != nil:
		r.HateSpeech = *alias.HateSpeechCamel
	default:
		r.HateSpeech = 0
	}
	return nil
}

// Max returns the highest of the three scores.
func (r AIModerationResponse) Max() float64 {
	max := r.Toxicity
	if r.Spam > max {
		max = r.Spam
	}
	if r.HateSpeech > max {
		max = r.HateSpeech
	}
	return max
}

// DecisionRecord is the internal, immutable product of one pipeline evaluation.
type DecisionRecord struct {
	Outcome                ModerationOutcome
	Confidence             float64
	ContainsSensitiveWords bool
	DetectedSensitiveWords []string
	Reason                 string
	SuggestedAction        string
	ProcessingTimeMs       int64
}

// With returns a copy of the record with the given overrides applied.
// The receiver is never mutated.
func (r DecisionRecord) With(override func(*DecisionRecord)) DecisionRecord {
	next := r
	next.DetectedSensitiveWords = append([]string(nil), r.DetectedSensitiveWords...)
	if override != nil {
		override(&next)
	}
	return next
}

// Issue is one caller-visible problem found in the content.
type Issue struct {
	Type     string  `json:"type"`
	Severity float64 `json:"severity"`
}

// SensitiveWordDetection is one flagged word in caller-facing form.
type SensitiveWordDetection struct {
	Word     string  `json:"word"`
	Category string  `json:"category"`
	Severity float64 `json:"severity"`
}

// ModerationResult is the caller-facing projection of a DecisionRecord.
type ModerationResult struct {
	Approved                bool                     `json:"approved"`
	Confidence              float64                  `json:"confidence"`
	Reason                  string                   `json:"reason,omitempty"`
	Issues                  []Issue                  `json:"issues,omitempty"`
	SuggestedAction         SuggestedAction          `json:"suggested_action"`
	RiskLevel               RiskLevel                `json:"risk_level"`
	ModelVersion            string                   `json:"model_version"`
	ProcessedAt             time.Time                `json:"processed_at"`
	ProcessingTimeMs        int64                    `json:"processing_time_ms"`
	SensitiveWordDetections []SensitiveWordDetection `json:"sensitive_word_detections,omitempty"`
}
