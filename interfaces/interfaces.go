package interfaces

import (
	"context"

	"github.com/elum-utils/gatekeeper/models"
)

// SensitiveWordChecker looks up flagged words in text, categorized by risk tier.
type SensitiveWordChecker interface {
	CheckContent(ctx context.Context, text string) (models.SensitiveWordResult, error)
}

// AIClassifier scores text via an external moderation model.
// A nil response with nil error means the classifier declined to answer.
type AIClassifier interface {
	Name() string
	Classify(ctx context.Context, text string, author models.AuthorRef) (*models.AIModerationResponse, error)
}

// TrustEstimator maps an author to a trust score in [0.5, 1.0].
// Implementations must return the neutral 0.5 instead of failing.
type TrustEstimator interface {
	GetTrustScore(author models.AuthorRef) float64
}

// WordStorage persists the sensitive-word lexicon.
type WordStorage interface {
	AddWord(ctx context.Context, word string, tier models.RiskTier) error
	RemoveWord(ctx context.Context, word string) error
	GetWords(ctx context.Context) (map[string]models.RiskTier, error)
	WordExists(ctx context.Context, word string) (bool, error)
}

// CallbackHandler handles results by outcome.
type CallbackHandler interface {
	OnApproved(ctx context.Context, result models.ModerationResult) error
	OnHumanReview(ctx context.Context, result models.ModerationResult) error
	OnRejectedSpam(ctx context.Context, result models.ModerationResult) error
	OnRejectedInappropriate(ctx context.Context, result models.ModerationResult) error
	OnRejectedHateSpeech(ctx context.Context, result models.ModerationResult) error
	OnRejectedSensitiveWords(ctx context.Context, result models.ModerationResult) error
}

// ProcessedHandler handles every result with one method.
type ProcessedHandler interface {
	OnProcessed(ctx context.Context, result models.ModerationResult) error
}

// Logger is an optional structured logger.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}
