package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/elum-utils/gatekeeper/heuristics"
	"github.com/elum-utils/gatekeeper/interfaces"
	"github.com/elum-utils/gatekeeper/models"
	"github.com/elum-utils/gatekeeper/trust"
)

const (
	defaultSpamThreshold       = 0.7
	defaultToxicityThreshold   = 0.8
	defaultHateSpeechThreshold = 0.9
	defaultDetectionCategory   = "general"
	defaultDetectionSeverity   = 0.7
	defaultModelVersion        = "rules-1.0"
)

// EventName is a callback bus event.
type EventName string

const (
	EventApproved               EventName = "approved"
	EventHumanReview            EventName = "human_review"
	EventRejectedSpam           EventName = "rejected_spam"
	EventRejectedInappropriate  EventName = "rejected_inappropriate"
	EventRejectedHateSpeech     EventName = "rejected_hate_speech"
	EventRejectedSensitiveWords EventName = "rejected_sensitive_words"
)

// EventHandler handles one moderation event.
type EventHandler func(ctx context.Context, result models.ModerationResult) error

// Config is the process-wide moderation configuration. It is read at
// construction and never mutated afterwards.
type Config struct {
	SpamThreshold       float64
	ToxicityThreshold   float64
	HateSpeechThreshold float64
	AIModerationEnabled bool
	DetectionCategory   string
	DetectionSeverity   float64
	ModelVersion        string
}

// DefaultConfig returns the default thresholds and flags.
func DefaultConfig() Config {
	return Config{
		SpamThreshold:       defaultSpamThreshold,
		ToxicityThreshold:   defaultToxicityThreshold,
		HateSpeechThreshold: defaultHateSpeechThreshold,
		DetectionCategory:   defaultDetectionCategory,
		DetectionSeverity:   defaultDetectionSeverity,
		ModelVersion:        defaultModelVersion,
	}
}

// Options configure the pipeline.
type Options struct {
	Words           interfaces.SensitiveWordChecker
	Classifier      interfaces.AIClassifier
	Trust           interfaces.TrustEstimator
	CallbackHandler interfaces.CallbackHandler
	Processed       interfaces.ProcessedHandler
	Logger          interfaces.Logger

	Config Config
}

// Pipeline is the multi-stage moderation cascade.
type Pipeline struct {
	words  interfaces.SensitiveWordChecker
	ai     interfaces.AIClassifier
	trust  interfaces.TrustEstimator
	cb     interfaces.CallbackHandler
	allCb  interfaces.ProcessedHandler
	logger interfaces.Logger
	cfg    Config

	eventsMu sync.RWMutex
	events   map[EventName][]EventHandler

	processed [7]atomic.Int64
}

// New creates a pipeline instance. Configuration errors surface as
// conservative human-review results on moderation calls.
func New(opt Options) *Pipeline {
	p := &Pipeline{
		words:  opt.Words,
		ai:     opt.Classifier,
		trust:  opt.Trust,
		cb:     noopCallbacks{},
		logger: opt.Logger,
		events: make(map[EventName][]EventHandler, 6),
		cfg:    opt.Config,
	}

	if p.trust == nil {
		p.trust = trust.NewHashEstimator()
	}
	if opt.CallbackHandler != nil {
		p.cb = opt.CallbackHandler
	}
	if opt.Processed != nil {
		p.allCb = opt.Processed
	}
	if p.cfg.SpamThreshold <= 0 {
		p.cfg.SpamThreshold = defaultSpamThreshold
	}
	if p.cfg.ToxicityThreshold <= 0 {
		p.cfg.ToxicityThreshold = defaultToxicityThreshold
	}
	if p.cfg.HateSpeechThreshold <= 0 {
		p.cfg.HateSpeechThreshold = defaultHateSpeechThreshold
	}
	if p.cfg.DetectionCategory == "" {
		p.cfg.DetectionCategory = defaultDetectionCategory
	}
	if p.cfg.DetectionSeverity <= 0 {
		p.cfg.DetectionSeverity = defaultDetectionSeverity
	}
	if p.cfg.ModelVersion == "" {
		p.cfg.ModelVersion = defaultModelVersion
	}

	return p
}

// On registers event handlers.
func (p *Pipeline) On(event EventName, handler EventHandler) error {
	if handler == nil {
		return errors.New("core: handler is nil")
	}
	p.eventsMu.Lock()
	p.events[event] = append(p.events[event], handler)
	p.eventsMu.Unlock()
	return nil
}

// OnApproved registers a handler for approved content.
func (p *Pipeline) OnApproved(handler EventHandler) error {
	return p.On(EventApproved, handler)
}

// OnHumanReview registers a handler for content routed to a human.
func (p *Pipeline) OnHumanReview(handler EventHandler) error {
	return p.On(EventHumanReview, handler)
}

// OnRejectedSpam registers a handler for spam rejections.
func (p *Pipeline) OnRejectedSpam(handler EventHandler) error {
	return p.On(EventRejectedSpam, handler)
}

// OnRejectedInappropriate registers a handler for inappropriate-content rejections.
func (p *Pipeline) OnRejectedInappropriate(handler EventHandler) error {
	return p.On(EventRejectedInappropriate, handler)
}

// OnRejectedHateSpeech registers a handler for hate-speech rejections.
func (p *Pipeline) OnRejectedHateSpeech(handler EventHandler) error {
	return p.On(EventRejectedHateSpeech, handler)
}

// OnRejectedSensitiveWords registers a handler for sensitive-word rejections.
func (p *Pipeline) OnRejectedSensitiveWords(handler EventHandler) error {
	return p.On(EventRejectedSensitiveWords, handler)
}

// Config returns the active configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Metrics returns count of processed evaluations by outcome.
func (p *Pipeline) Metrics() map[models.ModerationOutcome]int64 {
	out := make(map[models.ModerationOutcome]int64, 6)
	for i := 1; i <= 6; i++ {
		out[models.ModerationOutcome(i)] = p.processed[i].Load()
	}
	return out
}

// ContainsSensitiveContent reports whether the text trips the sensitive-word
// collaborator. Lookup failures are logged and read as "no flags".
func (p *Pipeline) ContainsSensitiveContent(ctx context.Context, text string) bool {
	if p.words == nil {
		return false
	}
	res, err := p.words.CheckContent(ctx, text)
	if err != nil {
		p.logWarn("sensitive word lookup failed", map[string]any{"error": err.Error()})
		return false
	}
	return res.ContainsSensitiveWords
}

// GetRiskLevel evaluates the text and returns only its risk bucket. The
// evaluation is not recorded in metrics or dispatched to handlers.
func (p *Pipeline) GetRiskLevel(ctx context.Context, text string) models.RiskLevel {
	record := p.evaluate(ctx, models.NewContent(text), models.AuthorRef{}, "")
	return riskLevelFor(record.Outcome, record.Confidence)
}

// RequiresHumanReview reports whether the text should go to a human despite a
// prior result. Suspicious markers (URLs, solicitation words, long digit runs,
// email-like tokens) force review regardless of the prior decision.
func (p *Pipeline) RequiresHumanReview(text string, prior models.ModerationResult) bool {
	if heuristics.HasSuspiciousPatterns(text) {
		return true
	}
	return prior.SuggestedAction == models.ActionReview
}

func (p *Pipeline) record(ctx context.Context, rec models.DecisionRecord) {
	outcome := rec.Outcome
	if !outcome.Valid() {
		outcome = models.OutcomeRequiresHumanReview
	}
	p.processed[outcome].Add(1)

	result := p.Project(rec)
	p.dispatchByOutcome(ctx, outcome, result)
	p.dispatchEvent(ctx, outcome, result)
}

func (p *Pipeline) dispatchByOutcome(ctx context.Context, outcome models.ModerationOutcome, result models.ModerationResult) {
	var err error
	switch outcome {
	case models.OutcomeApproved:
		err = p.cb.OnApproved(ctx, result)
	case models.OutcomeRequiresHumanReview:
		err = p.cb.OnHumanReview(ctx, result)
	case models.OutcomeRejectedSpam:
		err = p.cb.OnRejectedSpam(ctx, result)
	case models.OutcomeRejectedInappropriate:
		err = p.cb.OnRejectedInappropriate(ctx, result)
	case models.OutcomeRejectedHateSpeech:
		err = p.cb.OnRejectedHateSpeech(ctx, result)
	case models.OutcomeRejectedSensitiveWords:
		err = p.cb.OnRejectedSensitiveWords(ctx, result)
	}
	if err != nil {
		p.logWarn("callback failed", map[string]any{"error": err.Error(), "outcome": outcome.String()})
	}
	if p.allCb != nil {
		if err := p.allCb.OnProcessed(ctx, result); err != nil {
			p.logWarn("processed callback failed", map[string]any{"error": err.Error()})
		}
	}
}

func (p *Pipeline) dispatchEvent(ctx context.Context, outcome models.ModerationOutcome, result models.ModerationResult) {
	event := eventNameFromOutcome(outcome)
	p.eventsMu.RLock()
	handlers := append([]EventHandler(nil), p.events[event]...)
	p.eventsMu.RUnlock()
	for _, h := range handlers {
		if err := h(ctx, result); err != nil {
			p.logWarn("event handler failed", map[string]any{"error": err.Error(), "event": event})
		}
	}
}

func eventNameFromOutcome(outcome models.ModerationOutcome) EventName {
	switch outcome {
	case models.OutcomeApproved:
		return EventApproved
	case models.OutcomeRequiresHumanReview:
		return EventHumanReview
	case models.OutcomeRejectedSpam:
		return EventRejectedSpam
	case models.OutcomeRejectedInappropriate:
		return EventRejectedInappropriate
	case models.OutcomeRejectedHateSpeech:
		return EventRejectedHateSpeech
	case models.OutcomeRejectedSensitiveWords:
		return EventRejectedSensitiveWords
	default:
		return EventHumanReview
	}
}

func (p *Pipeline) validate() error {
	if p.words == nil {
		return errors.New("core: sensitive word checker is nil")
	}
	return nil
}

func (p *Pipeline) logWarn(msg string, fields map[string]any) {
	if p.logger != nil {
		p.logger.Warn(msg, fields)
	}
}

type noopCallbacks struct{}

func (noopCallbacks) OnApproved(context.Context, models.ModerationResult) error        { return nil }
func (noopCallbacks) OnHumanReview(context.Context, models.ModerationResult) error     { return nil }
func (noopCallbacks) OnRejectedSpam(context.Context, models.ModerationResult) error    { return nil }
func (noopCallbacks) OnRejectedInappropriate(context.Context, models.ModerationResult) error {
	return nil
}
func (noopCallbacks) OnRejectedHateSpeech(context.Context, models.ModerationResult) error {
	return nil
}
func (noopCallbacks) OnRejectedSensitiveWords(context.Context, models.ModerationResult) error {
	return nil
}
