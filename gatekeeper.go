package gatekeeper

import "github.com/elum-utils/gatekeeper/core"

// Re-export core API at module root for convenient imports.
type (
	Pipeline     = core.Pipeline
	Options      = core.Options
	Config       = core.Config
	EventName    = core.EventName
	EventHandler = core.EventHandler
)

const (
	EventApproved               = core.EventApproved
	EventHumanReview            = core.EventHumanReview
	EventRejectedSpam           = core.EventRejectedSpam
	EventRejectedInappropriate  = core.EventRejectedInappropriate
	EventRejectedHateSpeech     = core.EventRejectedHateSpeech
	EventRejectedSensitiveWords = core.EventRejectedSensitiveWords
)

// New creates a new moderation pipeline.
func New(opt Options) *Pipeline {
	return core.New(opt)
}

// DefaultConfig returns the default thresholds and flags.
func DefaultConfig() Config {
	return core.DefaultConfig()
}
