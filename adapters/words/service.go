package words

import (
	"context"
	"errors"
	"time"

	"github.com/elum-utils/gatekeeper/interfaces"
	"github.com/elum-utils/gatekeeper/models"
)

const defaultSyncInterval = 5 * time.Minute

// Service keeps a lexicon synchronized with its storage and routes word
// curation writes through both.
type Service struct {
	lexicon  *Lexicon
	storage  interfaces.WordStorage
	interval time.Duration
	logger   interfaces.Logger
}

// ServiceOptions configure the sync service.
type ServiceOptions struct {
	Storage      interfaces.WordStorage
	SyncInterval time.Duration
	Logger       interfaces.Logger
}

// NewService creates a service over an existing lexicon.
func NewService(lexicon *Lexicon, opt ServiceOptions) (*Service, error) {
	if lexicon == nil {
		return nil, errors.New("words: lexicon is nil")
	}
	if opt.Storage == nil {
		return nil, errors.New("words: storage is nil")
	}
	interval := defaultSyncInterval
	if opt.SyncInterval > 0 {
		interval = opt.SyncInterval
	}
	return &Service{
		lexicon:  lexicon,
		storage:  opt.Storage,
		interval: interval,
		logger:   opt.Logger,
	}, nil
}

// Lexicon returns the synchronized lexicon.
func (s *Service) Lexicon() *Lexicon {
	return s.lexicon
}

// Run loads the initial word set and resyncs periodically until context
// cancellation.
func (s *Service) Run(ctx context.Context) error {
	if err := s.SyncOnce(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				s.logWarn("lexicon sync failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// SyncOnce reloads the word set from storage.
func (s *Service) SyncOnce(ctx context.Context) error {
	entries, err := s.storage.GetWords(ctx)
	if err != nil {
		return err
	}
	s.lexicon.ReplaceAll(entries)
	return nil
}

// AddWord persists the word, then makes it live.
func (s *Service) AddWord(ctx context.Context, word string, tier models.RiskTier) error {
	if !tier.Valid() {
		return errors.New("words: invalid risk tier")
	}
	w := normalizeWord(word)
	if w == "" {
		return errors.New("words: empty word")
	}
	if err := s.storage.AddWord(ctx, w, tier); err != nil {
		return err
	}
	s.lexicon.AddWord(w, tier)
	return nil
}

// RemoveWord removes the word from storage, then from the live set.
func (s *Service) RemoveWord(ctx context.Context, word string) error {
	w := normalizeWord(word)
	if w == "" {
		return errors.New("words: empty word")
	}
	if err := s.storage.RemoveWord(ctx, w); err != nil {
		return err
	}
	s.lexicon.RemoveWord(w)
	return nil
}

func (s *Service) logWarn(msg string, fields map[string]any) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
