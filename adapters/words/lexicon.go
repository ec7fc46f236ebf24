// Package words implements the sensitive-word collaborator: a tiered
// in-memory lexicon with storage-backed synchronization and an optional
// result cache.
package words

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/elum-utils/gatekeeper/models"
)

// Stats contains runtime in-memory lexicon metrics.
type Stats struct {
	WordCount        int64
	LastLookupNanos  int64
	TotalLookups     int64
	TotalWordHits    int64
	LastReloadNanos  int64
	TotalReloadCount int64
}

type state struct {
	entries map[string]models.RiskTier
	phrases []string
}

// Lexicon stores tiered sensitive words and executes case-insensitive lookup.
type Lexicon struct {
	mu    sync.RWMutex
	state state

	lastLookupNanos atomic.Int64
	totalLookups    atomic.Int64
	totalWordHits   atomic.Int64
	lastReloadNanos atomic.Int64
	totalReloads    atomic.Int64
}

// NewLexicon creates an empty lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{state: state{entries: make(map[string]models.RiskTier)}}
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// AddWord inserts one word with its tier. Re-adding changes the tier.
func (l *Lexicon) AddWord(word string, tier models.RiskTier) bool {
	w := normalizeWord(word)
	if w == "" || !tier.Valid() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, exists := l.state.entries[w]
	l.state.entries[w] = tier
	if exists {
		return false
	}
	if strings.ContainsRune(w, ' ') {
		l.state.phrases = append(l.state.phrases, w)
	}
	return true
}

// RemoveWord deletes one word.
func (l *Lexicon) RemoveWord(word string) bool {
	w := normalizeWord(word)
	if w == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.state.entries[w]; !exists {
		return false
	}
	delete(l.state.entries, w)
	if strings.ContainsRune(w, ' ') {
		phrases := l.state.phrases[:0]
		for _, p := range l.state.phrases {
			if p != w {
				phrases = append(phrases, p)
			}
		}
		l.state.phrases = phrases
	}
	return true
}

// ReplaceAll swaps the whole word set atomically.
func (l *Lexicon) ReplaceAll(entries map[string]models.RiskTier) {
	start := time.Now()
	next := state{entries: make(map[string]models.RiskTier, len(entries))}
	for word, tier := range entries {
		w := normalizeWord(word)
		if w == "" || !tier.Valid() {
			continue
		}
		if _, exists := next.entries[w]; exists {
			continue
		}
		next.entries[w] = tier
		if strings.ContainsRune(w, ' ') {
			next.phrases = append(next.phrases, w)
		}
	}

	l.mu.Lock()
	l.state = next
	l.mu.Unlock()

	l.lastReloadNanos.Store(time.Since(start).Nanoseconds())
	l.totalReloads.Add(1)
}

// Clear removes all words.
func (l *Lexicon) Clear() {
	l.mu.Lock()
	l.state = state{entries: make(map[string]models.RiskTier)}
	l.mu.Unlock()
}

// Count returns the word count.
func (l *Lexicon) Count() int {
	l.mu.RLock()
	count := len(l.state.entries)
	l.mu.RUnlock()
	return count
}

// CheckContent returns the flagged words found in the text, bucketed by tier.
// Detected words are sorted for stable output.
func (l *Lexicon) CheckContent(_ context.Context, text string) (models.SensitiveWordResult, error) {
	start := time.Now()
	lower := strings.ToLower(text)

	l.mu.RLock()
	if len(l.state.entries) == 0 || lower == "" {
		l.mu.RUnlock()
		l.lastLookupNanos.Store(time.Since(start).Nanoseconds())
		l.totalLookups.Add(1)
		return models.SensitiveWordResult{}, nil
	}

	found := make(map[string]models.RiskTier, 4)

	// First pass: word-level exact matches.
	for _, tok := range splitTokens(lower) {
		if tier, ok := l.state.entries[tok]; ok {
			found[tok] = tier
		}
	}

	// Second pass: multi-word phrases.
	for _, phrase := range l.state.phrases {
		if _, already := found[phrase]; already {
			continue
		}
		if strings.Contains(lower, phrase) {
			found[phrase] = l.state.entries[phrase]
		}
	}
	l.mu.RUnlock()

	l.lastLookupNanos.Store(time.Since(start).Nanoseconds())
	l.totalLookups.Add(1)
	if len(found) == 0 {
		return models.SensitiveWordResult{}, nil
	}
	l.totalWordHits.Add(int64(len(found)))

	result := models.SensitiveWordResult{ContainsSensitiveWords: true}
	for word, tier := range found {
		result.DetectedWords = append(result.DetectedWords, word)
		switch tier {
		case models.TierHigh:
			result.HighRiskWords = append(result.HighRiskWords, word)
		case models.TierMedium:
			result.MediumRiskWords = append(result.MediumRiskWords, word)
		}
	}
	sort.Strings(result.DetectedWords)
	sort.Strings(result.HighRiskWords)
	sort.Strings(result.MediumRiskWords)
	return result, nil
}

func splitTokens(s string) []string {
	res := make([]string, 0, 16)
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			res = append(res, s[start:i])
			start = -1
		}
	}
	if start != -1 {
		res = append(res, s[start:])
	}
	return res
}

// Stats returns current metrics.
func (l *Lexicon) Stats() Stats {
	return Stats{
		WordCount:        int64(l.Count()),
		LastLookupNanos:  l.lastLookupNanos.Load(),
		TotalLookups:     l.totalLookups.Load(),
		TotalWordHits:    l.totalWordHits.Load(),
		LastReloadNanos:  l.lastReloadNanos.Load(),
		TotalReloadCount: l.totalReloads.Load(),
	}
}
