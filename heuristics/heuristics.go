// Package heuristics provides stateless, deterministic text detectors and
// scorers used by the rule-based moderation stage. The rules are data-driven
// keyword and pattern tables, not a semantic model.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxRepeatedRun    = 10
	minVariedLength   = 20
	minDistinctRunes  = 5
	freeExclamations  = 3
	exclamationWeight = 0.05
	exclamationCap    = 0.3
	marketingWeight   = 0.1
	toxicWeight       = 0.2
	shoutingWeight    = 0.1
)

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

var (
	urlPattern     = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	phonePattern   = regexp.MustCompile(`\d[\d \t()-]{7,}\d`)
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	longDigitsRun  = regexp.MustCompile(`\d{10,}`)
	adContactWords = regexp.MustCompile(`(?i)\b(advertisement|contact)\b`)
)

// spamSignals are structural markers of unsolicited contact attempts.
var spamSignals = []weightedPattern{
	{urlPattern, 0.3},
	{phonePattern, 0.4},
	{emailPattern, 0.2},
}

// marketingKeywords each add a fixed increment per occurrence.
var marketingKeywords = []string{
	"discount",
	"free",
	"earn money",
	"part-time job",
	"promo code",
	"limited offer",
	"cash back",
	"giveaway",
}

// toxicWords is a small fixed vocabulary; each occurrence adds a fixed increment.
var toxicWords = []string{
	"idiot",
	"stupid",
	"moron",
	"loser",
	"trash",
	"scum",
	"pathetic",
	"garbage human",
}

// obviousSpamPatterns are marketing-intent phrase pairs with arbitrary text
// between the anchors.
var obviousSpamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfree\b.{0,40}\bclaim\b`),
	regexp.MustCompile(`(?i)\blimited[ -]?time\b.{0,40}\bdiscount\b`),
	regexp.MustCompile(`(?i)\badd\b.{0,30}\b(wechat|whatsapp|telegram|my code)\b`),
	regexp.MustCompile(`(?i)\bscan\b.{0,30}\b(qr|code)\b`),
	regexp.MustCompile(`(?i)\bclick\b.{0,30}\blink\b`),
	regexp.MustCompile(`(?i)\bdownload now\b`),
	regexp.MustCompile(`(?i)\bregister\b.{0,40}\b(bonus|reward)\b`),
	regexp.MustCompile(`(?i)\brecharge\b.{0,40}\b(rebate|cashback)\b`),
}

// suspiciousPatterns force a human-review recommendation when present,
// regardless of a prior decision.
var suspiciousPatterns = []*regexp.Regexp{
	urlPattern,
	adContactWords,
	longDigitsRun,
	emailPattern,
}

// IsLowQualityContent reports text that carries no usable signal: a long
// single-character run, punctuation-only text, or long text with almost no
// character variety.
func IsLowQualityContent(text string) bool {
	if longestRun(text) > maxRepeatedRun {
		return true
	}
	if text != "" && symbolsOnly(text) {
		return true
	}
	runes := []rune(text)
	if len(runes) > minVariedLength && distinctCount(runes) < minDistinctRunes {
		return true
	}
	return false
}

// IsObviousSpam reports whether the text matches any known marketing-intent
// phrase pair.
func IsObviousSpam(text string) bool {
	for _, re := range obviousSpamPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// CalculateSpamScore returns an additive spam-likelihood score in [0,1].
func CalculateSpamScore(text string) float64 {
	var score float64
	for _, p := range spamSignals {
		if p.re.MatchString(text) {
			score += p.weight
		}
	}
	if extra := strings.Count(text, "!") - freeExclamations; extra > 0 {
		bonus := float64(extra) * exclamationWeight
		if bonus > exclamationCap {
			bonus = exclamationCap
		}
		score += bonus
	}
	lower := strings.ToLower(text)
	for _, kw := range marketingKeywords {
		score += marketingWeight * float64(strings.Count(lower, kw))
	}
	return clamp01(score)
}

// CalculateToxicityScore returns an additive toxicity-likelihood score in [0,1].
func CalculateToxicityScore(text string) float64 {
	var score float64
	lower := strings.ToLower(text)
	for _, w := range toxicWords {
		score += toxicWeight * float64(strings.Count(lower, w))
	}
	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 0 && upper*2 > letters {
		score += shoutingWeight
	}
	return clamp01(score)
}

// HasSuspiciousPatterns reports markers that warrant a second look by a human:
// URLs, ad/contact solicitation words, long digit runs, email-like tokens.
func HasSuspiciousPatterns(text string) bool {
	for _, re := range suspiciousPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func longestRun(text string) int {
	var prev rune
	run, best := 0, 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

func symbolsOnly(text string) bool {
	seen := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		if !unicode.IsSpace(r) {
			seen = true
		}
	}
	return seen
}

func distinctCount(runes []rune) int {
	set := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		set[r] = struct{}{}
	}
	return len(set)
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
