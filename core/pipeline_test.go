package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/elum-utils/gatekeeper/models"
)

type mockChecker struct {
	result models.SensitiveWordResult
	err    error
	calls  atomic.Int64
}

func (m *mockChecker) CheckContent(context.Context, string) (models.SensitiveWordResult, error) {
	m.calls.Add(1)
	if m.err != nil {
		return models.SensitiveWordResult{}, m.err
	}
	return m.result, nil
}

type panicChecker struct{}

func (panicChecker) CheckContent(context.Context, string) (models.SensitiveWordResult, error) {
	panic("checker exploded")
}

type mockClassifier struct {
	resp  *models.AIModerationResponse
	err   error
	calls atomic.Int64
}

func (m *mockClassifier) Name() string { return "mock" }

func (m *mockClassifier) Classify(context.Context, string, models.AuthorRef) (*models.AIModerationResponse, error) {
	m.calls.Add(1)
	return m.resp, m.err
}

type fixedTrust struct{ score float64 }

func (f fixedTrust) GetTrustScore(models.AuthorRef) float64 { return f.score }

type panicTrust struct{}

func (panicTrust) GetTrustScore(models.AuthorRef) float64 { panic("trust exploded") }

func newTestPipeline(opt Options) *Pipeline {
	if opt.Words == nil {
		opt.Words = &mockChecker{}
	}
	if opt.Trust == nil {
		opt.Trust = fixedTrust{score: 0.9}
	}
	return New(opt)
}

func TestModerateEmptyText(t *testing.T) {
	p := newTestPipeline(Options{})
	res := p.Moderate(context.Background(), "")
	if res.Approved {
		t.Fatalf("empty text must not be approved")
	}
	if res.Confidence != 1.0 || res.SuggestedAction != models.ActionDelete {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RiskLevel != models.RiskHigh {
		t.Fatalf("unexpected risk level: %s", res.RiskLevel)
	}
}

func TestModerateTooShortText(t *testing.T) {
	p := newTestPipeline(Options{})
	res := p.Moderate(context.Background(), " x ")
	if res.Confidence != 1.0 || res.SuggestedAction != models.ActionDelete {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestModerateRepeatedCharacters(t *testing.T) {
	p := newTestPipeline(Options{})
	res := p.Moderate(context.Background(), "aaaaaaaaaaaaa")
	if res.Confidence != 0.9 || res.SuggestedAction != models.ActionMarkAsSpam {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RiskLevel != models.RiskMedium {
		t.Fatalf("unexpected risk level: %s", res.RiskLevel)
	}
}

func TestModerateObviousSpam(t *testing.T) {
	checker := &mockChecker{}
	p := newTestPipeline(Options{Words: checker})
	res := p.Moderate(context.Background(), "FREE bonus inside, claim it today")
	if res.Confidence != 0.95 || res.SuggestedAction != models.ActionMarkAsSpam {
		t.Fatalf("unexpected result: %+v", res)
	}
	if checker.calls.Load() != 0 {
		t.Fatalf("stage 1 rejection must not reach the word checker")
	}
}

func TestHighRiskWordShortCircuitsAI(t *testing.T) {
	checker := &mockChecker{result: models.SensitiveWordResult{
		ContainsSensitiveWords: true,
		DetectedWords:          []string{"slur"},
		HighRiskWords:          []string{"slur"},
	}}
	classifier := &mockClassifier{resp: &models.AIModerationResponse{}}
	cfg := DefaultConfig()
	cfg.AIModerationEnabled = true
	p := newTestPipeline(Options{Words: checker, Classifier: classifier, Config: cfg})

	record := p.Evaluate(context.Background(), models.NewContent("some flagged text"), models.AuthorRef{}, "")
	if record.Outcome != models.OutcomeRejectedHateSpeech || record.Confidence != 0.95 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if !record.ContainsSensitiveWords || len(record.DetectedSensitiveWords) != 1 {
		t.Fatalf("detections missing: %+v", record)
	}
	if classifier.calls.Load() != 0 {
		t.Fatalf("classifier must not run after word rejection")
	}
}

func TestMediumRiskWordRejectsInappropriate(t *testing.T) {
	checker := &mockChecker{result: models.SensitiveWordResult{
		ContainsSensitiveWords: true,
		DetectedWords:          []string{"rude"},
		MediumRiskWords:        []string{"rude"},
	}}
	p := newTestPipeline(Options{Words: checker})

	record := p.Evaluate(context.Background(), models.NewContent("some flagged text"), models.AuthorRef{}, "")
	if record.Outcome != models.OutcomeRejectedInappropriate || record.Confidence != 0.95 {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestLowTierWordsRouteToReview(t *testing.T) {
	checker := &mockChecker{result: models.SensitiveWordResult{
		ContainsSensitiveWords: true,
		DetectedWords:          []string{"iffy"},
	}}
	p := newTestPipeline(Options{Words: checker})

	res := p.Moderate(context.Background(), "borderline words here")
	if res.SuggestedAction != models.ActionReview {
		t.Fatalf("unexpected action: %s", res.SuggestedAction)
	}
	if len(res.SensitiveWordDetections) != 1 {
		t.Fatalf("expected one detection: %+v", res.SensitiveWordDetections)
	}
	d := res.SensitiveWordDetections[0]
	if d.Word != "iffy" || d.Category != "general" || d.Severity != 0.7 {
		t.Fatalf("unexpected detection: %+v", d)
	}
	if len(res.Issues) != 1 || res.Issues[0].Type != "sensitive_words" || res.Issues[0].Severity != 0.8 {
		t.Fatalf("expected sensitive_words issue: %+v", res.Issues)
	}
}

func TestCheckerErrorFallsThroughToRules(t *testing.T) {
	checker := &mockChecker{err: errors.New("lookup down")}
	p := newTestPipeline(Options{Words: checker, Trust: fixedTrust{score: 0.9}})

	res := p.Moderate(context.Background(), "a perfectly nice message")
	if !res.Approved {
		t.Fatalf("expected approval via rules: %+v", res)
	}
}

func TestAIInterpretation(t *testing.T) {
	cases := []struct {
		name    string
		resp    models.AIModerationResponse
		outcome models.ModerationOutcome
	}{
		{"hate speech", models.AIModerationResponse{HateSpeech: 0.95}, models.OutcomeRejectedHateSpeech},
		{"toxicity", models.AIModerationResponse{Toxicity: 0.85}, models.OutcomeRejectedInappropriate},
		{"spam", models.AIModerationResponse{Spam: 0.75}, models.OutcomeRejectedSpam},
		{"inconclusive", models.AIModerationResponse{Toxicity: 0.6}, models.OutcomeRequiresHumanReview},
		{"clean", models.AIModerationResponse{Toxicity: 0.1, Spam: 0.2, HateSpeech: 0.1}, models.OutcomeApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AIModerationEnabled = true
			resp := tc.resp
			p := newTestPipeline(Options{Classifier: &mockClassifier{resp: &resp}, Config: cfg})

			record := p.Evaluate(context.Background(), models.NewContent("text for the classifier"), models.AuthorRef{}, "")
			if record.Outcome != tc.outcome {
				t.Fatalf("unexpected outcome: %s (want %s)", record.Outcome, tc.outcome)
			}
			if record.Confidence != tc.resp.Max() {
				t.Fatalf("confidence must equal max score: %v", record.Confidence)
			}
		})
	}
}

func TestAIFailOpenMatchesRules(t *testing.T) {
	text := "a perfectly nice message"
	rulesOnly := newTestPipeline(Options{Trust: fixedTrust{score: 0.9}})
	want := rulesOnly.Moderate(context.Background(), text)

	cfg := DefaultConfig()
	cfg.AIModerationEnabled = true
	for _, classifier := range []*mockClassifier{
		{err: errors.New("gateway 500")},
		{resp: nil},
	} {
		p := newTestPipeline(Options{Classifier: classifier, Trust: fixedTrust{score: 0.9}, Config: cfg})
		got := p.Moderate(context.Background(), text)
		if got.Approved != want.Approved || got.SuggestedAction != want.SuggestedAction {
			t.Fatalf("fail-open mismatch: got %+v want %+v", got, want)
		}
		if classifier.calls.Load() != 1 {
			t.Fatalf("classifier must be attempted once")
		}
	}
}

func TestAIDisabledSkipsClassifier(t *testing.T) {
	classifier := &mockClassifier{resp: &models.AIModerationResponse{HateSpeech: 1.0}}
	p := newTestPipeline(Options{Classifier: classifier})

	res := p.Moderate(context.Background(), "a perfectly nice message")
	if !res.Approved {
		t.Fatalf("expected rules approval: %+v", res)
	}
	if classifier.calls.Load() != 0 {
		t.Fatalf("classifier must not run when disabled")
	}
}

func TestRuleStageRejectsSpam(t *testing.T) {
	// Spam score 0.65 adjusted by (2.0 - 0.5) exceeds the 0.7 threshold.
	p := newTestPipeline(Options{Trust: fixedTrust{score: 0.5}})
	res := p.Moderate(context.Background(), "see https://x.example and mail me at a@b.com !!!!!!")
	if res.SuggestedAction != models.ActionMarkAsSpam {
		t.Fatalf("unexpected action: %+v", res)
	}
}

func TestRuleStageRejectsToxicity(t *testing.T) {
	p := newTestPipeline(Options{Trust: fixedTrust{score: 0.5}})
	record := p.Evaluate(context.Background(), models.NewContent("idiot stupid moron loser trash"), models.AuthorRef{}, "")
	if record.Outcome != models.OutcomeRejectedHateSpeech {
		t.Fatalf("unexpected outcome: %s", record.Outcome)
	}
}

func TestRuleStageApprovesTrustedClean(t *testing.T) {
	p := newTestPipeline(Options{Trust: fixedTrust{score: 0.9}})
	res := p.Moderate(context.Background(), "what a lovely afternoon")
	if !res.Approved || res.RiskLevel != models.RiskLow || res.SuggestedAction != models.ActionApprove {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Confidence != 0.9 {
		t.Fatalf("approval confidence must be the trust score: %v", res.Confidence)
	}
}

func TestRuleStageReviewsUntrustedClean(t *testing.T) {
	p := newTestPipeline(Options{Trust: fixedTrust{score: 0.5}})
	res := p.Moderate(context.Background(), "what a lovely afternoon")
	if res.Approved || res.SuggestedAction != models.ActionReview {
		t.Fatalf("low trust must route to review: %+v", res)
	}
}

func TestTrustWeightingMonotonic(t *testing.T) {
	// The same borderline spam text rejects under low trust and only
	// reaches review under high trust.
	text := "see https://x.example and mail me at a@b.com !!!!!!"

	low := newTestPipeline(Options{Trust: fixedTrust{score: 0.5}})
	if res := low.Moderate(context.Background(), text); res.SuggestedAction != models.ActionMarkAsSpam {
		t.Fatalf("low trust must reject: %+v", res)
	}

	high := newTestPipeline(Options{Trust: fixedTrust{score: 1.0}})
	if res := high.Moderate(context.Background(), text); res.SuggestedAction != models.ActionReview {
		t.Fatalf("high trust must only review: %+v", res)
	}
}

func TestModerateIdempotent(t *testing.T) {
	p := newTestPipeline(Options{Trust: fixedTrust{score: 0.9}})
	first := p.Moderate(context.Background(), "a stable piece of text")
	second := p.Moderate(context.Background(), "a stable piece of text")
	if first.Approved != second.Approved || first.Confidence != second.Confidence ||
		first.SuggestedAction != second.SuggestedAction {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestModerateBatchPreservesOrder(t *testing.T) {
	p := newTestPipeline(Options{Trust: fixedTrust{score: 0.9}})
	texts := []string{"", "aaaaaaaaaaaaa", "a perfectly nice message"}
	results := p.ModerateBatch(context.Background(), texts)
	if len(results) != 3 {
		t.Fatalf("unexpected length: %d", len(results))
	}
	if results[0].SuggestedAction != models.ActionDelete {
		t.Fatalf("index 0 mismatch: %+v", results[0])
	}
	if results[1].SuggestedAction != models.ActionMarkAsSpam {
		t.Fatalf("index 1 mismatch: %+v", results[1])
	}
	if !results[2].Approved {
		t.Fatalf("index 2 mismatch: %+v", results[2])
	}
}

func TestModerateBatchEmpty(t *testing.T) {
	p := newTestPipeline(Options{})
	if out := p.ModerateBatch(context.Background(), nil); out != nil {
		t.Fatalf("expected nil for empty batch")
	}
}

func TestPanicInStageBecomesHumanReview(t *testing.T) {
	p := newTestPipeline(Options{Words: panicChecker{}})
	res := p.Moderate(context.Background(), "text that reaches the checker")
	if res.Approved {
		t.Fatalf("panic must never approve")
	}
	if res.Confidence != 0 || res.SuggestedAction != models.ActionReview {
		t.Fatalf("expected conservative fallback: %+v", res)
	}
}

func TestPanicInBatchDoesNotFailSiblings(t *testing.T) {
	p := newTestPipeline(Options{Words: panicChecker{}, Trust: fixedTrust{score: 0.9}})
	results := p.ModerateBatch(context.Background(), []string{"reaches checker", ""})
	if results[0].SuggestedAction != models.ActionReview {
		t.Fatalf("index 0 must fall back to review: %+v", results[0])
	}
	if results[1].SuggestedAction != models.ActionDelete {
		t.Fatalf("index 1 must still be decided: %+v", results[1])
	}
}

func TestPanicInTrustEstimatorUsesNeutralScore(t *testing.T) {
	p := newTestPipeline(Options{Trust: panicTrust{}})
	res := p.Moderate(context.Background(), "a perfectly nice message")
	// Neutral 0.5 trust cannot approve; clean text lands in review.
	if res.Approved || res.SuggestedAction != models.ActionReview {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestNilCheckerIsConservative(t *testing.T) {
	p := New(Options{})
	res := p.Moderate(context.Background(), "any text at all")
	if res.Approved || res.Confidence != 0 || res.SuggestedAction != models.ActionReview {
		t.Fatalf("misconfigured pipeline must route to review: %+v", res)
	}
}

func TestProcessingTimeStamped(t *testing.T) {
	p := newTestPipeline(Options{})
	record := p.Evaluate(context.Background(), models.NewContent("hello there"), models.AuthorRef{}, "")
	if record.ProcessingTimeMs < 0 {
		t.Fatalf("negative processing time: %d", record.ProcessingTimeMs)
	}
}
