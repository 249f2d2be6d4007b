package services

import (
	"context"
	"testing"

	"inkwell/internal/errs"
	"inkwell/internal/models"
)

func TestAggregate(t *testing.T) {
	records := []*models.AIUsageRecord{
		{UserID: "u1", Kind: models.KindAnalyze, InputTokens: 100, OutputTokens: 50, Cost: 0.01},
		{UserID: "u1", Kind: models.KindGenerate, InputTokens: 20, OutputTokens: 200, Cost: 0.02},
	}

	summary := Aggregate(records)

	if summary.TotalInteractions != 2 {
		t.Errorf("TotalInteractions = %d, want 2", summary.TotalInteractions)
	}
	if summary.TotalInputTokens != 120 {
		t.Errorf("TotalInputTokens = %d, want 120", summary.TotalInputTokens)
	}
	if summary.TotalOutputTokens != 250 {
		t.Errorf("TotalOutputTokens = %d, want 250", summary.TotalOutputTokens)
	}
	if got := summary.TotalCost; got < 0.0299 || got > 0.0301 {
		t.Errorf("TotalCost = %f, want 0.03", got)
	}
	if summary.ByKind[models.KindAnalyze].Count != 1 {
		t.Errorf("analyze count = %d, want 1", summary.ByKind[models.KindAnalyze].Count)
	}
	if summary.ByKind[models.KindGenerate].Tokens != 220 {
		t.Errorf("generate tokens = %d, want 220", summary.ByKind[models.KindGenerate].Tokens)
	}
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)
	if summary.TotalInteractions != 0 || len(summary.ByKind) != 0 {
		t.Errorf("unexpected summary for no records: %+v", summary)
	}
}

func TestSummarize(t *testing.T) {
	store := &memUsageStore{}
	svc := NewUsageService(store)
	ctx := context.Background()

	for _, r := range []*models.AIUsageRecord{
		{UserID: "u1", Kind: models.KindAnalyze, InputTokens: 100, OutputTokens: 50},
		{UserID: "u1", Kind: models.KindGenerate, InputTokens: 20, OutputTokens: 200},
		{UserID: "u2", Kind: models.KindEdit, InputTokens: 999, OutputTokens: 999},
	} {
		if _, err := svc.Record(ctx, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	summary, err := svc.Summarize(ctx, "u1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	// Another user's records must not leak into the summary.
	if summary.TotalInputTokens != 120 || summary.TotalOutputTokens != 250 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRecordValidation(t *testing.T) {
	svc := NewUsageService(&memUsageStore{})
	ctx := context.Background()

	_, err := svc.Record(ctx, &models.AIUsageRecord{UserID: "u1", Kind: "translate"})
	if !errs.IsKind(err, errs.KindInvalidArgument) {
		t.Errorf("bad kind: expected InvalidArgument, got %v", err)
	}

	_, err = svc.Record(ctx, &models.AIUsageRecord{UserID: "u1", Kind: models.KindAnalyze, InputTokens: -1})
	if !errs.IsKind(err, errs.KindInvalidArgument) {
		t.Errorf("negative tokens: expected InvalidArgument, got %v", err)
	}
}

func TestEstimateCost(t *testing.T) {
	cases := []struct {
		model  string
		input  int
		output int
		want   float64
	}{
		{"gpt-4o-mini", 1000, 1000, 0.00015 + 0.0006},
		{"gpt-4o", 1000, 1000, 0.0025 + 0.01},
		{"claude-3-5-haiku-latest", 2000, 500, 2*0.0008 + 0.5*0.004},
		{"claude-sonnet-4", 1000, 1000, 0.003 + 0.015},
		{"some-unknown-model", 1000, 1000, 0},
	}
	for _, tc := range cases {
		got := EstimateCost(tc.model, tc.input, tc.output)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("EstimateCost(%q) = %f, want %f", tc.model, got, tc.want)
		}
	}
}

func TestEstimateCostDeterministic(t *testing.T) {
	// "gpt-4o-mini" also prefix-matches the "gpt-4o" price entry; the more
	// specific prefix must win on every call, not depend on table order at
	// runtime.
	want := EstimateCost("gpt-4o-mini", 1000, 1000)
	mini := 0.00015 + 0.0006
	if diff := want - mini; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("EstimateCost(gpt-4o-mini) = %f, want mini rate %f", want, mini)
	}
	for i := 0; i < 1000; i++ {
		if got := EstimateCost("gpt-4o-mini", 1000, 1000); got != want {
			t.Fatalf("EstimateCost returned %f then %f for the same input", want, got)
		}
	}
}

func TestRecent(t *testing.T) {
	store := &memUsageStore{}
	svc := NewUsageService(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Record(ctx, &models.AIUsageRecord{
			UserID: "u1", Kind: models.KindAnalyze, InputTokens: i,
		}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recent, err := svc.Recent(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("got %d records, want 3", len(recent))
	}
}
