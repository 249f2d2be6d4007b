package services

import (
	"context"
	"strings"

	"inkwell/internal/errs"
	"inkwell/internal/models"
)

// Per-1k-token prices by model prefix, used when the caller does not supply a
// cost. Ordered longest prefix first so "gpt-4o-mini" never bills at the
// "gpt-4o" rate. Unknown models bill at zero rather than guessing.
var tokenPrices = []struct {
	prefix        string
	input, output float64
}{
	{prefix: "gpt-4o-mini", input: 0.00015, output: 0.0006},
	{prefix: "gpt-4o", input: 0.0025, output: 0.01},
	{prefix: "claude-sonnet", input: 0.003, output: 0.015},
	{prefix: "claude-3-5", input: 0.0008, output: 0.004},
}

// EstimateCost prices an invocation from its token counts. The first (most
// specific) matching prefix wins, so pricing is deterministic per model.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	for _, price := range tokenPrices {
		if strings.HasPrefix(model, price.prefix) {
			return float64(inputTokens)/1000*price.input + float64(outputTokens)/1000*price.output
		}
	}
	return 0
}

// UsageService records and aggregates the append-only AI usage log.
type UsageService struct {
	usage UsageRepository
}

// NewUsageService creates a new usage service
func NewUsageService(usage UsageRepository) *UsageService {
	return &UsageService{usage: usage}
}

// Record appends one usage record. Cost defaults to the model's token price
// when the caller passes a negative value.
func (s *UsageService) Record(ctx context.Context, record *models.AIUsageRecord) (*models.AIUsageRecord, error) {
	if !record.Kind.Valid() {
		return nil, errs.InvalidArgument("unknown interaction kind %q", record.Kind)
	}
	if record.InputTokens < 0 || record.OutputTokens < 0 {
		return nil, errs.InvalidArgument("token counts must not be negative")
	}
	if record.Cost < 0 {
		record.Cost = EstimateCost(record.Model, record.InputTokens, record.OutputTokens)
	}
	if err := s.usage.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Summarize aggregates all of the user's records.
func (s *UsageService) Summarize(ctx context.Context, userID string) (*models.UsageSummary, error) {
	records, err := s.usage.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(records), nil
}

// Recent returns the user's newest records, truncated to limit.
func (s *UsageService) Recent(ctx context.Context, userID string, limit int) ([]*models.AIUsageRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.usage.Recent(ctx, userID, limit)
}

// Aggregate folds usage records into a summary. Pure; exercised directly by
// tests.
func Aggregate(records []*models.AIUsageRecord) *models.UsageSummary {
	summary := &models.UsageSummary{
		ByKind: make(map[models.InteractionKind]models.KindStats),
	}
	for _, r := range records {
		summary.TotalInteractions++
		summary.TotalInputTokens += r.InputTokens
		summary.TotalOutputTokens += r.OutputTokens
		summary.TotalCost += r.Cost

		stats := summary.ByKind[r.Kind]
		stats.Count++
		stats.Tokens += r.InputTokens + r.OutputTokens
		summary.ByKind[r.Kind] = stats
	}
	return summary
}
