package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/errs"
)

// Dispatcher routes tasks to registered provider backends. A request naming
// an unknown provider is served by the primary backend instead of failing.
type Dispatcher struct {
	providers map[string]Provider
	primary   string
}

// NewDispatcher creates a dispatcher with the given primary backend.
func NewDispatcher(primary Provider) *Dispatcher {
	d := &Dispatcher{providers: make(map[string]Provider), primary: primary.Name()}
	d.providers[primary.Name()] = primary
	return d
}

// Register adds an additional provider backend.
func (d *Dispatcher) Register(p Provider) {
	d.providers[p.Name()] = p
}

func (d *Dispatcher) pick(name string) Provider {
	if p, ok := d.providers[name]; ok {
		return p
	}
	return d.providers[d.primary]
}

// Invoke runs one task against a provider backend. Provider failure surfaces
// as an Upstream error carrying the provider name; unparseable provider
// output never fails, it degrades to a deterministic fallback result.
func (d *Dispatcher) Invoke(ctx context.Context, task TaskKind, content string, opts Options) (*TaskResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.InvalidArgument("content must not be empty")
	}

	provider := d.pick(opts.Provider)

	completion, err := provider.Complete(ctx, CompletionRequest{
		System:    systemPrompt(task),
		Prompt:    userPrompt(task, content, opts.Instruction),
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return nil, errs.Upstream(provider.Name(), err)
	}

	result := &TaskResult{
		Task:         task,
		Provider:     provider.Name(),
		Model:        completion.Model,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
	}

	switch task {
	case TaskAnalyze:
		result.Analysis, result.Fallback = parseAnalysis(completion.Text, content)
	case TaskGenerate:
		// Generation output is text plus metadata; nothing to parse.
		result.Generation = &GenerationResult{Text: completion.Text}
	case TaskEdit:
		result.Edit, result.Fallback = parseEdit(completion.Text, content)
	default:
		return nil, errs.InvalidArgument("unknown task %q", task)
	}
	return result, nil
}

func systemPrompt(task TaskKind) string {
	switch task {
	case TaskAnalyze:
		return "You analyze documents. Respond with only a JSON object: " +
			`{"summary": string, "topics": [string], "sentiment": "positive"|"neutral"|"negative"}.`
	case TaskGenerate:
		return "You write document text. Respond with the generated text only, no preamble."
	case TaskEdit:
		return "You edit documents. Respond with only a JSON object: " +
			`{"edited_text": string, "change_summary": string, "reasoning": string}.`
	}
	return ""
}

func userPrompt(task TaskKind, content, instruction string) string {
	switch task {
	case TaskAnalyze:
		return "Analyze the following document:\n\n" + content
	case TaskGenerate:
		if instruction != "" {
			return instruction + "\n\nContext:\n" + content
		}
		return content
	case TaskEdit:
		if instruction == "" {
			instruction = "Improve clarity and fix grammar."
		}
		return "Instruction: " + instruction + "\n\nDocument:\n\n" + content
	}
	return content
}

// stripFences removes a markdown code fence wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseAnalysis decodes the backend's JSON. Malformed output degrades to a
// fallback built only from the raw output and the analyzed content, so the
// same malformed input always produces the same result.
func parseAnalysis(raw, content string) (*AnalysisResult, bool) {
	var parsed struct {
		Summary   string   `json:"summary"`
		Topics    []string `json:"topics"`
		Sentiment string   `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err == nil && parsed.Summary != "" {
		if parsed.Topics == nil {
			parsed.Topics = []string{}
		}
		if parsed.Sentiment == "" {
			parsed.Sentiment = "neutral"
		}
		return &AnalysisResult{
			Summary:   parsed.Summary,
			Topics:    parsed.Topics,
			Sentiment: parsed.Sentiment,
			WordCount: len(strings.Fields(content)),
		}, false
	}

	return &AnalysisResult{
		Summary:   truncate(strings.TrimSpace(raw), 500),
		Topics:    []string{},
		Sentiment: "neutral",
		WordCount: len(strings.Fields(content)),
	}, true
}

// parseEdit decodes the backend's JSON. The fallback keeps the original text
// untouched: an edit we cannot interpret must not rewrite the document.
func parseEdit(raw, content string) (*EditResult, bool) {
	var parsed EditResult
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err == nil && parsed.EditedText != "" {
		if parsed.ChangeSummary == "" {
			parsed.ChangeSummary = "Edited document"
		}
		return &parsed, false
	}

	return &EditResult{
		EditedText:    content,
		ChangeSummary: "No changes applied: backend returned unstructured output",
		Reasoning:     truncate(strings.TrimSpace(raw), 500),
	}, true
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return fmt.Sprintf("%s…", string(runes[:max]))
}
