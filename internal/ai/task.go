// Package ai dispatches document tasks to language-model provider backends.
package ai

import "inkwell/internal/errs"

// TaskKind is the closed set of AI tasks.
type TaskKind string

const (
	TaskAnalyze  TaskKind = "analyze"
	TaskGenerate TaskKind = "generate"
	TaskEdit     TaskKind = "edit"
)

// ParseTask validates a task name from the wire.
func ParseTask(s string) (TaskKind, error) {
	switch TaskKind(s) {
	case TaskAnalyze, TaskGenerate, TaskEdit:
		return TaskKind(s), nil
	}
	return "", errs.InvalidArgument("unknown task %q", s)
}

// Options tune a single invocation. An unknown provider name falls back to
// the dispatcher's primary backend rather than failing.
type Options struct {
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	MaxTokens   int    `json:"max_tokens,omitempty"`
}

// AnalysisResult is the structured output of an analyze task.
type AnalysisResult struct {
	Summary   string   `json:"summary"`
	Topics    []string `json:"topics"`
	Sentiment string   `json:"sentiment"`
	WordCount int      `json:"word_count"`
}

// GenerationResult is the output of a generate task.
type GenerationResult struct {
	Text string `json:"text"`
}

// EditResult is the structured output of an edit task.
type EditResult struct {
	EditedText    string `json:"edited_text"`
	ChangeSummary string `json:"change_summary"`
	Reasoning     string `json:"reasoning"`
}

// TaskResult is the outcome of one successful invocation. Exactly one of the
// payload fields matching Task is set. Fallback marks a degraded result built
// from unparseable backend output.
type TaskResult struct {
	Task         TaskKind          `json:"task"`
	Provider     string            `json:"provider"`
	Model        string            `json:"model"`
	InputTokens  int               `json:"input_tokens"`
	OutputTokens int               `json:"output_tokens"`
	Fallback     bool              `json:"fallback,omitempty"`
	Analysis     *AnalysisResult   `json:"analysis,omitempty"`
	Generation   *GenerationResult `json:"generation,omitempty"`
	Edit         *EditResult       `json:"edit,omitempty"`
}
