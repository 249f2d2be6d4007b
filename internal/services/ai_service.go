package services

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"inkwell/internal/access"
	"inkwell/internal/ai"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// AIService runs AI tasks with access control and billing. Usage records are
// written by a single long-lived logger goroutine so a slow or failing log
// write never blocks a caller holding a successful result; log failures are
// reported in the server log, not to the caller.
type AIService struct {
	dispatcher TaskInvoker
	usage      *UsageService
	auth       *authorizer

	logQueue chan *models.AIUsageRecord
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
}

// NewAIService creates the service and its usage logger queue. Call Start
// before use and Shutdown on exit.
func NewAIService(
	dispatcher TaskInvoker,
	usage *UsageService,
	docs DocumentRepository,
	collabs CollaborationRepository,
	queueSize int,
) *AIService {
	return &AIService{
		dispatcher: dispatcher,
		usage:      usage,
		auth:       &authorizer{docs: docs, collabs: collabs},
		logQueue:   make(chan *models.AIUsageRecord, queueSize),
	}
}

// Start launches the usage logger goroutine.
func (s *AIService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for record := range s.logQueue {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if _, err := s.usage.Record(ctx, record); err != nil {
				log.Printf("usage logger: failed to record %s usage for user %s: %v", record.Kind, record.UserID, err)
			}
			cancel()
		}
	}()
}

// Shutdown drains pending usage records and stops the logger. Invocations
// racing the shutdown drop their records instead of panicking on the closed
// queue.
func (s *AIService) Shutdown() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.logQueue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// InvokeRequest is one AI task invocation.
type InvokeRequest struct {
	Task       ai.TaskKind
	Content    string
	DocumentID string // optional; required permission depends on the task
	Options    ai.Options
}

// Invoke runs the task and enqueues a usage record on success. A failed task
// produces no usage record at all: token counts that were never produced are
// never billed.
func (s *AIService) Invoke(ctx context.Context, userID string, req InvokeRequest) (*ai.TaskResult, error) {
	ctx, span := middleware.StartSpan(ctx, "AIService.Invoke",
		attribute.String("task", string(req.Task)),
	)
	defer span.End()

	if req.DocumentID != "" {
		// Edits mutate document content; analyze/generate only read it.
		min := access.Read
		if req.Task == ai.TaskEdit {
			min = access.Write
		}
		if _, err := s.auth.require(ctx, req.DocumentID, userID, min); err != nil {
			return nil, err
		}
	}

	result, err := s.dispatcher.Invoke(ctx, req.Task, req.Content, req.Options)
	if err != nil {
		middleware.AddSpanError(ctx, err)
		return nil, err
	}

	middleware.AddSpanEvent(ctx, "task_completed",
		attribute.String("provider", result.Provider),
		attribute.String("model", result.Model),
		attribute.Int("input_tokens", result.InputTokens),
		attribute.Int("output_tokens", result.OutputTokens),
	)

	record := &models.AIUsageRecord{
		UserID:       userID,
		Kind:         models.InteractionKind(req.Task),
		Provider:     result.Provider,
		Model:        result.Model,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		Cost:         EstimateCost(result.Model, result.InputTokens, result.OutputTokens),
	}
	if req.DocumentID != "" {
		docID := req.DocumentID
		record.DocumentID = &docID
	}

	s.enqueue(record)
	return result, nil
}

// enqueue hands the record to the logger without ever blocking the caller.
// A full queue or a shutdown in progress drops the record with a log line.
func (s *AIService) enqueue(record *models.AIUsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Printf("usage logger: shutting down, dropped %s record for user %s", record.Kind, record.UserID)
		return
	}
	select {
	case s.logQueue <- record:
	default:
		log.Printf("usage logger: queue full, dropped %s record for user %s", record.Kind, record.UserID)
	}
}
