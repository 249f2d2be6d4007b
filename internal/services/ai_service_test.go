package services

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/ai"
	"inkwell/internal/errs"
	"inkwell/internal/models"
)

type fakeInvoker struct {
	result *ai.TaskResult
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, task ai.TaskKind, _ string, _ ai.Options) (*ai.TaskResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := *f.result
	result.Task = task
	return &result, nil
}

func aiFixture(t *testing.T, doc *models.Document, grants *memCollabStore, invoker TaskInvoker, store *memUsageStore) *AIService {
	t.Helper()
	svc := NewAIService(invoker, NewUsageService(store), docFixture(doc), grants, 16)
	svc.Start()
	t.Cleanup(svc.Shutdown)
	return svc
}

func waitForRecords(t *testing.T, store *memUsageStore, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("usage records = %d, want %d", store.count(), want)
}

func TestInvokeLogsUsage(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	store := &memUsageStore{}
	invoker := &fakeInvoker{result: &ai.TaskResult{
		Provider: "openai", Model: "gpt-4o-mini", InputTokens: 100, OutputTokens: 50,
		Analysis: &ai.AnalysisResult{Summary: "ok"},
	}}
	svc := aiFixture(t, doc, newMemCollabStore(), invoker, store)

	result, err := svc.Invoke(context.Background(), "owner", InvokeRequest{
		Task: ai.TaskAnalyze, Content: "some text", DocumentID: "doc-1",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.Analysis == nil {
		t.Fatal("missing analysis payload")
	}

	waitForRecords(t, store, 1)
	records, _ := store.ListByUser(context.Background(), "owner")
	record := records[0]
	if record.Kind != models.KindAnalyze || record.InputTokens != 100 || record.OutputTokens != 50 {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.DocumentID == nil || *record.DocumentID != "doc-1" {
		t.Errorf("document reference not set: %+v", record.DocumentID)
	}
}

func TestInvokeWithoutDocument(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	store := &memUsageStore{}
	invoker := &fakeInvoker{result: &ai.TaskResult{
		Provider: "openai", Model: "gpt-4o-mini", Generation: &ai.GenerationResult{Text: "hi"},
	}}
	svc := aiFixture(t, doc, newMemCollabStore(), invoker, store)

	// No document reference: no permission check, record has nil document.
	if _, err := svc.Invoke(context.Background(), "anyone", InvokeRequest{
		Task: ai.TaskGenerate, Content: "prompt",
	}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	waitForRecords(t, store, 1)
	records, _ := store.ListByUser(context.Background(), "anyone")
	if records[0].DocumentID != nil {
		t.Errorf("expected nil document reference, got %v", *records[0].DocumentID)
	}
}

func TestInvokeEditRequiresWrite(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner", Privacy: models.PrivacyPrivate}
	grants := newMemCollabStore()
	grants.Upsert(context.Background(), &models.Collaboration{
		DocumentID: "doc-1", UserID: "reader", PermissionLevel: models.PermissionRead, InvitedByID: "owner",
	})
	store := &memUsageStore{}
	invoker := &fakeInvoker{result: &ai.TaskResult{Provider: "openai", Model: "m", Edit: &ai.EditResult{EditedText: "x"}}}
	svc := aiFixture(t, doc, grants, invoker, store)
	ctx := context.Background()

	_, err := svc.Invoke(ctx, "reader", InvokeRequest{Task: ai.TaskEdit, Content: "text", DocumentID: "doc-1"})
	if !errs.IsKind(err, errs.KindPermissionDenied) {
		t.Fatalf("reader edit: expected PermissionDenied, got %v", err)
	}

	// The same reader may analyze the document.
	if _, err := svc.Invoke(ctx, "reader", InvokeRequest{Task: ai.TaskAnalyze, Content: "text", DocumentID: "doc-1"}); err != nil {
		t.Fatalf("reader analyze failed: %v", err)
	}
}

func TestFailedInvokeLogsNothing(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	store := &memUsageStore{}
	invoker := &fakeInvoker{err: errs.Upstream("openai", context.DeadlineExceeded)}
	svc := aiFixture(t, doc, newMemCollabStore(), invoker, store)

	_, err := svc.Invoke(context.Background(), "owner", InvokeRequest{Task: ai.TaskGenerate, Content: "prompt"})
	if !errs.IsKind(err, errs.KindUpstream) {
		t.Fatalf("expected Upstream, got %v", err)
	}

	// No tokens were produced, so no record may exist.
	time.Sleep(50 * time.Millisecond)
	if store.count() != 0 {
		t.Fatalf("failed invocation produced %d usage records", store.count())
	}
}

func TestFullUsageQueueDoesNotBlockInvoke(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	store := &memUsageStore{}
	invoker := &fakeInvoker{result: &ai.TaskResult{Provider: "openai", Model: "m", Generation: &ai.GenerationResult{Text: "ok"}}}
	// Logger deliberately not started and the queue holds a single record,
	// so the second invocation finds it full.
	svc := NewAIService(invoker, NewUsageService(store), docFixture(doc), newMemCollabStore(), 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			if _, err := svc.Invoke(context.Background(), "owner", InvokeRequest{
				Task: ai.TaskGenerate, Content: "prompt",
			}); err != nil {
				t.Errorf("Invoke %d failed: %v", i, err)
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Invoke blocked on a full usage queue")
	}
}

func TestInvokeAfterShutdown(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	store := &memUsageStore{}
	invoker := &fakeInvoker{result: &ai.TaskResult{Provider: "openai", Model: "m", Generation: &ai.GenerationResult{Text: "ok"}}}
	svc := NewAIService(invoker, NewUsageService(store), docFixture(doc), newMemCollabStore(), 4)
	svc.Start()
	svc.Shutdown()

	// The caller still gets the result; only the record is dropped.
	result, err := svc.Invoke(context.Background(), "owner", InvokeRequest{Task: ai.TaskGenerate, Content: "prompt"})
	if err != nil {
		t.Fatalf("Invoke after shutdown failed: %v", err)
	}
	if result.Generation == nil || result.Generation.Text != "ok" {
		t.Errorf("unexpected result: %+v", result)
	}
	if store.count() != 0 {
		t.Errorf("record written after shutdown: %d", store.count())
	}
}

func TestLoggingFailureDoesNotFailTask(t *testing.T) {
	doc := &models.Document{ID: "doc-1", OwnerID: "owner"}
	store := &memUsageStore{failing: true}
	invoker := &fakeInvoker{result: &ai.TaskResult{Provider: "openai", Model: "m", Generation: &ai.GenerationResult{Text: "ok"}}}
	svc := aiFixture(t, doc, newMemCollabStore(), invoker, store)

	result, err := svc.Invoke(context.Background(), "owner", InvokeRequest{Task: ai.TaskGenerate, Content: "prompt"})
	if err != nil {
		t.Fatalf("Invoke failed despite only logging being broken: %v", err)
	}
	if result.Generation == nil || result.Generation.Text != "ok" {
		t.Errorf("unexpected result: %+v", result)
	}
}
