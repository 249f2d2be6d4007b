package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"inkwell/internal/models"

	"github.com/pgvector/pgvector-go"
)

// IndexJob asks for a document's search index to be rebuilt from the given
// content, typically the text of a freshly created version.
type IndexJob struct {
	DocumentID string
	Content    string
}

// IndexerService keeps document embeddings current with a fixed worker pool.
// Bounding the workers bounds concurrent embedding API calls; the buffered
// queue gives backpressure instead of unbounded goroutines.
type IndexerService struct {
	embedder Embedder
	embRepo  EmbeddingRepository

	jobs    chan IndexJob
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewIndexerService creates the worker pool without starting it.
func NewIndexerService(embedder Embedder, embRepo EmbeddingRepository, numWorkers, queueSize int) *IndexerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &IndexerService{
		embedder: embedder,
		embRepo:  embRepo,
		jobs:     make(chan IndexJob, queueSize),
		workers:  numWorkers,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start spawns the workers.
func (s *IndexerService) Start() {
	log.Printf("starting indexer worker pool with %d workers", s.workers)
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *IndexerService) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			if err := s.process(job); err != nil {
				log.Printf("indexer worker %d: document %s: %v", id, job.DocumentID, err)
			}
		}
	}
}

// Submit queues a job. Blocks only when the queue is full.
func (s *IndexerService) Submit(job IndexJob) error {
	select {
	case s.jobs <- job:
		return nil
	case <-s.ctx.Done():
		return fmt.Errorf("indexer is shutting down")
	}
}

func (s *IndexerService) process(job IndexJob) error {
	ctx := context.Background()

	// Replace the old index wholesale; chunks from a previous version must
	// not survive alongside the new ones.
	if err := s.embRepo.DeleteByDocumentID(ctx, job.DocumentID); err != nil {
		return fmt.Errorf("failed to clear old embeddings: %w", err)
	}

	chunks := chunkText(job.Content, 500)
	for i, chunk := range chunks {
		vector, err := s.embedder.CreateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		embedding := &models.Embedding{
			DocumentID: job.DocumentID,
			ChunkIndex: i,
			ChunkText:  chunk,
			Embedding:  pgvector.NewVector(vector),
		}
		if err := s.embRepo.StoreEmbedding(ctx, embedding); err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}
	return nil
}

// chunkText splits text into chunks of approximately maxWords words.
func chunkText(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// Shutdown stops accepting jobs and waits for in-flight work.
func (s *IndexerService) Shutdown() {
	close(s.jobs)
	s.cancel()
	s.wg.Wait()
}
