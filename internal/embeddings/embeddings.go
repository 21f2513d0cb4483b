package embeddings

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
)

// Dimensions is the size of the report embedding vectors.
const Dimensions = 4

// Result is the outcome of one embedding request.
type Result struct {
	Content   string
	Embedding []float32
	Error     error
}

type work struct {
	content string
	result  chan<- Result
}

// Service generates report embeddings on a bounded worker pool with a cache,
// so repeated texts (identical checklists) are embedded once.
type Service struct {
	workQueue chan work
	cache     sync.Map
	wg        sync.WaitGroup
}

// NewService starts an embedding service with the given number of workers.
func NewService(numWorkers int) *Service {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	s := &Service{
		workQueue: make(chan work, 100),
	}
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Service) worker() {
	defer s.wg.Done()
	for w := range s.workQueue {
		if cached, ok := s.cache.Load(w.content); ok {
			if embedding, valid := cached.([]float32); valid {
				w.result <- Result{Content: w.content, Embedding: embedding}
				continue
			}
		}

		embedding, err := generate(w.content)
		if err == nil {
			s.cache.Store(w.content, embedding)
		}
		w.result <- Result{Content: w.content, Embedding: embedding, Error: err}
	}
}

// GetEmbedding requests an embedding asynchronously. The returned channel
// receives exactly one result.
func (s *Service) GetEmbedding(content string) <-chan Result {
	resultChan := make(chan Result, 1)
	select {
	case s.workQueue <- work{content: content, result: resultChan}:
	default:
		resultChan <- Result{
			Content: content,
			Error:   fmt.Errorf("embedding queue is full, try again later"),
		}
		close(resultChan)
	}
	return resultChan
}

// generate produces a deterministic content-hash embedding. Stands in until a
// real embedding backend is wired; similarity then means "same report text".
func generate(content string) ([]float32, error) {
	sum := sha256.Sum256([]byte(content))

	embedding := make([]float32, Dimensions)
	for i := range embedding {
		bits := binary.BigEndian.Uint32(sum[i*4 : i*4+4])
		embedding[i] = float32(bits%1000) / 1000
	}
	return embedding, nil
}

// Close shuts the service down and waits for in-flight work.
func (s *Service) Close() {
	close(s.workQueue)
	s.wg.Wait()
}
