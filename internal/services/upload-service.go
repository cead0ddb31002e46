package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/TuanPhatt/shipment_service/internal/dto"
	"github.com/TuanPhatt/shipment_service/internal/interfaces"
)

const (
	// DefaultMaxUploadWorkers bounds how many uploads run at once.
	DefaultMaxUploadWorkers = 5

	// uploadTimeout is the per-task network deadline. There is no retry.
	uploadTimeout = 20 * time.Second
)

type UploadService interface {
	// UploadAll pushes every task to the blob store with at most
	// maxWorkers in flight. It always waits for every task: a failing
	// sibling never cancels the others. The returned slice is exactly as
	// long as the input and sorted back into input order by Index.
	UploadAll(ctx context.Context, tasks []dto.UploadTask, maxWorkers int) []dto.UploadResult
}

type uploadService struct {
	store interfaces.BlobStore
}

func NewUploadService(store interfaces.BlobStore) UploadService {
	return &uploadService{store: store}
}

func (s *uploadService) UploadAll(ctx context.Context, tasks []dto.UploadTask, maxWorkers int) []dto.UploadResult {
	if len(tasks) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxUploadWorkers
	}

	results := make(chan dto.UploadResult, len(tasks))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task dto.UploadTask) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results <- s.uploadOne(ctx, task)
		}(task)
	}

	wg.Wait()
	close(results)

	out := make([]dto.UploadResult, 0, len(tasks))
	for res := range results {
		out = append(out, res)
	}

	// completions arrive unordered; restore the caller's ordering
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})

	return out
}

func (s *uploadService) uploadOne(ctx context.Context, task dto.UploadTask) dto.UploadResult {
	if s.store == nil {
		return dto.UploadResult{Index: task.Index, Err: errors.New("blob store is not configured")}
	}

	taskCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	url, err := s.store.Put(taskCtx, task.Filename, task.MimeType, task.Bytes)
	if err != nil {
		return dto.UploadResult{Index: task.Index, Err: err}
	}
	return dto.UploadResult{Index: task.Index, Success: true, URL: url}
}
