package embedcache

import (
	"context"
	"errors"

	"github.com/botirk38/embedcache/types"
)

// ComputeResult holds the result of an async Compute call.
type ComputeResult struct {
	Result Result
	Error  error
}

// ComputeAsync runs Compute in its own goroutine.
// Returns a channel that will receive the result when complete.
func (c *Cache) ComputeAsync(ctx context.Context, text string, fieldType types.FieldType) <-chan ComputeResult {
	resultCh := make(chan ComputeResult, 1)
	go func() {
		defer close(resultCh)
		res, err := c.Compute(ctx, text, fieldType)
		resultCh <- ComputeResult{Result: res, Error: err}
	}()
	return resultCh
}

// BatchItem is one text to embed in a batch call.
type BatchItem struct {
	Text      string
	FieldType types.FieldType
}

// GetOrComputeBatch embeds every item concurrently and returns the vectors in
// item order. Items that fail leave a nil vector; their errors are joined.
func (c *Cache) GetOrComputeBatch(ctx context.Context, items []BatchItem) ([][]float32, error) {
	if len(items) == 0 {
		return nil, nil
	}

	type itemResult struct {
		index  int
		vector []float32
		err    error
	}
	resultCh := make(chan itemResult, len(items))

	for i, item := range items {
		go func(i int, it BatchItem) {
			vector, err := c.GetOrCompute(ctx, it.Text, it.FieldType)
			resultCh <- itemResult{index: i, vector: vector, err: err}
		}(i, item)
	}

	vectors := make([][]float32, len(items))
	var errs []error
	for range items {
		r := <-resultCh
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		vectors[r.index] = r.vector
	}
	return vectors, errors.Join(errs...)
}

// WarmAsync embeds items in the background so later lookups hit.
// Returns a channel that will receive an error or nil when complete.
func (c *Cache) WarmAsync(ctx context.Context, items []BatchItem) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		_, err := c.GetOrComputeBatch(ctx, items)
		errCh <- err
	}()
	return errCh
}
