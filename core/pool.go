package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/schollz/progressbar/v3"
)

// progressOutput receives progress bars of bulk operations.
var progressOutput io.Writer = os.Stderr

// newProgressBar creates a progress bar with consistent styling.
func newProgressBar(description string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(progressOutput),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progressOutput)
		}),
	)
}

// runPool processes items in parallel using a worker pool of cfg.Parallelism
// goroutines. A failed item is logged as a warning and does not stop the others.
// It returns the number of failed items.
func runPool[T any](ctx context.Context, cfg *contract.Config, description string, items []T, name func(T) string, work func(context.Context, T) error) int {
	itemCh := make(chan T, len(items))
	var failed atomic.Int32
	var wg sync.WaitGroup
	bar := newProgressBar(description, len(items))

	// Start worker pool
	for range max(cfg.Parallelism, 1) {
		wg.Go(func() {
			for item := range itemCh {
				if ctx.Err() == nil {
					if err := work(ctx, item); err != nil {
						failed.Add(1)
						contract.LogWarn(fmt.Sprintf("%s failed for %s", description, name(item)), err)
					}
				} else {
					failed.Add(1)
				}
				_ = bar.Add(1)
			}
		})
	}

	for _, item := range items {
		itemCh <- item
	}
	close(itemCh)

	wg.Wait()
	_ = bar.Finish()
	return int(failed.Load())
}
