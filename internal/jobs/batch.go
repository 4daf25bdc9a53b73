package jobs

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LinkProcessor handles one link of a batch.
type LinkProcessor interface {
	Process(ctx context.Context, link string) error
}

// Batcher runs uploaded link files in the background, one goroutine per file.
// Batches started while another is running are not coordinated with it.
type Batcher struct {
	processor LinkProcessor
	tracker   *Tracker
	logger    *slog.Logger
	wg        sync.WaitGroup
}

func NewBatcher(processor LinkProcessor, tracker *Tracker, logger *slog.Logger) *Batcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batcher{
		processor: processor,
		tracker:   tracker,
		logger:    logger,
	}
}

// ReadLinks returns the trimmed, non-empty lines of a file.
func ReadLinks(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer file.Close()

	var links []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			links = append(links, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	return links, nil
}

// Start reads the file and processes its links in the background. It returns
// once the batch is registered with the tracker.
func (b *Batcher) Start(ctx context.Context, path string) error {
	links, err := ReadLinks(path)
	if err != nil {
		return err
	}

	b.tracker.Begin(len(links))
	b.tracker.Logf("Found %d links in %s. Starting batch processing...", len(links), filepath.Base(path))
	b.logger.Info("batch started", "file", path, "links", len(links))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for i, link := range links {
			if ctx.Err() != nil {
				b.tracker.Logf("Batch %s cancelled", filepath.Base(path))
				return
			}
			b.tracker.Logf("Processing link %d/%d: %s", i+1, len(links), link)
			if err := b.processor.Process(ctx, link); err != nil {
				b.tracker.Logf("Error processing %s: %v", link, err)
				b.logger.Warn("link failed", "link", link, "error", err)
			}
			b.tracker.Advance()
		}
		b.logger.Info("batch finished", "file", path, "links", len(links))
	}()

	return nil
}

// Wait blocks until every started batch has returned.
func (b *Batcher) Wait() {
	b.wg.Wait()
}
