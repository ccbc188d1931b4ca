package box

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"boxpull/internal/logging"
	"boxpull/internal/share"
)

// ProgressObserver receives streaming progress for one download. It is a
// side-observer: retrieval outcomes never depend on it.
type ProgressObserver interface {
	Start(name string, totalBytes int64)
	Advance(n int)
	Finish()
}

// Retriever downloads one catalog entry by walking an ordered chain of URL
// templates. Each template is attempted fully, streaming the body to a
// partial file, before falling through to the next. Success requires a
// definitive 200 plus a completely written body; partial artifacts are
// removed so they can never be mistaken for finished downloads.
type Retriever struct {
	session   *Session
	logger    *slog.Logger
	chunkSize int
	progress  ProgressObserver
}

// NewRetriever builds a retriever over the given session. chunkKiB bounds
// the streaming copy buffer so memory use is independent of file size.
func NewRetriever(session *Session, logger *slog.Logger, chunkKiB int, progress ProgressObserver) *Retriever {
	if logger == nil {
		logger = logging.NewNop()
	}
	if chunkKiB <= 0 {
		chunkKiB = 64
	}
	return &Retriever{
		session:   session,
		logger:    logger,
		chunkSize: chunkKiB * 1024,
		progress:  progress,
	}
}

type urlTemplate struct {
	name      string
	url       string
	apiHeader bool
}

// templates builds the ordered download URL chain for an entry: the public
// static endpoint, the shared-name-qualified endpoint, then the authorized
// API content endpoint. A direct URL recovered during discovery goes first.
func (r *Retriever) templates(item share.Item) []urlTemplate {
	var chain []urlTemplate
	if item.DownloadURL != "" {
		chain = append(chain, urlTemplate{name: "direct", url: item.DownloadURL})
	}
	if item.ID != "" {
		sharedName := r.session.SharedName()
		chain = append(chain,
			urlTemplate{
				name: "public-static",
				url:  fmt.Sprintf("%s/public/static/f_%s.download", r.session.StaticHost, item.ID),
			},
			urlTemplate{
				name: "shared-static",
				url:  fmt.Sprintf("%s/shared/static/%s.download?file_id=f_%s", r.session.StaticHost, sharedName, item.ID),
			},
			urlTemplate{
				name:      "api-content",
				url:       fmt.Sprintf("%s/files/%s/content", r.session.APIBaseURL, item.ID),
				apiHeader: true,
			},
		)
	}
	return chain
}

// Retrieve attempts the template chain for one entry and returns the bytes
// written on success. All templates exhausted yields ErrRetrievalExhausted;
// callers treat that as a failed item, never a batch abort.
func (r *Retriever) Retrieve(ctx context.Context, item share.Item, destDir string) (int64, error) {
	chain := r.templates(item)
	if len(chain) == 0 {
		return 0, share.Wrap(share.ErrRetrievalExhausted, "retrieve", fmt.Sprintf("%s: no usable locator", item.Name), nil)
	}

	for i, tpl := range chain {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		written, err := r.attempt(ctx, tpl, item.Name, destDir)
		if err != nil {
			r.logger.Debug("download template failed",
				logging.Args(
					logging.String("file", item.Name),
					logging.String("template", tpl.name),
					logging.Int("attempt", i+1),
					logging.Error(err),
				)...)
			continue
		}
		r.logger.Info("file downloaded",
			logging.Args(
				logging.String("file", item.Name),
				logging.String("template", tpl.name),
				logging.Int64("bytes", written),
			)...)
		return written, nil
	}
	return 0, share.Wrap(share.ErrRetrievalExhausted, "retrieve", item.Name+": all templates failed", nil)
}

func (r *Retriever) attempt(ctx context.Context, tpl urlTemplate, name, destDir string) (int64, error) {
	resp, err := r.session.Get(ctx, tpl.url, tpl.apiHeader)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drainBody(resp.Body)
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	destPath := filepath.Join(destDir, name)
	partialPath := destPath + ".partial"

	file, err := os.Create(partialPath)
	if err != nil {
		return 0, fmt.Errorf("create partial file: %w", err)
	}

	var reader io.Reader = resp.Body
	if r.progress != nil {
		r.progress.Start(name, resp.ContentLength)
		reader = io.TeeReader(reader, observerWriter{r.progress})
	}

	buf := make([]byte, r.chunkSize)
	written, err := io.CopyBuffer(file, reader, buf)
	if r.progress != nil {
		r.progress.Finish()
	}
	if err != nil {
		file.Close()
		os.Remove(partialPath)
		return 0, fmt.Errorf("stream body: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(partialPath)
		return 0, fmt.Errorf("sync partial file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(partialPath)
		return 0, fmt.Errorf("close partial file: %w", err)
	}
	if err := os.Rename(partialPath, destPath); err != nil {
		os.Remove(partialPath)
		return 0, fmt.Errorf("finalize download: %w", err)
	}
	return written, nil
}

type observerWriter struct {
	progress ProgressObserver
}

func (w observerWriter) Write(p []byte) (int, error) {
	w.progress.Advance(len(p))
	return len(p), nil
}

// Outcome records one entry's retrieval result within a batch.
type Outcome struct {
	Item  share.Item
	Bytes int64
	Err   error
}

// RetrieveAll downloads the given entries with a bounded worker pool.
// Entries share no mutable state beyond the destination directory, and
// distinct remote names keep concurrent writers apart, so per-entry work is
// safely parallel. Order of outcomes follows the input order.
func (r *Retriever) RetrieveAll(ctx context.Context, items []share.Item, destDir string, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	outcomes := make([]Outcome, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				item := items[idx]
				bytes, err := r.Retrieve(ctx, item, destDir)
				outcomes[idx] = Outcome{Item: item, Bytes: bytes, Err: err}
			}
		}()
	}

feed:
	for idx := range items {
		select {
		case <-ctx.Done():
			// Stop issuing new retrievals; in-flight downloads finish or
			// clean up their partial artifacts on their own.
			outcomes[idx] = Outcome{Item: items[idx], Err: ctx.Err()}
			for rest := idx + 1; rest < len(items); rest++ {
				outcomes[rest] = Outcome{Item: items[rest], Err: ctx.Err()}
			}
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	return outcomes
}
