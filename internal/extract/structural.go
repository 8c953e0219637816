package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

const defaultPageWorkers = 4

// Structural reads the document's page tree and collects each page's text items.
type Structural struct {
	enabled bool
	workers int
}

// NewStructural returns the page-model strategy.
func NewStructural(enabled bool) *Structural {
	return &Structural{enabled: enabled, workers: defaultPageWorkers}
}

// WithWorkers bounds how many pages are decoded concurrently.
func (s *Structural) WithWorkers(n int) *Structural {
	if n > 0 {
		s.workers = n
	}
	return s
}

func (s *Structural) Name() string    { return StructuralName }
func (s *Structural) Available() bool { return s != nil && s.enabled }

// Extract joins each page's text items with a space and terminates every page
// with a newline. Pages are decoded in parallel but always emitted in page order.
func (s *Structural) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	first, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	total := first.NumPage()
	if total == 0 {
		return "", errors.New("pdf has no pages")
	}

	workers := s.workers
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	pages := make([]string, total)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("pdf parser panic: %v", rec)
				}
			}()

			// pdf.Reader caches decoded objects; each worker gets its own.
			reader := first
			if w > 0 {
				if reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
					return fmt.Errorf("open pdf: %w", err)
				}
			}
			for i := w; i < total; i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				page := reader.Page(i + 1)
				if page.V.IsNull() {
					continue
				}
				txt, err := pageText(page)
				if err != nil {
					return fmt.Errorf("page %d: %w", i+1, err)
				}
				pages[i] = txt
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	var items []string
	for _, row := range rows {
		for _, item := range row.Content {
			if item.S != "" {
				items = append(items, item.S)
			}
		}
	}
	return strings.Join(items, " "), nil
}
