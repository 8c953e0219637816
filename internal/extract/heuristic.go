package extract

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"doc-analyzer/internal/shared/telemetry"
)

const maxInflatedStream = 64 << 20

var (
	errNoContentStreams = errors.New("no content streams found")

	// pdfcpu otherwise materializes a config directory under the user's home.
	disableConfigDir sync.Once
)

// Heuristic recovers text from content streams without trusting the page tree.
// It reads the file with pdfcpu in relaxed mode and, when that fails, scans the
// raw bytes for stream sections.
type Heuristic struct {
	enabled bool
}

// NewHeuristic returns the whole-buffer fallback strategy.
func NewHeuristic(enabled bool) *Heuristic {
	return &Heuristic{enabled: enabled}
}

func (h *Heuristic) Name() string    { return HeuristicName }
func (h *Heuristic) Available() bool { return h != nil && h.enabled }

func (h *Heuristic) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("heuristic extractor panic: %v", rec)
		}
	}()

	text, cpuErr := pdfcpuText(ctx, data)
	if cpuErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if cpuErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		telemetry.Debug("extract.pdfcpu_failed", map[string]any{"err": cpuErr})
	}

	raw, rawErr := scanRawStreams(data)
	if rawErr == nil {
		return raw, nil
	}
	if cpuErr == nil {
		// pdfcpu read the file fine; it simply holds no text.
		return text, nil
	}
	return "", errors.Join(cpuErr, rawErr)
}

func pdfcpuText(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()
	pctx, err := readContext(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for p := 1; p <= pctx.PageCount; p++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pctx, p)
		if err != nil {
			return "", fmt.Errorf("pdfcpu page %d: %w", p, err)
		}
		if r != nil {
			content, err := io.ReadAll(r)
			if err != nil {
				return "", fmt.Errorf("pdfcpu page %d: %w", p, err)
			}
			b.WriteString(strings.TrimRight(scanContent(content), "\n"))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// PageCount reports the number of pages pdfcpu finds in data.
func PageCount(data []byte) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdfcpu panic: %v", rec)
		}
	}()
	pctx, err := readContext(data)
	if err != nil {
		return 0, err
	}
	return pctx.PageCount, nil
}

func readContext(data []byte) (*model.Context, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("pdfcpu page count: %w", err)
	}
	return pctx, nil
}

// scanRawStreams walks every stream...endstream section and scans the ones that
// look like page content.
func scanRawStreams(data []byte) (string, error) {
	var (
		b     strings.Builder
		found bool
		rest  = data
	)
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		if i >= 3 && string(rest[i-3:i]) == "end" {
			rest = rest[i+len("stream"):]
			continue
		}
		start := i + len("stream")
		if start < len(rest) && rest[start] == '\r' {
			start++
		}
		if start < len(rest) && rest[start] == '\n' {
			start++
		}
		j := bytes.Index(rest[start:], []byte("endstream"))
		if j < 0 {
			break
		}
		found = true
		content := inflate(rest[start : start+j])
		if bytes.Contains(content, []byte("BT")) {
			if txt := strings.TrimRight(scanContent(content), "\n"); txt != "" {
				b.WriteString(txt)
				b.WriteByte('\n')
			}
		}
		rest = rest[start+j+len("endstream"):]
	}
	if !found {
		return "", errNoContentStreams
	}
	return b.String(), nil
}

// inflate returns the zlib-decoded body, or the body itself when it is not Flate data.
func inflate(body []byte) []byte {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer zr.Close()
	out, _ := io.ReadAll(io.LimitReader(zr, maxInflatedStream))
	if len(out) == 0 {
		return body
	}
	return out
}
