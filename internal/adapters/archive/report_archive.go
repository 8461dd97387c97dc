package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

// ReportArchive appends every sol report of a run to <dir>/<run>.jsonl.zst
type ReportArchive struct {
	path string

	mu      sync.Mutex
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	written int
	err     error
}

// ParseLevel maps the config spelling onto a zstd encoder level
func ParseLevel(level string) (zstd.EncoderLevel, error) {
	switch level {
	case "fastest":
		return zstd.SpeedFastest, nil
	case "", "default":
		return zstd.SpeedDefault, nil
	case "better":
		return zstd.SpeedBetterCompression, nil
	case "best":
		return zstd.SpeedBestCompression, nil
	default:
		return 0, fmt.Errorf("unknown compression level %q", level)
	}
}

// NewReportArchive creates the archive file for runID in dir
func NewReportArchive(dir, runID, level string) (*ReportArchive, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}

	path := filepath.Join(dir, runID+".jsonl.zst")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(lvl))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &ReportArchive{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

func (a *ReportArchive) Path() string { return a.path }

// Written returns the number of reports archived so far
func (a *ReportArchive) Written() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written
}

// Err returns the first write error, after which the archive stops writing
func (a *ReportArchive) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Publish implements settlement.ReportPublisher
func (a *ReportArchive) Publish(report *settlement.SolReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil || a.w == nil {
		return
	}

	if err := a.writeLocked(report); err != nil {
		a.err = err
		log.Printf("[archive] stopped writing %s: %v", a.path, err)
		return
	}
	a.written++
}

func (a *ReportArchive) writeLocked(report *settlement.SolReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	if _, err := a.w.Write(b); err != nil {
		return err
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return err
	}
	return a.w.Flush()
}

// Close flushes the zstd frame and closes the file
func (a *ReportArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	if a.w != nil {
		firstErr = a.w.Flush()
		a.w = nil
	}
	if a.enc != nil {
		if err := a.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.enc = nil
	}
	if a.f != nil {
		if err := a.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.f = nil
	}
	return firstErr
}

// ReadArchive decodes every report in a .jsonl.zst archive
func ReadArchive(path string) ([]*settlement.SolReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	var reports []*settlement.SolReport
	jd := json.NewDecoder(dec)
	for {
		var r settlement.SolReport
		if err := jd.Decode(&r); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode report %d: %w", len(reports)+1, err)
		}
		reports = append(reports, &r)
	}
	return reports, nil
}

var _ settlement.ReportPublisher = (*ReportArchive)(nil)
