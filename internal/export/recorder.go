package export

import (
	"encoding/csv"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"SpotSim/internal/logger"
	"SpotSim/internal/model"
)

// Recorder keeps a trail of simulation results.
type Recorder interface {
	Record(res model.SimulationResult) error
	Close() error
}

// NoopRecorder is used when no export file is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ model.SimulationResult) error { return nil }
func (n *NoopRecorder) Close() error                          { return nil }

// CSVRecorder appends one row per result to a CSV file, writing the header
// when the file is new or empty.
type CSVRecorder struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewCSVRecorder opens (or creates) path for appending.
func NewCSVRecorder(path string, l *zap.Logger) (*CSVRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open csv export")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat csv export")
	}
	r := &CSVRecorder{f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := r.write(Header); err != nil {
			f.Close()
			return nil, err
		}
	}
	logger.OrNop(l).Info("csv recorder opened", zap.String("path", path))
	return r, nil
}

// Record appends a result and flushes it to disk.
func (r *CSVRecorder) Record(res model.SimulationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(Row(res))
}

func (r *CSVRecorder) write(fields []string) error {
	if err := r.w.Write(fields); err != nil {
		return errors.Wrap(err, "write csv row")
	}
	r.w.Flush()
	return errors.Wrap(r.w.Error(), "flush csv")
}

// Close closes the underlying file.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
