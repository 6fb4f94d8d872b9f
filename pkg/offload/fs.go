package offload

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/scribe-dev/scribe/pkg/metrics"
)

// FSStore keeps segments as flat files in one directory, named
// <recordingID>-<basePosition>.seg.
type FSStore struct {
	dir     string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ SegmentStore = (*FSStore)(nil)

// Option configures an FSStore.
type Option func(*FSStore)

// WithMetrics records offload metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *FSStore) {
		s.metrics = m
	}
}

// NewFSStore creates the segment directory if needed and returns a store
// over it.
func NewFSStore(dir string, logger *slog.Logger, opts ...Option) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("offload: create segment dir: %w", err)
	}
	s := &FSStore{
		dir:    dir,
		logger: logger.With("component", "offload"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Put stores the segment contents, replacing any previous copy.
func (s *FSStore) Put(recordingID, basePosition int64, r io.Reader) (int64, error) {
	path := filepath.Join(s.dir, segmentName(recordingID, basePosition))
	f, err := os.Create(path)
	if err != nil {
		s.metrics.RecordOffloadError()
		return 0, err
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		s.metrics.RecordOffloadError()
		return 0, err
	}
	s.metrics.RecordOffload(written)
	s.logger.Info("segment stored",
		"recording_id", recordingID, "base_position", basePosition, "bytes", written)
	return written, nil
}

// Get opens a stored segment for reading.
func (s *FSStore) Get(recordingID, basePosition int64) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, segmentName(recordingID, basePosition)))
	if os.IsNotExist(err) {
		return nil, ErrSegmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes a stored segment.
func (s *FSStore) Delete(recordingID, basePosition int64) error {
	err := os.Remove(filepath.Join(s.dir, segmentName(recordingID, basePosition)))
	if os.IsNotExist(err) {
		return ErrSegmentNotFound
	}
	if err != nil {
		s.metrics.RecordOffloadError()
		return err
	}
	s.logger.Info("segment deleted",
		"recording_id", recordingID, "base_position", basePosition)
	return nil
}

// List returns the stored segments for one recording, ordered by base
// position. Files that do not follow the segment naming scheme are skipped.
func (s *FSStore) List(recordingID int64) ([]Segment, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var segments []Segment
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec, pos, ok := parseSegmentName(entry.Name())
		if !ok || rec != recordingID {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		segments = append(segments, Segment{
			RecordingID:  rec,
			BasePosition: pos,
			Size:         info.Size(),
			ModifiedAt:   info.ModTime(),
		})
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].BasePosition < segments[j].BasePosition
	})
	return segments, nil
}
