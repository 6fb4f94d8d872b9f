package offload

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ErrSegmentNotFound is returned when a segment is not in the store.
var ErrSegmentNotFound = errors.New("offload: segment not found")

// Segment describes one detached recording segment held by a store.
type Segment struct {
	RecordingID  int64     `json:"recording_id"`
	BasePosition int64     `json:"base_position"`
	Size         int64     `json:"size"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// SegmentStore is the interface for detached segment storage backends.
// Implement this interface to keep segments in S3, GCS, or other storage.
type SegmentStore interface {
	// Put stores the segment contents under (recordingID, basePosition),
	// replacing any previous copy, and returns the bytes written.
	Put(recordingID, basePosition int64, r io.Reader) (int64, error)

	// Get opens a stored segment for reading.
	Get(recordingID, basePosition int64) (io.ReadCloser, error)

	// Delete removes a stored segment.
	Delete(recordingID, basePosition int64) error

	// List returns the stored segments for a recording, ordered by base
	// position.
	List(recordingID int64) ([]Segment, error)
}

const segmentSuffix = ".seg"

// segmentName is the canonical file name for a segment.
func segmentName(recordingID, basePosition int64) string {
	return fmt.Sprintf("%d-%d%s", recordingID, basePosition, segmentSuffix)
}

func parseSegmentName(name string) (recordingID, basePosition int64, ok bool) {
	stem, found := strings.CutSuffix(name, segmentSuffix)
	if !found {
		return 0, 0, false
	}
	recPart, posPart, found := strings.Cut(stem, "-")
	if !found {
		return 0, 0, false
	}
	rec, err := strconv.ParseInt(recPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	pos, err := strconv.ParseInt(posPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return rec, pos, true
}
