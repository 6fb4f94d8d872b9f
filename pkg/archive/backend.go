package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scribe-dev/scribe/pkg/codec"
)

// Sentinel errors a backend returns when a request names something the
// catalog does not hold. Sessions map them to their dedicated response
// codes; any other error becomes a generic error response.
var (
	// ErrRecordingUnknown is returned when a recording ID is not in the
	// catalog.
	ErrRecordingUnknown = errors.New("archive: recording not found")

	// ErrSubscriptionUnknown is returned when a recording subscription is
	// not known.
	ErrSubscriptionUnknown = errors.New("archive: recording subscription not found")

	// ErrReplayUnknown is returned when a replay session is not known.
	ErrReplayUnknown = errors.New("archive: replay session not found")
)

// Backend is where archive operations take effect. A control session calls
// exactly one method per request, on the conductor goroutine, and turns the
// returned ID or error into the control response. The relevant ID is what
// the operation's OK response carries: a subscription ID for recording
// starts, a session ID for replays, a count for queries over sets.
type Backend interface {
	StartRecording(streamID int32, sourceLocation codec.SourceLocation, channel string) (int64, error)
	StopRecording(streamID int32, channel string) (int64, error)
	ExtendRecording(recordingID int64, streamID int32, sourceLocation codec.SourceLocation, channel string) (int64, error)
	StopRecordingSubscription(subscriptionID int64) (int64, error)

	StartReplay(recordingID, position, length int64, replayStreamID int32, replayChannel string) (int64, error)
	StartBoundedReplay(recordingID, position, length int64, limitCounterID, replayStreamID int32, replayChannel string) (int64, error)
	StopReplay(replaySessionID int64) (int64, error)
	StopAllReplays(recordingID int64) (int64, error)

	ListRecordings(fromRecordingID int64, recordCount int32) (int64, error)
	ListRecordingsForURI(fromRecordingID int64, recordCount, streamID int32, channelFragment []byte) (int64, error)
	ListRecording(recordingID int64) (int64, error)
	RecordingPosition(recordingID int64) (int64, error)
	StartPosition(recordingID int64) (int64, error)
	StopPosition(recordingID int64) (int64, error)
	FindLastMatchingRecording(minRecordingID int64, sessionID, streamID int32, channelFragment []byte) (int64, error)
	ListRecordingSubscriptions(pseudoIndex, subscriptionCount int32, applyStreamID bool, streamID int32, channel string) (int64, error)

	TruncateRecording(recordingID, position int64) (int64, error)
	DetachSegments(recordingID, newStartPosition int64) (int64, error)
	DeleteDetachedSegments(recordingID int64) (int64, error)
	PurgeSegments(recordingID, newStartPosition int64) (int64, error)
	AttachSegments(recordingID int64) (int64, error)
	MigrateSegments(srcRecordingID, dstRecordingID int64) (int64, error)

	Replicate(srcRecordingID, dstRecordingID int64, srcControlStreamID int32, srcControlChannel, liveDestination string) (int64, error)
	StopReplication(replicationID int64) (int64, error)
}

type recordingEntry struct {
	streamID       int32
	channel        string
	startPosition  int64
	stopPosition   int64
	active         bool
	subscriptionID int64
	detached       int64
}

type subscriptionEntry struct {
	recordingID int64
	streamID    int32
	channel     string
	active      bool
}

// LoggingBackend keeps a synthetic in-memory catalog and logs every
// operation. It gives the daemon observable behavior without storage or
// media transport attached; real recording machinery replaces it behind
// the same interface. Not safe for concurrent use: the conductor goroutine
// owns it.
type LoggingBackend struct {
	logger *slog.Logger

	nextRecordingID    int64
	nextSubscriptionID int64
	nextReplayID       int64
	nextReplicationID  int64

	recordings    map[int64]*recordingEntry
	subscriptions map[int64]*subscriptionEntry
	replays       map[int64]int64
	replications  map[int64]int64
}

var _ Backend = (*LoggingBackend)(nil)

// NewLoggingBackend creates an empty catalog logging to logger.
func NewLoggingBackend(logger *slog.Logger) *LoggingBackend {
	return &LoggingBackend{
		logger:        logger.With("component", "backend"),
		recordings:    make(map[int64]*recordingEntry),
		subscriptions: make(map[int64]*subscriptionEntry),
		replays:       make(map[int64]int64),
		replications:  make(map[int64]int64),
	}
}

func (b *LoggingBackend) StartRecording(streamID int32, sourceLocation codec.SourceLocation, channel string) (int64, error) {
	b.nextRecordingID++
	b.nextSubscriptionID++
	recordingID := b.nextRecordingID
	subscriptionID := b.nextSubscriptionID
	b.recordings[recordingID] = &recordingEntry{
		streamID:       streamID,
		channel:        channel,
		stopPosition:   codec.NullValue,
		active:         true,
		subscriptionID: subscriptionID,
	}
	b.subscriptions[subscriptionID] = &subscriptionEntry{
		recordingID: recordingID,
		streamID:    streamID,
		channel:     channel,
		active:      true,
	}
	b.logger.Info("recording started",
		"recording_id", recordingID, "subscription_id", subscriptionID,
		"stream_id", streamID, "source_location", sourceLocation.String(), "channel", channel)
	return subscriptionID, nil
}

func (b *LoggingBackend) StopRecording(streamID int32, channel string) (int64, error) {
	for id, sub := range b.subscriptions {
		if sub.active && sub.streamID == streamID && sub.channel == channel {
			b.stopSubscription(id, sub)
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: streamId=%d channel=%s", ErrSubscriptionUnknown, streamID, channel)
}

func (b *LoggingBackend) ExtendRecording(recordingID int64, streamID int32, sourceLocation codec.SourceLocation, channel string) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	if rec.active {
		return 0, fmt.Errorf("archive: recording %d is still active", recordingID)
	}
	b.nextSubscriptionID++
	subscriptionID := b.nextSubscriptionID
	rec.active = true
	rec.stopPosition = codec.NullValue
	rec.subscriptionID = subscriptionID
	b.subscriptions[subscriptionID] = &subscriptionEntry{
		recordingID: recordingID,
		streamID:    streamID,
		channel:     channel,
		active:      true,
	}
	b.logger.Info("recording extended",
		"recording_id", recordingID, "subscription_id", subscriptionID,
		"stream_id", streamID, "source_location", sourceLocation.String(), "channel", channel)
	return subscriptionID, nil
}

func (b *LoggingBackend) StopRecordingSubscription(subscriptionID int64) (int64, error) {
	sub, ok := b.subscriptions[subscriptionID]
	if !ok || !sub.active {
		return 0, fmt.Errorf("%w: subscriptionId=%d", ErrSubscriptionUnknown, subscriptionID)
	}
	b.stopSubscription(subscriptionID, sub)
	return subscriptionID, nil
}

func (b *LoggingBackend) stopSubscription(subscriptionID int64, sub *subscriptionEntry) {
	sub.active = false
	if rec, ok := b.recordings[sub.recordingID]; ok && rec.active {
		rec.active = false
		rec.stopPosition = rec.startPosition
	}
	b.logger.Info("recording stopped",
		"recording_id", sub.recordingID, "subscription_id", subscriptionID)
}

func (b *LoggingBackend) StartReplay(recordingID, position, length int64, replayStreamID int32, replayChannel string) (int64, error) {
	if _, ok := b.recordings[recordingID]; !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	b.nextReplayID++
	replayID := b.nextReplayID
	b.replays[replayID] = recordingID
	b.logger.Info("replay started",
		"replay_session_id", replayID, "recording_id", recordingID,
		"position", position, "length", length,
		"replay_stream_id", replayStreamID, "replay_channel", replayChannel)
	return replayID, nil
}

func (b *LoggingBackend) StartBoundedReplay(recordingID, position, length int64, limitCounterID, replayStreamID int32, replayChannel string) (int64, error) {
	if _, ok := b.recordings[recordingID]; !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	b.nextReplayID++
	replayID := b.nextReplayID
	b.replays[replayID] = recordingID
	b.logger.Info("bounded replay started",
		"replay_session_id", replayID, "recording_id", recordingID,
		"position", position, "length", length, "limit_counter_id", limitCounterID,
		"replay_stream_id", replayStreamID, "replay_channel", replayChannel)
	return replayID, nil
}

func (b *LoggingBackend) StopReplay(replaySessionID int64) (int64, error) {
	if _, ok := b.replays[replaySessionID]; !ok {
		return 0, fmt.Errorf("%w: replaySessionId=%d", ErrReplayUnknown, replaySessionID)
	}
	delete(b.replays, replaySessionID)
	b.logger.Info("replay stopped", "replay_session_id", replaySessionID)
	return replaySessionID, nil
}

func (b *LoggingBackend) StopAllReplays(recordingID int64) (int64, error) {
	stopped := int64(0)
	for id, rec := range b.replays {
		if recordingID == codec.NullValue || rec == recordingID {
			delete(b.replays, id)
			stopped++
		}
	}
	b.logger.Info("replays stopped", "recording_id", recordingID, "count", stopped)
	return stopped, nil
}

func (b *LoggingBackend) ListRecordings(fromRecordingID int64, recordCount int32) (int64, error) {
	matched := int64(0)
	for id := range b.recordings {
		if id >= fromRecordingID && matched < int64(recordCount) {
			matched++
		}
	}
	return matched, nil
}

func (b *LoggingBackend) ListRecordingsForURI(fromRecordingID int64, recordCount, streamID int32, channelFragment []byte) (int64, error) {
	fragment := string(channelFragment)
	matched := int64(0)
	for id, rec := range b.recordings {
		if id < fromRecordingID || matched >= int64(recordCount) {
			continue
		}
		if rec.streamID == streamID && strings.Contains(rec.channel, fragment) {
			matched++
		}
	}
	return matched, nil
}

func (b *LoggingBackend) ListRecording(recordingID int64) (int64, error) {
	if _, ok := b.recordings[recordingID]; !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	return recordingID, nil
}

func (b *LoggingBackend) RecordingPosition(recordingID int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	if !rec.active {
		return codec.NullValue, nil
	}
	return rec.startPosition, nil
}

func (b *LoggingBackend) StartPosition(recordingID int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	return rec.startPosition, nil
}

func (b *LoggingBackend) StopPosition(recordingID int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	return rec.stopPosition, nil
}

// FindLastMatchingRecording matches on channel fragment and stream ID. The
// session ID is logged but not matched; this catalog has no per-image
// session identities.
func (b *LoggingBackend) FindLastMatchingRecording(minRecordingID int64, sessionID, streamID int32, channelFragment []byte) (int64, error) {
	fragment := string(channelFragment)
	found := int64(codec.NullValue)
	for id, rec := range b.recordings {
		if id < minRecordingID || id < found {
			continue
		}
		if rec.streamID == streamID && strings.Contains(rec.channel, fragment) {
			found = id
		}
	}
	b.logger.Info("find last matching recording",
		"min_recording_id", minRecordingID, "session_id", sessionID,
		"stream_id", streamID, "found", found)
	return found, nil
}

func (b *LoggingBackend) ListRecordingSubscriptions(pseudoIndex, subscriptionCount int32, applyStreamID bool, streamID int32, channel string) (int64, error) {
	matched := int64(0)
	for _, sub := range b.subscriptions {
		if !sub.active || matched >= int64(subscriptionCount) {
			continue
		}
		if applyStreamID && sub.streamID != streamID {
			continue
		}
		if strings.Contains(sub.channel, channel) {
			matched++
		}
	}
	return matched, nil
}

func (b *LoggingBackend) TruncateRecording(recordingID, position int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	if rec.active {
		return 0, fmt.Errorf("archive: cannot truncate active recording %d", recordingID)
	}
	rec.stopPosition = position
	b.logger.Info("recording truncated", "recording_id", recordingID, "position", position)
	return recordingID, nil
}

func (b *LoggingBackend) DetachSegments(recordingID, newStartPosition int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	if newStartPosition < rec.startPosition {
		return 0, fmt.Errorf("archive: new start position %d is before %d", newStartPosition, rec.startPosition)
	}
	rec.detached++
	rec.startPosition = newStartPosition
	b.logger.Info("segments detached", "recording_id", recordingID, "new_start_position", newStartPosition)
	return recordingID, nil
}

func (b *LoggingBackend) DeleteDetachedSegments(recordingID int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	deleted := rec.detached
	rec.detached = 0
	b.logger.Info("detached segments deleted", "recording_id", recordingID, "count", deleted)
	return deleted, nil
}

func (b *LoggingBackend) PurgeSegments(recordingID, newStartPosition int64) (int64, error) {
	if _, err := b.DetachSegments(recordingID, newStartPosition); err != nil {
		return 0, err
	}
	return b.DeleteDetachedSegments(recordingID)
}

func (b *LoggingBackend) AttachSegments(recordingID int64) (int64, error) {
	rec, ok := b.recordings[recordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, recordingID)
	}
	b.logger.Info("segments attached", "recording_id", recordingID, "start_position", rec.startPosition)
	return 0, nil
}

func (b *LoggingBackend) MigrateSegments(srcRecordingID, dstRecordingID int64) (int64, error) {
	src, ok := b.recordings[srcRecordingID]
	if !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, srcRecordingID)
	}
	if _, ok := b.recordings[dstRecordingID]; !ok {
		return 0, fmt.Errorf("%w: recordingId=%d", ErrRecordingUnknown, dstRecordingID)
	}
	migrated := src.detached
	src.detached = 0
	b.logger.Info("segments migrated",
		"src_recording_id", srcRecordingID, "dst_recording_id", dstRecordingID, "count", migrated)
	return migrated, nil
}

func (b *LoggingBackend) Replicate(srcRecordingID, dstRecordingID int64, srcControlStreamID int32, srcControlChannel, liveDestination string) (int64, error) {
	b.nextReplicationID++
	replicationID := b.nextReplicationID
	b.replications[replicationID] = srcRecordingID
	b.logger.Info("replication started",
		"replication_id", replicationID,
		"src_recording_id", srcRecordingID, "dst_recording_id", dstRecordingID,
		"src_control_stream_id", srcControlStreamID,
		"src_control_channel", srcControlChannel, "live_destination", liveDestination)
	return replicationID, nil
}

func (b *LoggingBackend) StopReplication(replicationID int64) (int64, error) {
	if _, ok := b.replications[replicationID]; !ok {
		return 0, fmt.Errorf("archive: replication %d not found", replicationID)
	}
	delete(b.replications, replicationID)
	b.logger.Info("replication stopped", "replication_id", replicationID)
	return replicationID, nil
}
