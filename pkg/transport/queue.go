package transport

import "sync/atomic"

// DefaultQueueCapacity is the fragment backlog an image holds before
// offers are refused.
const DefaultQueueCapacity = 128

// ImageQueue is an in-process Image fed by Offer. It decouples a producer
// goroutine (a connection read pump, a test) from the single goroutine that
// polls. Offer copies the fragment in, so the producer may reuse its buffer
// immediately.
type ImageQueue struct {
	correlationID  int64
	sourceIdentity string
	fragments      chan []byte
	closed         atomic.Bool
}

// NewImageQueue creates an image queue. A capacity of zero or less uses
// DefaultQueueCapacity.
func NewImageQueue(correlationID int64, sourceIdentity string, capacity int) *ImageQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &ImageQueue{
		correlationID:  correlationID,
		sourceIdentity: sourceIdentity,
		fragments:      make(chan []byte, capacity),
	}
}

// Offer queues one fragment. It fails with ErrClosed after Close and with
// ErrBacklog when the consumer has fallen behind by more than the capacity.
func (q *ImageQueue) Offer(data []byte) error {
	if q.closed.Load() {
		return ErrClosed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	select {
	case q.fragments <- cp:
		return nil
	default:
		return ErrBacklog
	}
}

// Poll drains up to fragmentLimit fragments without blocking.
func (q *ImageQueue) Poll(handler FragmentHandler, fragmentLimit int) (int, error) {
	n := 0
	for n < fragmentLimit {
		select {
		case frag := <-q.fragments:
			n++
			if err := handler(frag); err != nil {
				return n, err
			}
		default:
			return n, nil
		}
	}
	return n, nil
}

// Close marks the image closed. Queued fragments still drain through Poll.
func (q *ImageQueue) Close() {
	q.closed.Store(true)
}

// IsClosed reports whether Close has been called.
func (q *ImageQueue) IsClosed() bool {
	return q.closed.Load()
}

// SourceIdentity identifies the producer end.
func (q *ImageQueue) SourceIdentity() string {
	return q.sourceIdentity
}

// CorrelationID is the identity assigned at construction.
func (q *ImageQueue) CorrelationID() int64 {
	return q.correlationID
}

// queuePublication is the write side of an in-process pair.
type queuePublication struct {
	q *ImageQueue
}

func (p *queuePublication) Offer(data []byte) error {
	return p.q.Offer(data)
}

func (p *queuePublication) Close() error {
	p.q.Close()
	return nil
}

// Pipe returns a connected in-process image and publication. Messages
// offered to the publication surface as fragments on the image.
func Pipe(correlationID int64, sourceIdentity string, capacity int) (*ImageQueue, Publication) {
	q := NewImageQueue(correlationID, sourceIdentity, capacity)
	return q, &queuePublication{q: q}
}
