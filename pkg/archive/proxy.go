package archive

import (
	"log/slog"

	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/metrics"
	"github.com/scribe-dev/scribe/pkg/transport"
)

// ResponseProxy encodes control responses for one connection and offers
// them to its publication. One proxy per connection, used only on the
// conductor goroutine; the internal writer is reused across responses.
type ResponseProxy struct {
	publication transport.Publication
	writer      *codec.Writer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewResponseProxy creates a proxy publishing to publication.
func NewResponseProxy(publication transport.Publication, logger *slog.Logger, m *metrics.Metrics) *ResponseProxy {
	return &ResponseProxy{
		publication: publication,
		writer:      codec.NewWriter(),
		logger:      logger,
		metrics:     m,
	}
}

// SendOK responds to correlationID with an OK code and the ID the request
// resolved to.
func (p *ResponseProxy) SendOK(controlSessionID, correlationID, relevantID int64) error {
	p.writer.Reset()
	codec.AppendControlResponse(p.writer, controlSessionID, correlationID, relevantID,
		codec.ResponseCodeOK, codec.ProtocolSemanticVersion, "")
	return p.offer("ControlResponse")
}

// SendError responds to correlationID with an error code and message.
func (p *ResponseProxy) SendError(controlSessionID, correlationID int64, code codec.ResponseCode, message string) error {
	p.writer.Reset()
	codec.AppendControlResponse(p.writer, controlSessionID, correlationID, codec.NullValue,
		code, codec.ProtocolSemanticVersion, message)
	return p.offer("ControlResponse")
}

// SendChallenge asks the connecting client to prove its credentials.
func (p *ResponseProxy) SendChallenge(controlSessionID, correlationID int64, encodedChallenge []byte) error {
	p.writer.Reset()
	codec.AppendChallenge(p.writer, controlSessionID, correlationID, encodedChallenge)
	return p.offer("Challenge")
}

func (p *ResponseProxy) offer(template string) error {
	if err := p.publication.Offer(p.writer.Bytes()); err != nil {
		p.logger.Warn("response not published", "template", template, "error", err)
		return err
	}
	p.metrics.RecordResponse(template)
	return nil
}
