// Package statements forwards analytics records from the host to a sink
// (the statement log) over an in-process watermill pub/sub, so the
// terminal loop never waits on storage.
package statements

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/abhisek/speakset/internal/logging"
	"github.com/abhisek/speakset/internal/xapi"
)

// Topic is the pub/sub topic carrying statements.
const Topic = "xapi.statements"

const (
	metaSeq             = "seq"
	metaContentID       = "content_id"
	metaStatementID     = "statement_id"
	metaInteractionType = "interaction_type"
)

// Record is one triggered analytics record as delivered to a sink. Seq
// orders records in the order they were triggered.
type Record struct {
	Seq       int64
	ContentID string
	Data      xapi.Data
}

// Sink receives records. A sink error is logged and the record dropped.
type Sink func(ctx context.Context, rec Record) error

// Pipeline carries records from Publish to the sink passed to Run.
type Pipeline struct {
	pubsub   *gochannel.GoChannel
	messages <-chan *message.Message
	cancel   context.CancelFunc
	logger   *slog.Logger

	seq      atomic.Int64
	inflight sync.WaitGroup
}

// New creates a pipeline with its subscription already in place, so records
// published before Run starts are kept.
func New(logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	ps := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, watermill.NewSlogLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := ps.Subscribe(ctx, Topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Topic, err)
	}

	return &Pipeline{
		pubsub:   ps,
		messages: msgs,
		cancel:   cancel,
		logger:   logger,
	}, nil
}

// Publish enqueues data triggered by the set of contentID for the sink.
func (p *Pipeline) Publish(contentID string, data xapi.Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal statement: %w", err)
	}

	seq := p.seq.Add(1)
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metaSeq, strconv.FormatInt(seq, 10))
	msg.Metadata.Set(metaContentID, contentID)
	msg.Metadata.Set(metaStatementID, data.Statement.ID)
	if def := data.Statement.Object.Definition; def != nil {
		msg.Metadata.Set(metaInteractionType, def.InteractionType)
	}

	p.inflight.Add(1)
	if err := p.pubsub.Publish(Topic, msg); err != nil {
		p.inflight.Done()
		p.logger.Error("Failed to publish statement",
			"statement_id", data.Statement.ID,
			"error", err)
		return fmt.Errorf("failed to publish statement: %w", err)
	}
	return nil
}

// Run delivers records to sink until ctx is done or the pipeline is closed.
func (p *Pipeline) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-p.messages:
			if !ok {
				return nil
			}
			p.handle(ctx, msg, sink)
		}
	}
}

func (p *Pipeline) handle(ctx context.Context, msg *message.Message, sink Sink) {
	defer p.inflight.Done()
	defer msg.Ack()

	var data xapi.Data
	if err := json.Unmarshal(msg.Payload, &data); err != nil {
		p.logger.Error("Dropping unreadable statement", "message_id", msg.UUID, "error", err)
		return
	}
	seq, _ := strconv.ParseInt(msg.Metadata.Get(metaSeq), 10, 64)

	if err := sink(ctx, Record{
		Seq:       seq,
		ContentID: msg.Metadata.Get(metaContentID),
		Data:      data,
	}); err != nil {
		p.logger.Error("Failed to store statement",
			"statement_id", msg.Metadata.Get(metaStatementID),
			"interaction_type", msg.Metadata.Get(metaInteractionType),
			"error", err)
		return
	}
	p.logger.Debug("Stored statement",
		"statement_id", msg.Metadata.Get(metaStatementID),
		"seq", seq)
}

// Wait blocks until every published record has been handled. It must only
// be called while Run is running.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

// Close stops the subscription and releases the pub/sub.
func (p *Pipeline) Close() error {
	p.cancel()
	return p.pubsub.Close()
}
