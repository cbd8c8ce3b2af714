package telemetry

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/nerrad567/relay-core/internal/outputs"
)

// DefaultQueueSize bounds changes waiting to be published.
const DefaultQueueSize = 64

// StatePublisher is the MQTT surface the publisher needs.
// *mqtt.Client satisfies it.
type StatePublisher interface {
	PublishRetained(topic string, payload []byte) error
}

// TopicFunc returns the state topic for an output index.
type TopicFunc func(index int) string

// StateMessage is the retained payload for one output line.
type StateMessage struct {
	Output int `json:"output"`
	State  int `json:"state"`
}

// Publisher mirrors output levels to retained MQTT state topics.
//
// OutputChanged never blocks: changes are queued and published by Run. When
// the queue is full the change is dropped and counted; the next change on
// that line, or the next snapshot, repairs the retained value.
type Publisher struct {
	pub     StatePublisher
	topic   TopicFunc
	queue   chan StateMessage
	logger  Logger
	dropped atomic.Uint64
	sent    atomic.Uint64
}

// NewPublisher creates a publisher. A queueSize <= 0 uses DefaultQueueSize.
func NewPublisher(pub StatePublisher, topic TopicFunc, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Publisher{
		pub:    pub,
		topic:  topic,
		queue:  make(chan StateMessage, queueSize),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger. Passing nil restores the no-op logger.
func (p *Publisher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// OutputChanged implements outputs.Observer.
func (p *Publisher) OutputChanged(change outputs.Change) {
	p.enqueue(StateMessage{Output: change.Index, State: outputs.LevelValue(change.Level)})
}

// PublishSnapshot queues every line level, so retained topics match the
// bank after a (re)connect.
func (p *Publisher) PublishSnapshot(levels []bool) {
	for i, on := range levels {
		p.enqueue(StateMessage{Output: i, State: outputs.LevelValue(on)})
	}
}

func (p *Publisher) enqueue(msg StateMessage) {
	select {
	case p.queue <- msg:
	default:
		p.dropped.Add(1)
		p.logger.Warn("state publish queue full, dropping change", "output", msg.Output)
	}
}

// Run publishes queued changes until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			p.publish(msg)
		}
	}
}

func (p *Publisher) publish(msg StateMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("failed to marshal state message", "output", msg.Output, "error", err)
		return
	}
	topic := p.topic(msg.Output)
	if err := p.pub.PublishRetained(topic, payload); err != nil {
		p.logger.Warn("failed to publish output state", "topic", topic, "error", err)
		return
	}
	p.sent.Add(1)
	p.logger.Debug("output state published", "topic", topic, "state", msg.State)
}

// Dropped returns how many changes were discarded on a full queue.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Sent returns how many state messages the broker accepted.
func (p *Publisher) Sent() uint64 {
	return p.sent.Load()
}
