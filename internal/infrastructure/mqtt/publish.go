package mqtt

import (
	"fmt"
)

// Line state payloads are a few bytes; anything past this is a caller bug.
const maxPayloadSize = 1 << 20

// Publish hands one message to the broker and waits for the client to
// acknowledge it, up to defaultPublishTimeout.
//
// Parameters:
//   - topic: full topic, for example the output state topic of one line
//   - payload: message body, at most maxPayloadSize bytes
//   - qos: delivery level, 0 to 2
//   - retained: keep the message on the broker for late subscribers
//
// Returns:
//   - error: ErrInvalidTopic, ErrInvalidQoS or ErrNotConnected before any
//     network I/O, otherwise ErrPublishFailed wrapping the cause
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload is %d bytes, limit %d", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: no ack within %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishRetained publishes at the configured QoS with the retain flag set,
// so a dashboard that subscribes later still sees every line's last level.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}
