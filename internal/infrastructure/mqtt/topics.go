package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "relaycore"

// Topics builds Relay Core topic names under a prefix.
//
//	topics := mqtt.Topics{Prefix: "relaycore"}
//	topics.OutputState(3) // "relaycore/state/output/3"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// OutputState returns the retained state topic for one output line.
//
// Example: relaycore/state/output/3
func (t Topics) OutputState(index int) string {
	return fmt.Sprintf("%s/state/output/%d", t.prefix(), index)
}

// AllOutputStates returns a wildcard matching every output state topic.
func (t Topics) AllOutputStates() string {
	return t.prefix() + "/state/output/+"
}

// SystemStatus returns the retained online/offline status topic. The
// broker publishes the LWT here on an unexpected disconnect.
//
// Example: relaycore/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}
