// Package mqtt reads data rules from a live MQTT topic. Each message payload
// is parsed as data-rule text and merged via merge.Merge into one running
// container, which is delivered on the Stream's Containers() channel. The
// package does not attach that container to any port of a workflow graph.
package mqtt

import (
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/renyuneyun/dr.aid/merge"
	"github.com/renyuneyun/dr.aid/ruledsl"
	"github.com/renyuneyun/dr.aid/types"
)

// Stream subscribes to a broker topic and accumulates every message's data
// rule into a single running container, delivered to Containers().
type Stream struct {
	client  paho.Client
	topic   string
	logger  types.Logger
	updates chan *types.DataRuleContainer
	current *types.DataRuleContainer
}

// Connect opens an MQTT connection to brokerURL and subscribes to topic.
// Each received message is parsed via ruledsl.ParseDataRule; a malformed
// payload is logged and dropped rather than tearing down the subscription.
func Connect(brokerURL, clientID, topic string, logger types.Logger) (*Stream, error) {
	s := &Stream{
		topic:   topic,
		logger:  logger,
		updates: make(chan *types.DataRuleContainer, 16),
	}

	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", brokerURL, token.Error())
	}
	s.client = client

	if token := client.Subscribe(topic, 1, s.onMessage); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	return s, nil
}

func (s *Stream) onMessage(_ paho.Client, msg paho.Message) {
	container, err := ruledsl.ParseDataRule(string(msg.Payload()))
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("mqtt: discarding malformed message on %s: %v", s.topic, err)
		}
		return
	}
	if s.current == nil {
		s.current = container
	} else {
		s.current = merge.Merge(s.current, container)
	}
	select {
	case s.updates <- s.current:
	default:
		// a consumer that never drains only ever sees the latest snapshot
		<-s.updates
		s.updates <- s.current
	}
}

// Containers delivers the running merged container after each message;
// only the latest snapshot is kept if the consumer falls behind.
func (s *Stream) Containers() <-chan *types.DataRuleContainer { return s.updates }

// Close unsubscribes and disconnects.
func (s *Stream) Close() {
	if token := s.client.Unsubscribe(s.topic); token.Wait() {
		_ = token.Error()
	}
	s.client.Disconnect(250)
}
