// Package stream publishes emission events over MQTT as they are recorded,
// giving downstream consumers a live feed of the running simulation.
package stream

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/traffic-emissions/internal/models"
)

const publishTimeout = 5 * time.Second

// Publisher pushes EmissionEvents to an MQTT broker, one message per event,
// on <prefix>/<vehicle id>.
type Publisher struct {
	client mqtt.Client
	prefix string
}

// Connect dials the broker and returns a ready publisher.
func Connect(broker, clientID, topicPrefix string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", broker, err)
	}

	log.WithFields(log.Fields{"broker": broker, "client_id": clientID}).Info("Connected to MQTT broker")
	return NewWithClient(client, topicPrefix), nil
}

// NewWithClient wraps an already-connected client.
func NewWithClient(client mqtt.Client, topicPrefix string) *Publisher {
	if topicPrefix == "" {
		topicPrefix = "emissions/events"
	}
	return &Publisher{client: client, prefix: topicPrefix}
}

// Publish sends one event as JSON.
func (p *Publisher) Publish(event models.EmissionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal emission event: %w", err)
	}

	topic := p.prefix + "/" + event.VehicleID
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
