// Package publisher forwards newly recorded usage entries to an MQTT broker so that home
// automation systems can react to them.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"energydash/backend/services/usage-service/internal/models"
)

const (
	defaultTopicPrefix = "energydash"
	connectWait        = 15 * time.Second
)

// Options configure the broker connection.
type Options struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// MQTTPublisher publishes entries to <prefix>/<user>/usage.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(opts Options) (*MQTTPublisher, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required")
	}

	broker := opts.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = "usage-service"
	}

	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(broker)
	clientOpts.SetClientID(clientID)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectTimeout(10 * time.Second)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	client := mqtt.NewClient(clientOpts)
	// With connect retry enabled the token only completes once a connection is up.
	token := client.Connect()
	if !token.WaitTimeout(connectWait) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to MQTT broker %s: timed out after %s", broker, connectWait)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", err)
	}

	return newWithClient(client, opts.TopicPrefix), nil
}

func newWithClient(client mqtt.Client, prefix string) *MQTTPublisher {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}
	return &MQTTPublisher{client: client, topicPrefix: prefix}
}

// Topic returns the topic for the user's entries.
func (p *MQTTPublisher) Topic(userID string) string {
	return p.topicPrefix + "/" + userID + "/usage"
}

// PublishEntry sends the entry and waits for the broker acknowledgement or ctx.
func (p *MQTTPublisher) PublishEntry(ctx context.Context, entry models.UsageEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.Topic(entry.UserID), 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the MQTT broker.
func (p *MQTTPublisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
