// Package mqttbridge pushes order and driver changes to driver devices over
// MQTT. Each driver listens on its own topic, dispatch/drivers/<driverId>/events.
package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/notifier"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	clientID       = "mqtt-bridge"
	qosAtLeastOnce = byte(1)
	publishTimeout = 5 * time.Second
)

var errPublishTimeout = errors.New("mqtt publish timed out")

// Client is the subset of the paho client the bridge uses.
type Client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Source is the notifier side of the bridge.
type Source interface {
	Consume(ctx context.Context, clientID string, filter notifier.Filter, handle func(context.Context, notifier.Event)) error
}

// Connect dials the broker with auto-reconnect enabled.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOrderMatters(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, token.Error())
	}
	return client, nil
}

// Topic is the topic a driver's device subscribes to.
func Topic(driverID string) string {
	return "dispatch/drivers/" + driverID + "/events"
}

type Bridge struct {
	client Client
	logger *slog.Logger
}

func NewBridge(client Client, logger *slog.Logger) *Bridge {
	return &Bridge{
		client: client,
		logger: logger.With("component", "MQTTBridge"),
	}
}

// Run forwards events until ctx is done, then disconnects.
func (b *Bridge) Run(ctx context.Context, source Source) error {
	b.logger.InfoContext(ctx, "mqtt bridge started")
	defer func() {
		if b.client.IsConnected() {
			b.client.Disconnect(250)
		}
	}()

	return source.Consume(ctx, clientID, notifier.Kinds(notifier.KindOrder, notifier.KindDriver), b.Handle)
}

// Handle publishes the event once per driver it concerns.
func (b *Bridge) Handle(ctx context.Context, e notifier.Event) {
	drivers := Recipients(e)
	if len(drivers) == 0 {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to encode event", "event_id", e.ID, "error", err)
		return
	}

	for _, driverID := range drivers {
		if err = b.publish(Topic(driverID), payload); err != nil {
			b.logger.ErrorContext(ctx, "failed to push event to driver",
				"driver_id", driverID,
				"event_id", e.ID,
				"entity_id", e.EntityID,
				"error", err,
			)
		}
	}
}

// Recipients returns the drivers an event goes to: the driver itself for
// driver events, the drivers before and after the change for orders.
func Recipients(e notifier.Event) []string {
	switch e.Kind {
	case notifier.KindDriver:
		return []string{e.EntityID}
	case notifier.KindOrder:
		return e.Parties
	default:
		return nil
	}
}

func (b *Bridge) publish(topic string, payload []byte) error {
	token := b.client.Publish(topic, qosAtLeastOnce, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errPublishTimeout
	}
	return token.Error()
}
