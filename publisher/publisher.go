// Package publisher pushes the state of the current hour to demand-response
// consumers, e.g. a water heater relay listening on MQTT.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/icodeforyou/spotprice-go/types"
)

type Publisher interface {
	PublishHour(ctx context.Context, hour types.HourRecord) error
	Close()
}

// HourMessage is the payload sent for the current hour.
type HourMessage struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Cost     float64   `json:"cost"`
	HighCost bool      `json:"highCost"`
}

func NewHourMessage(h types.HourRecord) HourMessage {
	return HourMessage{
		Start:    h.Start,
		End:      h.End,
		Cost:     h.Cost,
		HighCost: h.IsHighCost.ValueOrDefault(false),
	}
}

type Nop struct{}

func (Nop) PublishHour(context.Context, types.HourRecord) error { return nil }
func (Nop) Close()                                               {}

type Mqtt struct {
	client mqtt.Client
	logger *slog.Logger
	topic  string
}

func NewMqtt(broker string, port int16, username, password, topic string) *Mqtt {
	logger := slog.Default().With("module", "publisher")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID("spotprice-" + uuid.NewString()[:8])
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqttLogger := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLogger, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLogger, slog.LevelWarn)

	return &Mqtt{
		client: mqtt.NewClient(opts),
		logger: logger,
		topic:  topic,
	}
}

func (m *Mqtt) Connect() error {
	token := m.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// PublishHour sends the hour as a retained message, so a relay that
// reconnects gets the current state right away.
func (m *Mqtt) PublishHour(ctx context.Context, hour types.HourRecord) error {
	payload, err := json.Marshal(NewHourMessage(hour))
	if err != nil {
		return fmt.Errorf("encode hour: %w", err)
	}

	token := m.client.Publish(m.topic, 1, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}

	m.logger.Debug("published hour",
		slog.String("topic", m.topic),
		slog.Time("start", hour.Start),
		slog.Bool("highCost", hour.IsHighCost.ValueOrDefault(false)))
	return nil
}

func (m *Mqtt) Close() {
	m.client.Disconnect(250)
}
