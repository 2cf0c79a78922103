// Package bridge feeds measurements published over MQTT into the
// telemetry engine, sharing the ingestion path with the HTTP API.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dseeg/IoT-Environment/internal/config"
	"github.com/dseeg/IoT-Environment/internal/telemetry"
)

// Bridge subscribes to a measurement topic and ingests every published
// payload. Malformed or rejected messages are logged and dropped; MQTT
// offers no reply channel for them.
type Bridge struct {
	cfg    config.MQTTConfig
	svc    *telemetry.Service
	log    zerolog.Logger
	client mqtt.Client
}

func New(cfg config.MQTTConfig, svc *telemetry.Service, log zerolog.Logger) *Bridge {
	return &Bridge{cfg: cfg, svc: svc, log: log}
}

// Start connects to the broker and subscribes to the configured topic.
func (b *Bridge) Start(ctx context.Context) error {
	clientID := b.cfg.ClientID
	if clientID == "" {
		clientID = "iot-environment"
	}
	// suffix with a UUID so multiple server instances can share a config
	clientID = clientID + "-" + uuid.New().String()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect mqtt broker %s: %w", b.cfg.Broker, token.Error())
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		b.handleMessage(ctx, msg)
	}
	if token := b.client.Subscribe(b.cfg.Topic, b.cfg.QOS, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", b.cfg.Topic, token.Error())
	}

	b.log.Info().Str("broker", b.cfg.Broker).Str("topic", b.cfg.Topic).Msg("mqtt bridge started")
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (b *Bridge) Stop() {
	if b.client == nil {
		return
	}
	if token := b.client.Unsubscribe(b.cfg.Topic); token.Wait() && token.Error() != nil {
		b.log.Warn().Err(token.Error()).Msg("mqtt unsubscribe failed")
	}
	b.client.Disconnect(250)
}

func (b *Bridge) handleMessage(ctx context.Context, msg mqtt.Message) {
	var m telemetry.Measurement
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		b.log.Warn().Err(err).Str("topic", msg.Topic()).Msg("dropping malformed measurement")
		return
	}
	if _, err := b.svc.Ingest(ctx, m); err != nil {
		b.log.Warn().Err(err).
			Str("relay", m.RelayPhysicalAddress).
			Str("device", m.DeviceAddress).
			Msg("measurement rejected")
	}
}
