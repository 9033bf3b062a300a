package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/config"
	"github.com/thatsimonsguy/airzone-cloud/internal/device"
)

const (
	stateSuffix       = "state"
	modeCommandSuffix = "mode/set"
)

// ModeHandler receives a mode change requested over MQTT.
type ModeHandler func(id string, value any)

// Publisher mirrors device snapshots to an MQTT broker and accepts mode
// commands for them.
type Publisher struct {
	client   paho.Client
	prefix   string
	retained bool
}

// Connect dials the configured broker.
func Connect(cfg config.MQTT) (*Publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("MQTT connection lost")
	})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, token.Error())
	}

	log.Info().
		Str("broker", cfg.Broker).
		Str("client_id", cfg.ClientID).
		Str("prefix", cfg.TopicPrefix).
		Msg("MQTT publisher connected")

	return NewPublisher(client, cfg.TopicPrefix, cfg.Retained), nil
}

func NewPublisher(client paho.Client, prefix string, retained bool) *Publisher {
	return &Publisher{client: client, prefix: strings.TrimSuffix(prefix, "/"), retained: retained}
}

func StateTopic(prefix, id string) string {
	return prefix + "/" + id + "/" + stateSuffix
}

func ModeCommandTopic(prefix, id string) string {
	return prefix + "/" + id + "/" + modeCommandSuffix
}

// PublishSnapshot sends one device snapshot as JSON to its state topic.
func (p *Publisher) PublishSnapshot(snap map[string]any) error {
	id, _ := snap[device.KeyID].(string)
	if id == "" {
		return device.ErrMissingID
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot %s: %w", id, err)
	}

	topic := StateTopic(p.prefix, id)
	token := p.client.Publish(topic, 0, p.retained, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}
	return nil
}

// PublishAll publishes every snapshot and logs the ones that fail.
func (p *Publisher) PublishAll(snaps []map[string]any) {
	for _, snap := range snaps {
		if err := p.PublishSnapshot(snap); err != nil {
			log.Warn().Err(err).Msg("Failed to publish device snapshot")
		}
	}
}

// SubscribeModeCommands routes messages on <prefix>/<id>/mode/set to handle.
// The payload is either a bare mode code or {"value": code}.
func (p *Publisher) SubscribeModeCommands(handle ModeHandler) error {
	filter := p.prefix + "/+/" + modeCommandSuffix
	token := p.client.Subscribe(filter, 1, func(_ paho.Client, msg paho.Message) {
		id, ok := p.deviceFromCommandTopic(msg.Topic())
		if !ok {
			log.Debug().Str("topic", msg.Topic()).Msg("Ignoring MQTT message on unexpected topic")
			return
		}
		value, err := decodeCommand(msg.Payload())
		if err != nil {
			log.Warn().Err(err).Str("device", id).Msg("Invalid MQTT mode command")
			return
		}
		handle(id, value)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", filter, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func (p *Publisher) deviceFromCommandTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, p.prefix+"/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/"+modeCommandSuffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func decodeCommand(payload []byte) (any, error) {
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]any); ok {
		value, ok := m[device.APIValue]
		if !ok {
			return nil, fmt.Errorf("missing %q in command", device.APIValue)
		}
		return value, nil
	}
	return v, nil
}
