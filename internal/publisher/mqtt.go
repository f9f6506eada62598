package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sqzls/waterwatch/internal/config"
	"github.com/sqzls/waterwatch/pkg/models"
)

// sensorMeta describes one Home Assistant sensor derived from the summary
type sensorMeta struct {
	Key         string
	Name        string
	Icon        string
	Unit        string
	DeviceClass string
}

// summarySensors mirrors the integration's sensor set: one sensor per
// numeric summary field, units in cubic meters and yuan.
var summarySensors = []sensorMeta{
	{Key: "current_reading", Name: "Current Meter Reading", Icon: "mdi:gauge", Unit: "m³"},
	{Key: "balance", Name: "Account Balance", Icon: "mdi:wallet", Unit: "元", DeviceClass: "monetary"},
	{Key: "yearly_volume", Name: "Yearly Water Usage", Icon: "mdi:water", Unit: "m³", DeviceClass: "water"},
	{Key: "yearly_amount", Name: "Yearly Water Cost", Icon: "mdi:currency-cny", Unit: "元", DeviceClass: "monetary"},
	{Key: "monthly_volume", Name: "Monthly Water Usage", Icon: "mdi:water", Unit: "m³", DeviceClass: "water"},
	{Key: "monthly_amount", Name: "Monthly Water Cost", Icon: "mdi:currency-cny", Unit: "元", DeviceClass: "monetary"},
	{Key: "unpaid_amount", Name: "Unpaid Amount", Icon: "mdi:currency-cny", Unit: "元", DeviceClass: "monetary"},
	{Key: "unit_price", Name: "Current Unit Price", Icon: "mdi:cash", Unit: "元/m³"},
}

// discoveryConfig is the Home Assistant MQTT discovery payload
type discoveryConfig struct {
	Name                string          `json:"name"`
	UniqueID            string          `json:"unique_id"`
	StateTopic          string          `json:"state_topic"`
	ValueTemplate       string          `json:"value_template"`
	Icon                string          `json:"icon,omitempty"`
	UnitOfMeasurement   string          `json:"unit_of_measurement,omitempty"`
	DeviceClass         string          `json:"device_class,omitempty"`
	JSONAttributesTopic string          `json:"json_attributes_topic,omitempty"`
	Device              discoveryDevice `json:"device"`
}

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// Publisher pushes usage summaries to Home Assistant over MQTT
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	houseID     string
	log         zerolog.Logger
}

// New creates a publisher and connects to the broker
func New(cfg config.MQTTConfig, houseID string, log zerolog.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("waterwatch")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.GetTopicPrefix(),
		houseID:     houseID,
		log:         log,
	}, nil
}

// stateTopic is where the full summary JSON is published
func (p *Publisher) stateTopic() string {
	return fmt.Sprintf("%s/%s/state", p.topicPrefix, p.houseID)
}

// discoveryConfigs builds the retained discovery messages, keyed by topic
func (p *Publisher) discoveryConfigs() (map[string][]byte, error) {
	device := discoveryDevice{
		Identifiers:  []string{fmt.Sprintf("waterwatch_%s", p.houseID)},
		Name:         "Water Meter",
		Manufacturer: "Guotou Water",
		Model:        "Smart Water Meter",
	}

	configs := make(map[string][]byte, len(summarySensors)+1)
	for _, meta := range summarySensors {
		uniqueID := fmt.Sprintf("waterwatch_%s_%s", p.houseID, meta.Key)
		payload, err := json.Marshal(discoveryConfig{
			Name:              meta.Name,
			UniqueID:          uniqueID,
			StateTopic:        p.stateTopic(),
			ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", meta.Key),
			Icon:              meta.Icon,
			UnitOfMeasurement: meta.Unit,
			DeviceClass:       meta.DeviceClass,
			Device:            device,
		})
		if err != nil {
			return nil, fmt.Errorf("encoding discovery config for %s: %w", meta.Key, err)
		}
		configs[fmt.Sprintf("homeassistant/sensor/%s/config", uniqueID)] = payload
	}

	// History sensor: state is the number of recorded months, the full
	// ordered history rides along as attributes.
	uniqueID := fmt.Sprintf("waterwatch_%s_history_data", p.houseID)
	payload, err := json.Marshal(discoveryConfig{
		Name:                "Usage History",
		UniqueID:            uniqueID,
		StateTopic:          p.stateTopic(),
		ValueTemplate:       "{{ value_json.monthly_history | length }}",
		Icon:                "mdi:chart-line",
		JSONAttributesTopic: p.stateTopic(),
		Device:              device,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding history discovery config: %w", err)
	}
	configs[fmt.Sprintf("homeassistant/sensor/%s/config", uniqueID)] = payload

	return configs, nil
}

// PublishDiscovery announces the sensor set to Home Assistant. Messages are
// retained so entities survive broker and HA restarts.
func (p *Publisher) PublishDiscovery() error {
	configs, err := p.discoveryConfigs()
	if err != nil {
		return err
	}

	for topic, payload := range configs {
		if token := p.client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
			return fmt.Errorf("publishing discovery config to %s: %w", topic, token.Error())
		}
	}

	p.log.Info().Int("sensors", len(configs)).Msg("published MQTT discovery configs")
	return nil
}

// PublishSummary publishes a fresh summary to the state topic
func (p *Publisher) PublishSummary(summary *models.UsageSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	if token := p.client.Publish(p.stateTopic(), 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing summary: %w", token.Error())
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
