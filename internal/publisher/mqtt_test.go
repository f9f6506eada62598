package publisher

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPublisher() *Publisher {
	return &Publisher{topicPrefix: "waterwatch", houseID: "42", log: zerolog.Nop()}
}

func TestStateTopic(t *testing.T) {
	assert.Equal(t, "waterwatch/42/state", testPublisher().stateTopic())
}

func TestDiscoveryConfigs(t *testing.T) {
	configs, err := testPublisher().discoveryConfigs()
	require.NoError(t, err)

	// Eight summary sensors plus the history sensor
	require.Len(t, configs, 9)

	payload, ok := configs["homeassistant/sensor/waterwatch_42_current_reading/config"]
	require.True(t, ok)

	var cfg discoveryConfig
	require.NoError(t, json.Unmarshal(payload, &cfg))
	assert.Equal(t, "Current Meter Reading", cfg.Name)
	assert.Equal(t, "waterwatch_42_current_reading", cfg.UniqueID)
	assert.Equal(t, "waterwatch/42/state", cfg.StateTopic)
	assert.Equal(t, "{{ value_json.current_reading }}", cfg.ValueTemplate)
	assert.Equal(t, "m³", cfg.UnitOfMeasurement)
	assert.Equal(t, []string{"waterwatch_42"}, cfg.Device.Identifiers)
	assert.Empty(t, cfg.JSONAttributesTopic)

	payload, ok = configs["homeassistant/sensor/waterwatch_42_history_data/config"]
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(payload, &cfg))
	assert.Equal(t, "{{ value_json.monthly_history | length }}", cfg.ValueTemplate)
	assert.Equal(t, "waterwatch/42/state", cfg.JSONAttributesTopic,
		"history rides along as attributes on the state topic")
}
