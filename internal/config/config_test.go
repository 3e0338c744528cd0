package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[database]
user = "salon"
dbname = "salon"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, domain.DefaultSlotIntervalMinutes, cfg.Scheduling.SlotIntervalMinutes)
	assert.Equal(t, domain.DefaultWeekdayNames, cfg.Scheduling.WeekdayNames)
	assert.Equal(t, BrokerNone, cfg.Notifications.Broker)
	assert.Equal(t, "host=localhost port=5432 user=salon password= dbname=salon sslmode=disable", cfg.Database.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
[scheduling]
slot_interval_minutes = 15
closed_marker = "Closed"
weekday_names = ["Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"]

[notifications]
broker = "kafka"

[notifications.kafka]
brokers = ["kafka:9092"]
`)

	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_PORT", "6432")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Scheduling.SlotIntervalMinutes)
	assert.Equal(t, "Closed", cfg.Scheduling.ClosedMarker)
	assert.Equal(t, "Monday", cfg.Scheduling.WeekdayNames[1])
	assert.Equal(t, []string{"kafka:9092"}, cfg.Notifications.Kafka.Brokers)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 6432, cfg.Database.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero interval", content: "[scheduling]\nslot_interval_minutes = 0\n"},
		{name: "unknown broker", content: "[notifications]\nbroker = \"nats\"\n"},
		{name: "kafka without brokers", content: "[notifications]\nbroker = \"kafka\"\n"},
		{name: "telegram without token", content: "[notifications.telegram]\nenabled = true\n"},
		{name: "bad timezone", content: "[scheduling]\ntimezone = \"Mars/Olympus\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
