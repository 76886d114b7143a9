package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  notifications_topic_name: "notification.requested"
redis:
  host: "localhost"
  port: 6379
smtp:
  host: "smtp.local"
  port: 587
  from: "noreply@cartrack.local"
cartrack:
  http_addr: ":8080"
  base_url: "https://cars.example.com"
  jwt_secret: "s3cret"
  login_max_attempts: 5
  default_phone_region: "DE"
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "notification.requested", cfg.Kafka.NotificationsTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers())
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Equal(t, ":8080", cfg.CarTrack.HTTPAddr)
	require.Equal(t, "https://cars.example.com", cfg.CarTrack.BaseURL)
	require.Equal(t, 5, cfg.CarTrack.LoginMaxAttempts)
	require.Equal(t, "DE", cfg.CarTrack.DefaultPhoneRegion)
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Username: "u", Password: "p", DBName: "cars"}
	require.Equal(t, "postgres://u:p@db:5432/cars?sslmode=disable", d.ConnString())

	d.SSLMode = "require"
	require.Equal(t, "postgres://u:p@db:5432/cars?sslmode=require", d.ConnString())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
