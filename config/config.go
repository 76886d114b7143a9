package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	CarTrack CarTrackConfig `yaml:"cartrack"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnString собирает DSN для pgxpool.
func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	NotificationsTopicName string `yaml:"notifications_topic_name"`
}

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CarTrackConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// BaseURL публичного сайта, из него строится ссылка отслеживания.
	BaseURL string `yaml:"base_url"`

	JWTSecret     string `yaml:"jwt_secret"`
	JWTTTLMinutes int    `yaml:"jwt_ttl_minutes"`

	TrackingCacheTTLSeconds int `yaml:"tracking_cache_ttl_seconds"`

	LoginMaxAttempts       int `yaml:"login_max_attempts"`
	LoginWindowSeconds     int `yaml:"login_window_seconds"`
	LoginLockoutSeconds    int `yaml:"login_lockout_seconds"`
	LeadRateLimitPerMinute int `yaml:"lead_rate_limit_per_minute"`

	DefaultPhoneRegion string `yaml:"default_phone_region"`

	NotifierHTTPAddr      string `yaml:"notifier_http_addr"`
	NotifierConsumerGroup string `yaml:"notifier_consumer_group"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
