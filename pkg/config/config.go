package config

import "time"

// Member definition member_service YAML structure
type Member struct {
	Port       string        `mapstructure:"port"`
	IP         string        `mapstructure:"ip"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	PostgreSQL  DatabaseConfig `mapstructure:"pg"`
	RedisMember RedisConfig    `mapstructure:"redis"`
	JWT         JWTConfig      `mapstructure:"jwt"`
}

// Chat definition chat_service YAML structure
type Chat struct {
	Port       string         `mapstructure:"port"`
	MongoSQL   DatabaseConfig `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Notify     NotifyConfig   `mapstructure:"notify"`
	Tuning     ChatTuning     `mapstructure:"chat"`
	JWT        JWTConfig      `mapstructure:"jwt"`
}

// ChatTuning timeouts and limits of the chat core
type ChatTuning struct {
	CredentialDecodeTimeoutMS int `mapstructure:"credential_decode_timeout_ms"`
	NotifyTimeoutMS           int `mapstructure:"notify_timeout_ms"`
	MaxMessageLength          int `mapstructure:"max_message_length"`
}

// CredentialDecodeTimeout per-token budget when repairing participants
func (c ChatTuning) CredentialDecodeTimeout() time.Duration {
	if c.CredentialDecodeTimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.CredentialDecodeTimeoutMS) * time.Millisecond
}

// NotifyTimeout budget of one detached notification dispatch
func (c ChatTuning) NotifyTimeout() time.Duration {
	if c.NotifyTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.NotifyTimeoutMS) * time.Millisecond
}

// NotifyConfig selects the notification drivers
type NotifyConfig struct {
	// Drivers any of "redis", "rabbitmq", "kafka"
	Drivers       []string `mapstructure:"drivers"`
	RabbitURL     string   `mapstructure:"rabbit_url"`
	RabbitQueue   string   `mapstructure:"rabbit_queue"`
	KafkaBrokers  []string `mapstructure:"kafka_brokers"`
	KafkaTopic    string   `mapstructure:"kafka_topic"`
	RetryCount    int      `mapstructure:"retry_count"`
	RetryInterval int      `mapstructure:"retry_interval"`
}

// JWTConfig signing secret and lifetime of issued credentials
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
	// Addr used when no sentinel is configured
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RetryDelay retry_interval in seconds as a duration
func (d DatabaseConfig) RetryDelay() time.Duration {
	return time.Duration(d.RetryInterval) * time.Second
}

// RetryDelay retry_interval in seconds as a duration
func (n NotifyConfig) RetryDelay() time.Duration {
	return time.Duration(n.RetryInterval) * time.Second
}
