package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	MailTransportQueue = "queue"
	MailTransportHTTP  = "http"
	MailTransportLog   = "log"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Order    OrderConfig    `yaml:"order"`
	Mail     MailConfig     `yaml:"mail"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type OrderConfig struct {
	MaxRetryAttempts int `yaml:"maxRetryAttempts"`
}

// MailConfig selects how emails leave the service: published to RabbitMQ,
// posted directly to the mail API, or only logged.
type MailConfig struct {
	Transport string        `yaml:"transport"`
	APIURL    string        `yaml:"apiUrl"`
	APIKey    string        `yaml:"apiKey"`
	From      string        `yaml:"from"`
	Timeout   time.Duration `yaml:"timeout"`
}

type RabbitMQConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	EmailQueue  string `yaml:"emailQueue"`
	RunConsumer bool   `yaml:"runConsumer"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Password, c.Host, c.Port)
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "atelier")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "atelier")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("MAIL_TRANSPORT", MailTransportLog)
	viper.SetDefault("MAIL_API_URL", "")
	viper.SetDefault("MAIL_API_KEY", "")
	viper.SetDefault("MAIL_FROM", "Atelier <no-reply@atelier.local>")
	viper.SetDefault("MAIL_TIMEOUT", "10s")
	viper.SetDefault("RABBITMQ_HOST", "localhost")
	viper.SetDefault("RABBITMQ_PORT", 5672)
	viper.SetDefault("RABBITMQ_USER", "guest")
	viper.SetDefault("RABBITMQ_PASSWORD", "guest")
	viper.SetDefault("RABBITMQ_EMAIL_QUEUE", "atelier.emails")
	viper.SetDefault("RABBITMQ_RUN_CONSUMER", true)

	shutdownTimeout, err := time.ParseDuration(viper.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	mailTimeout, err := time.ParseDuration(viper.GetString("MAIL_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing MAIL_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Order: OrderConfig{
			MaxRetryAttempts: viper.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
		},
		Mail: MailConfig{
			Transport: viper.GetString("MAIL_TRANSPORT"),
			APIURL:    viper.GetString("MAIL_API_URL"),
			APIKey:    viper.GetString("MAIL_API_KEY"),
			From:      viper.GetString("MAIL_FROM"),
			Timeout:   mailTimeout,
		},
		RabbitMQ: RabbitMQConfig{
			Host:        viper.GetString("RABBITMQ_HOST"),
			Port:        viper.GetInt("RABBITMQ_PORT"),
			User:        viper.GetString("RABBITMQ_USER"),
			Password:    viper.GetString("RABBITMQ_PASSWORD"),
			EmailQueue:  viper.GetString("RABBITMQ_EMAIL_QUEUE"),
			RunConsumer: viper.GetBool("RABBITMQ_RUN_CONSUMER"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mail.Transport {
	case MailTransportQueue, MailTransportHTTP:
		if c.Mail.APIURL == "" && (c.Mail.Transport == MailTransportHTTP || c.RabbitMQ.RunConsumer) {
			return fmt.Errorf("MAIL_API_URL is required for mail transport %q", c.Mail.Transport)
		}
	case MailTransportLog:
	default:
		return fmt.Errorf("unknown mail transport %q", c.Mail.Transport)
	}

	if c.Order.MaxRetryAttempts < 1 {
		return fmt.Errorf("ORDER_MAX_RETRY_ATTEMPTS must be at least 1, got %d", c.Order.MaxRetryAttempts)
	}

	return nil
}
