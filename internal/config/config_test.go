package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "atelier", cfg.Database.Name)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 3, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, MailTransportLog, cfg.Mail.Transport)
	assert.Equal(t, "atelier.emails", cfg.RabbitMQ.EmailQueue)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ORDER_MAX_RETRY_ATTEMPTS", "5")
	t.Setenv("MAIL_TRANSPORT", "http")
	t.Setenv("MAIL_API_URL", "https://mail.example.com/send")
	t.Setenv("MAIL_TIMEOUT", "3s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Order.MaxRetryAttempts)
	assert.Equal(t, MailTransportHTTP, cfg.Mail.Transport)
	assert.Equal(t, "https://mail.example.com/send", cfg.Mail.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Mail.Timeout)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("MAIL_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_TIMEOUT")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Order:    OrderConfig{MaxRetryAttempts: 3},
			Mail:     MailConfig{Transport: MailTransportLog},
			RabbitMQ: RabbitMQConfig{RunConsumer: true},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "log transport", mutate: func(*Config) {}},
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Mail.Transport = "pigeon" },
			wantErr: `unknown mail transport "pigeon"`,
		},
		{
			name:    "http without api url",
			mutate:  func(c *Config) { c.Mail.Transport = MailTransportHTTP },
			wantErr: "MAIL_API_URL is required",
		},
		{
			name:    "queue with consumer needs api url",
			mutate:  func(c *Config) { c.Mail.Transport = MailTransportQueue },
			wantErr: "MAIL_API_URL is required",
		},
		{
			name: "queue without consumer",
			mutate: func(c *Config) {
				c.Mail.Transport = MailTransportQueue
				c.RabbitMQ.RunConsumer = false
			},
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.Order.MaxRetryAttempts = 0 },
			wantErr: "ORDER_MAX_RETRY_ATTEMPTS must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRabbitMQConfig_URL(t *testing.T) {
	c := RabbitMQConfig{Host: "mq", Port: 5672, User: "u", Password: "p"}

	assert.Equal(t, "amqp://u:p@mq:5672/", c.URL())
}
