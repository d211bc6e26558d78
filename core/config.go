package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultChannelName                = "square_in_app_payments"
	DefaultLoadPaymentDataRequestCode = 4111
	DefaultNonceFailureThreshold      = 5
	DefaultNonceBreakerTimeout        = 30 * time.Second
)

type GooglePayConfig struct {
	LoadPaymentDataRequestCode int `koanf:"load_payment_data_request_code" mapstructure:"load_payment_data_request_code"`
	// NonceFailureThreshold consecutive nonce exchange failures open the
	// breaker for NonceBreakerTimeout.
	NonceFailureThreshold int           `koanf:"nonce_failure_threshold" mapstructure:"nonce_failure_threshold"`
	NonceBreakerTimeout   time.Duration `koanf:"nonce_breaker_timeout" mapstructure:"nonce_breaker_timeout"`
}

type Config struct {
	ChannelName string          `koanf:"channel_name" mapstructure:"channel_name"`
	GooglePay   GooglePayConfig `koanf:"google_pay" mapstructure:"google_pay"`
}

func DefaultConfig() Config {
	return Config{
		ChannelName: DefaultChannelName,
		GooglePay: GooglePayConfig{
			LoadPaymentDataRequestCode: DefaultLoadPaymentDataRequestCode,
			NonceFailureThreshold:      DefaultNonceFailureThreshold,
			NonceBreakerTimeout:        DefaultNonceBreakerTimeout,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ChannelName) == "" {
		return fmt.Errorf("core: channel_name is required")
	}
	if c.GooglePay.LoadPaymentDataRequestCode <= 0 {
		return fmt.Errorf("core: google_pay.load_payment_data_request_code must be positive")
	}
	if c.GooglePay.NonceFailureThreshold <= 0 {
		return fmt.Errorf("core: google_pay.nonce_failure_threshold must be positive")
	}
	if c.GooglePay.NonceBreakerTimeout <= 0 {
		return fmt.Errorf("core: google_pay.nonce_breaker_timeout must be positive")
	}
	return nil
}
