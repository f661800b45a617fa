package push

import (
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap/zapcore"
)

type Params struct {
	Secret         string ``
	URL            string ``
	PushgatewayURL string ``
	DryRun         bool   `default:"false"`
	Debug          bool   `default:"false"`
}

var (
	ErrBadConfig     = errors.New("bad config")
	ErrMissingSecret = fmt.Errorf("%w: WEBHOOK_SECRET not set", ErrBadConfig)
	ErrMissingURL    = fmt.Errorf("%w: WEBHOOK_URL not set", ErrBadConfig)
	ErrBadURL        = fmt.Errorf("%w: bad url", ErrBadConfig)
)

func (p *Params) IsValid() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}

	if p.URL == "" {
		return ErrMissingURL
	}

	if err := validURL(p.URL); err != nil {
		return err
	}

	if p.PushgatewayURL != "" {
		if err := validURL(p.PushgatewayURL); err != nil {
			return err
		}
	}

	return nil
}

func validURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrBadURL, raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w %q: unsupported scheme", ErrBadURL, raw)
	}

	if u.Host == "" {
		return fmt.Errorf("%w %q: no host", ErrBadURL, raw)
	}

	return nil
}

// MarshalLogObject keeps the secret out of the logs.
func (p Params) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	secret := ""
	if p.Secret != "" {
		secret = "[REDACTED]"
	}

	enc.AddString("secret", secret)
	enc.AddString("url", p.URL)
	enc.AddString("pushgatewayURL", p.PushgatewayURL)
	enc.AddBool("dryRun", p.DryRun)
	enc.AddBool("debug", p.Debug)

	return nil
}
