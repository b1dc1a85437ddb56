// Package links builds the public signup URLs embedded in referral codes
// and customer-rank QR images. The base URL is the one piece of
// environment-dependent configuration the module persists into documents,
// which is why rank links can be bulk-regenerated when it changes.
package links

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
}

type Builder struct {
	baseURL string
}

func New(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// FromEnv reads APP_BASE_URL, defaulting to a local dev address.
func FromEnv() (*Builder, error) {
	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return New(cfg.AppBaseURL), nil
}

// AppURL returns the configured base URL without a trailing slash.
func (b *Builder) AppURL() string {
	return b.baseURL
}

// ReferralLink builds the shareable URL for a referral code:
// <base>/signup?ref=<code>.
func (b *Builder) ReferralLink(code string) string {
	return fmt.Sprintf("%s/signup?ref=%s", b.baseURL, url.QueryEscape(code))
}

// SignupLink builds the URL a rank's QR code encodes:
// <base>/signup?business=<businessReferenceCode>&rank=<rankName>.
func (b *Builder) SignupLink(businessReferenceCode, rankName string) string {
	return fmt.Sprintf("%s/signup?business=%s&rank=%s",
		b.baseURL, url.QueryEscape(businessReferenceCode), url.QueryEscape(rankName))
}
