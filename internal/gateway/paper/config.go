package paper

import (
	"strings"
	"time"
)

const (
	defaultAuthURL = "https://cognito-idp.ap-northeast-1.amazonaws.com/"
	defaultBaseURL = "https://fingam.ai/paper"
)

// Config describes how to reach the paper-trading API and its identity
// provider.
type Config struct {
	AuthURL            string
	ClientID           string
	Username           string
	Password           string
	APIKey             string
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

func (c *Config) withDefaults() Config {
	out := *c
	out.AuthURL = strings.TrimSpace(out.AuthURL)
	if out.AuthURL == "" {
		out.AuthURL = defaultAuthURL
	}
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = defaultBaseURL
	}
	if out.Timeout <= 0 {
		out.Timeout = 15 * time.Second
	}
	out.ClientID = strings.TrimSpace(out.ClientID)
	out.Username = strings.TrimSpace(out.Username)
	out.APIKey = strings.TrimSpace(out.APIKey)
	return out
}
