package oauth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ORCID production endpoints.
const (
	DefaultAuthURL  = "https://orcid.org/oauth/authorize"
	DefaultTokenURL = "https://orcid.org/oauth/token"
)

// Config describes the ORCID OAuth client.
type Config struct {
	ClientID     string        `env:"SCHOLARFLOW_ORCID_CLIENT_ID"`
	ClientSecret string        `env:"SCHOLARFLOW_ORCID_CLIENT_SECRET"`
	RedirectURL  string        `env:"SCHOLARFLOW_ORCID_REDIRECT_URL"`
	AuthURL      string        `env:"SCHOLARFLOW_ORCID_AUTH_URL"  envDefault:"https://orcid.org/oauth/authorize"`
	TokenURL     string        `env:"SCHOLARFLOW_ORCID_TOKEN_URL" envDefault:"https://orcid.org/oauth/token"`
	Scopes       []string      `env:"SCHOLARFLOW_ORCID_SCOPES"    envDefault:"/authenticate,/read-limited" envSeparator:","`
	StateTTL     time.Duration `env:"SCHOLARFLOW_ORCID_STATE_TTL" envDefault:"10m"`
}

// Enabled reports whether client credentials are configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.AuthURL) == "" {
		c.AuthURL = DefaultAuthURL
	}
	if strings.TrimSpace(c.TokenURL) == "" {
		c.TokenURL = DefaultTokenURL
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"/authenticate", "/read-limited"}
	}
	if c.StateTTL <= 0 {
		c.StateTTL = 10 * time.Minute
	}
	return c
}

func (c Config) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     strings.TrimSpace(c.ClientID),
		ClientSecret: strings.TrimSpace(c.ClientSecret),
		RedirectURL:  strings.TrimSpace(c.RedirectURL),
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
