package config

import (
	"fmt"
	"os"
)

const (
	defaultAPIURL   = "https://api.zenmoney.ru/v8/diff/"
	defaultCurrency = "RUB"
)

// Config holds process-wide settings. It is loaded once in main and passed
// explicitly into the components that need it.
type Config struct {
	// Token is the ZenMoney OAuth access token.
	Token string
	// APIURL is the diff API endpoint.
	APIURL string
	// Currency is the reporting currency assumed when a statement omits one.
	Currency string
}

// Load reads configuration from the environment. The token may be empty
// here; callers that need it pass an override (the --token flag) first.
func Load(tokenOverride string) (*Config, error) {
	token := tokenOverride
	if token == "" {
		token = os.Getenv("ZEN_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("ZenMoney token is not set: pass --token, set ZEN_TOKEN, or add ZEN_TOKEN to .env")
	}

	apiURL := os.Getenv("ZEN_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	currency := os.Getenv("ZEN_CURRENCY")
	if currency == "" {
		currency = defaultCurrency
	}

	return &Config{
		Token:    token,
		APIURL:   apiURL,
		Currency: currency,
	}, nil
}
