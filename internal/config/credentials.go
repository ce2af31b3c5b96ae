package config

import (
	"net/http"
	"strings"

	"github.com/atlanticdynamic/deployhq-mcp/internal/deployhq"
)

// Environment variables holding API credentials.
const (
	EnvEmail   = "DEPLOYHQ_EMAIL"
	EnvAPIKey  = "DEPLOYHQ_API_KEY"
	EnvAccount = "DEPLOYHQ_ACCOUNT"
)

// Request headers carrying API credentials on the HTTP transports.
const (
	HeaderEmail   = "X-DeployHQ-Email"
	HeaderAPIKey  = "X-DeployHQ-API-Key"
	HeaderAccount = "X-DeployHQ-Account"
)

// CredentialHeaders lists the credential headers in the order they are
// reported to clients.
var CredentialHeaders = []string{HeaderEmail, HeaderAPIKey, HeaderAccount}

// CredentialsFromEnv reads credentials through lookup, usually os.LookupEnv.
func CredentialsFromEnv(lookup func(string) (string, bool)) deployhq.Credentials {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	return deployhq.Credentials{
		Email:   get(EnvEmail),
		APIKey:  get(EnvAPIKey),
		Account: get(EnvAccount),
	}
}

// CredentialsFromHeaders reads credentials from request headers. Each field
// that is absent from the headers falls back to the same field of fallback.
func CredentialsFromHeaders(h http.Header, fallback deployhq.Credentials) deployhq.Credentials {
	pick := func(header, alt string) string {
		if v := strings.TrimSpace(h.Get(header)); v != "" {
			return v
		}
		return alt
	}
	return deployhq.Credentials{
		Email:   pick(HeaderEmail, fallback.Email),
		APIKey:  pick(HeaderAPIKey, fallback.APIKey),
		Account: pick(HeaderAccount, fallback.Account),
	}
}
