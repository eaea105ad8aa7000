package openai

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// DefaultBaseURL is the OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultRealtimeURL is the OpenAI realtime WebSocket endpoint.
const DefaultRealtimeURL = "wss://api.openai.com/v1/realtime"

// azureHostSuffix identifies Azure OpenAI resource hosts.
const azureHostSuffix = ".openai.azure.com"

// Provider identifies which service an AuthProvider targets.
type Provider int

const (
	// ProviderOpenAI is OpenAI proper or any OpenAI-compatible endpoint.
	ProviderOpenAI Provider = iota
	// ProviderAzure is Azure OpenAI Service.
	ProviderAzure
)

func (p Provider) String() string {
	if p == ProviderAzure {
		return "azure"
	}
	return "openai"
}

// AuthProvider resolves endpoint URLs and authentication headers for one
// provider. It is immutable after construction and safe for concurrent use.
//
// For OpenAI the base URL is joined with each operation path. For Azure the
// base URL is the complete per-deployment URL, api-version included, and is
// returned unchanged for every path.
type AuthProvider struct {
	provider Provider
	apiKey   string
	baseURL  string

	// entraID switches Azure to "Authorization: Bearer" instead of "api-key".
	entraID bool
}

// NewOpenAIAuth returns an OpenAI provider. An empty baseURL selects
// DefaultBaseURL.
func NewOpenAIAuth(apiKey, baseURL string) *AuthProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &AuthProvider{provider: ProviderOpenAI, apiKey: apiKey, baseURL: baseURL}
}

// NewAzureAuth returns an Azure provider authenticating with an api-key.
// baseURL must be the full deployment endpoint including api-version.
func NewAzureAuth(apiKey, baseURL string) *AuthProvider {
	return &AuthProvider{provider: ProviderAzure, apiKey: apiKey, baseURL: baseURL}
}

// NewAzureEntraAuth returns an Azure provider authenticating with an
// Entra ID bearer token.
func NewAzureEntraAuth(token, baseURL string) *AuthProvider {
	return &AuthProvider{provider: ProviderAzure, apiKey: token, baseURL: baseURL, entraID: true}
}

// FromURL picks the provider from the URL host: hosts under
// *.openai.azure.com are Azure, everything else is OpenAI-compatible.
func FromURL(rawURL, apiKey string) (*AuthProvider, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, configErrorf("parse base url %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return nil, configErrorf("base url %q has no host", rawURL)
	}
	if IsAzureHost(u.Hostname()) {
		return NewAzureAuth(apiKey, rawURL), nil
	}
	return NewOpenAIAuth(apiKey, rawURL), nil
}

// IsAzureHost reports whether host belongs to Azure OpenAI.
func IsAzureHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), azureHostSuffix)
}

// Provider returns the provider variant.
func (a *AuthProvider) Provider() Provider { return a.provider }

// APIKey returns the configured key or token.
func (a *AuthProvider) APIKey() string { return a.apiKey }

// BaseURL returns the configured base URL.
func (a *AuthProvider) BaseURL() string { return a.baseURL }

// IsEntraID reports whether Azure authenticates with a bearer token.
func (a *AuthProvider) IsEntraID() bool { return a.entraID }

// Endpoint returns the URL for a logical operation path such as
// "chat/completions". It never performs I/O.
func (a *AuthProvider) Endpoint(path string) string {
	if a.provider == ProviderAzure {
		return a.baseURL
	}
	return joinURL(a.baseURL, path)
}

// ApplyHeaders writes the authentication header for the provider: either
// Authorization or api-key, never both. It fails only when the key contains
// bytes that are illegal in a header value.
func (a *AuthProvider) ApplyHeaders(h http.Header) error {
	if a.provider == ProviderAzure && !a.entraID {
		if !httpguts.ValidHeaderFieldValue(a.apiKey) {
			return configErrorf("api key contains characters not allowed in a header")
		}
		h.Del("Authorization")
		h.Set("api-key", a.apiKey)
		return nil
	}
	v := "Bearer " + a.apiKey
	if !httpguts.ValidHeaderFieldValue(v) {
		return configErrorf("api key contains characters not allowed in a header")
	}
	h.Del("api-key")
	h.Set("Authorization", v)
	return nil
}

// RealtimeURL returns the WebSocket URL for a realtime session.
func (a *AuthProvider) RealtimeURL(model string) string {
	if a.provider == ProviderAzure {
		return toWebSocketScheme(a.baseURL)
	}
	base := DefaultRealtimeURL
	if strings.TrimRight(a.baseURL, "/") != DefaultBaseURL {
		base = joinURL(toWebSocketScheme(a.baseURL), "realtime")
	}
	return base + "?model=" + url.QueryEscape(model)
}

// validate checks the key before a request is built.
func (a *AuthProvider) validate() error {
	if a == nil {
		return configErrorf("no auth provider configured")
	}
	if a.apiKey == "" {
		return configErrorf("%s api key is empty", a.provider)
	}
	if a.baseURL == "" {
		return configErrorf("%s base url is empty", a.provider)
	}
	return nil
}

// joinURL joins base and path with exactly one slash between them.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func toWebSocketScheme(u string) string {
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	default:
		return u
	}
}
