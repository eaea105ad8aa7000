package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

const (
	DefaultBaseDir    = ".openai-tools"
	DefaultConfigFile = "config.yaml"
)

// Provider names accepted in Context.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Config is the kubectl-style context file of one CLI app.
type Config struct {
	CurrentContext string              `yaml:"current_context,omitempty"`
	Contexts       map[string]*Context `yaml:"contexts,omitempty"`

	path string
}

// Context is one named endpoint with its credentials.
type Context struct {
	Name string `yaml:"name"`

	// Provider is "openai" (the default) or "azure".
	Provider string `yaml:"provider,omitempty"`

	// APIKey is the API key, or the Entra ID token when EntraID is set.
	// ${VAR} references are expanded from the environment when the
	// context is used, so the file need not hold the secret itself.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL is the API base URL. For Azure it is the full deployment URL
	// including api-version.
	BaseURL string `yaml:"base_url,omitempty"`

	// EntraID sends APIKey to Azure as a bearer token.
	EntraID bool `yaml:"entra_id,omitempty"`

	// Timeout is the request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	Extra map[string]string `yaml:"extra,omitempty"`
}

// LoadConfig reads the config file of appName under ~/.openai-tools.
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath reads the config at path, or at the app's default
// location when path is empty. A missing file yields an empty config; it is
// created by the first Save.
func LoadConfigWithPath(appName, path string) (*Config, error) {
	if path == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = paths.ConfigFile()
	}
	cfg := &Config{Contexts: make(map[string]*Context), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			return nil, fmt.Errorf("parse config %s: context %q is empty", path, name)
		}
		ctx.Name = name
	}
	return cfg, nil
}

// Save writes the config with owner-only permissions.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeFileAtomic(c.path, data, 0o600)
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// SetContext validates ctx, stores it under name and saves.
func (c *Config) SetContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is empty")
	}
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("context %q: %w", name, err)
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	return c.Save()
}

// DeleteContext removes a context, clearing the current selection if it
// pointed there.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext selects the current context.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// Context returns the named context.
func (c *Config) Context(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// Resolve returns the named context, or the current one when name is
// empty. It returns nil and no error when nothing is selected, leaving the
// caller to fall back to the environment.
func (c *Config) Resolve(name string) (*Context, error) {
	if name == "" {
		name = c.CurrentContext
	}
	if name == "" {
		return nil, nil
	}
	return c.Context(name)
}

// Names returns the context names in sorted order.
func (c *Config) Names() []string {
	return slices.Sorted(maps.Keys(c.Contexts))
}

// DefaultModel returns the context's default model, if any.
func (ctx *Context) DefaultModel() string {
	return ctx.Extra["default_model"]
}

// SetDefaultModel records the model used when a command gets no --model.
func (ctx *Context) SetDefaultModel(model string) {
	if model == "" {
		delete(ctx.Extra, "default_model")
		return
	}
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra["default_model"] = model
}

// ProviderName returns Provider with the empty default spelled out.
func (ctx *Context) ProviderName() string {
	if ctx.Provider == "" {
		return ProviderOpenAI
	}
	return ctx.Provider
}

// Validate checks the provider name and that an Azure context has a base
// URL.
func (ctx *Context) Validate() error {
	switch ctx.ProviderName() {
	case ProviderOpenAI:
		if ctx.EntraID {
			return fmt.Errorf("entra_id is only valid for provider %q", ProviderAzure)
		}
	case ProviderAzure:
		if ctx.BaseURL == "" {
			return fmt.Errorf("provider %q requires base_url", ProviderAzure)
		}
	default:
		return fmt.Errorf("unknown provider %q", ctx.Provider)
	}
	return nil
}

// AuthProvider builds the openai auth provider described by the context.
func (ctx *Context) AuthProvider() (*openai.AuthProvider, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	key := os.ExpandEnv(ctx.APIKey)
	if key == "" {
		return nil, fmt.Errorf("context %q has no api_key", ctx.Name)
	}
	switch {
	case ctx.Provider == ProviderAzure && ctx.EntraID:
		return openai.NewAzureEntraAuth(key, ctx.BaseURL), nil
	case ctx.Provider == ProviderAzure:
		return openai.NewAzureAuth(key, ctx.BaseURL), nil
	default:
		return openai.NewOpenAIAuth(key, ctx.BaseURL), nil
	}
}

// TimeoutDuration returns Timeout as a duration, or def when unset.
func (ctx *Context) TimeoutDuration(def time.Duration) time.Duration {
	if ctx.Timeout <= 0 {
		return def
	}
	return time.Duration(ctx.Timeout) * time.Second
}

// MaskedAPIKey returns the key with all but its first and last four
// characters hidden. Environment references are shown as written.
func (ctx *Context) MaskedAPIKey() string {
	key := ctx.APIKey
	if strings.HasPrefix(key, "$") {
		return key
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
