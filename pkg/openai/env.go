package openai

import (
	"errors"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Env holds the environment variables recognised by this package.
type Env struct {
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`

	AzureAPIKey  string `env:"AZURE_OPENAI_API_KEY"`
	AzureBaseURL string `env:"AZURE_OPENAI_BASE_URL"`
	// AzureToken is an Entra ID bearer token, used when AzureAPIKey is empty.
	AzureToken string `env:"AZURE_OPENAI_TOKEN"`
}

// LoadEnv loads .env from the working directory when present and then
// reads the process environment. A missing .env file is not an error.
func LoadEnv() (*Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, configErrorf("load .env: %v", err)
	}
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, configErrorf("read environment: %v", err)
	}
	return &env, nil
}

// UsesAzure reports whether Azure credentials are present.
func (e *Env) UsesAzure() bool {
	return e.AzureAPIKey != "" || e.AzureToken != ""
}

// OpenAIFromEnv builds an OpenAI provider from OPENAI_API_KEY and the
// optional OPENAI_BASE_URL.
func OpenAIFromEnv() (*AuthProvider, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return env.OpenAI()
}

// AzureFromEnv builds an Azure provider from AZURE_OPENAI_API_KEY (or
// AZURE_OPENAI_TOKEN) and AZURE_OPENAI_BASE_URL.
func AzureFromEnv() (*AuthProvider, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return env.Azure()
}

// FromEnv picks Azure when Azure credentials are set, otherwise OpenAI.
func FromEnv() (*AuthProvider, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if env.UsesAzure() {
		return env.Azure()
	}
	return env.OpenAI()
}

// OpenAI returns the OpenAI provider described by e.
func (e *Env) OpenAI() (*AuthProvider, error) {
	if e.OpenAIAPIKey == "" {
		return nil, configErrorf("OPENAI_API_KEY is not set")
	}
	return NewOpenAIAuth(e.OpenAIAPIKey, e.OpenAIBaseURL), nil
}

// Azure returns the Azure provider described by e.
func (e *Env) Azure() (*AuthProvider, error) {
	if e.AzureBaseURL == "" {
		return nil, configErrorf("AZURE_OPENAI_BASE_URL is not set")
	}
	switch {
	case e.AzureAPIKey != "":
		return NewAzureAuth(e.AzureAPIKey, e.AzureBaseURL), nil
	case e.AzureToken != "":
		return NewAzureEntraAuth(e.AzureToken, e.AzureBaseURL), nil
	default:
		return nil, configErrorf("AZURE_OPENAI_API_KEY is not set")
	}
}
