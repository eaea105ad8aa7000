package openai

import (
	"net/http"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name string
		auth *AuthProvider
		path string
		want string
	}{
		{"default base", NewOpenAIAuth("k", ""), "chat/completions", "https://api.openai.com/v1/chat/completions"},
		{"trailing slash", NewOpenAIAuth("k", "http://localhost:8080/v1/"), "/models", "http://localhost:8080/v1/models"},
		{
			"azure ignores path",
			NewAzureAuth("k", "https://r.openai.azure.com/openai/deployments/te/embeddings?api-version=2024-08-01-preview"),
			"embeddings",
			"https://r.openai.azure.com/openai/deployments/te/embeddings?api-version=2024-08-01-preview",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.auth.Endpoint(tt.path); got != tt.want {
				t.Errorf("Endpoint(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestEndpointSingleSlash(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		host := rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "host")
		seg := rapid.StringMatching(`[a-z]{1,10}(/[a-z]{1,10}){0,2}`).Draw(t, "path")
		trailing := strings.Repeat("/", rapid.IntRange(0, 3).Draw(t, "trailing"))
		leading := strings.Repeat("/", rapid.IntRange(0, 3).Draw(t, "leading"))

		auth := NewOpenAIAuth("k", "https://"+host+"/v1"+trailing)
		got := auth.Endpoint(leading + seg)
		want := "https://" + host + "/v1/" + seg
		if got != want {
			t.Fatalf("Endpoint = %q, want %q", got, want)
		}
	})
}

func TestAzureEndpointIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := "https://" + rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "res") +
			".openai.azure.com/openai/deployments/" + rapid.StringMatching(`[a-z0-9-]{1,12}`).Draw(t, "dep") +
			"/chat/completions?api-version=2024-10-21"
		auth := NewAzureAuth("k", base)
		path := rapid.String().Draw(t, "path")
		if got := auth.Endpoint(path); got != base {
			t.Fatalf("Endpoint(%q) = %q, want %q", path, got, base)
		}
	})
}

func TestApplyHeaders(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthProvider
		header string
		value  string
		absent string
	}{
		{"openai", NewOpenAIAuth("sk-test", ""), "Authorization", "Bearer sk-test", "api-key"},
		{"azure key", NewAzureAuth("azkey", "https://r.openai.azure.com/x"), "api-key", "azkey", "Authorization"},
		{"azure entra", NewAzureEntraAuth("tok", "https://r.openai.azure.com/x"), "Authorization", "Bearer tok", "api-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("Authorization", "stale")
			h.Set("api-key", "stale")
			if err := tt.auth.ApplyHeaders(h); err != nil {
				t.Fatalf("ApplyHeaders: %v", err)
			}
			if got := h.Get(tt.header); got != tt.value {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.value)
			}
			if got := h.Get(tt.absent); got != "" {
				t.Errorf("%s = %q, want absent", tt.absent, got)
			}
		})
	}
}

func TestApplyHeadersIdempotentAndExclusive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringMatching(`[A-Za-z0-9_-]{1,40}`).Draw(t, "key")
		var auth *AuthProvider
		switch rapid.IntRange(0, 2).Draw(t, "variant") {
		case 0:
			auth = NewOpenAIAuth(key, "")
		case 1:
			auth = NewAzureAuth(key, "https://r.openai.azure.com/x")
		default:
			auth = NewAzureEntraAuth(key, "https://r.openai.azure.com/x")
		}

		h := http.Header{}
		if err := auth.ApplyHeaders(h); err != nil {
			t.Fatalf("ApplyHeaders: %v", err)
		}
		first := h.Clone()
		if err := auth.ApplyHeaders(h); err != nil {
			t.Fatalf("ApplyHeaders: %v", err)
		}
		for _, name := range []string{"Authorization", "api-key"} {
			if first.Get(name) != h.Get(name) {
				t.Fatalf("%s changed: %q -> %q", name, first.Get(name), h.Get(name))
			}
		}
		hasBearer, hasKey := h.Get("Authorization") != "", h.Get("api-key") != ""
		if hasBearer == hasKey {
			t.Fatalf("Authorization set = %v, api-key set = %v; want exactly one", hasBearer, hasKey)
		}
	})
}

func TestApplyHeadersRejectsControlBytes(t *testing.T) {
	err := NewOpenAIAuth("bad\nkey", "").ApplyHeaders(http.Header{})
	if KindOf(err) != KindConfig {
		t.Errorf("KindOf = %v, want config", KindOf(err))
	}
}

func TestFromURL(t *testing.T) {
	auth, err := FromURL("https://myres.openai.azure.com/openai/deployments/gpt/chat/completions?api-version=2024-10-21", "k")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if auth.Provider() != ProviderAzure {
		t.Errorf("Provider = %v, want azure", auth.Provider())
	}

	auth, err = FromURL("http://localhost:11434/v1", "k")
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if auth.Provider() != ProviderOpenAI {
		t.Errorf("Provider = %v, want openai", auth.Provider())
	}

	if _, err := FromURL("not a url", "k"); KindOf(err) != KindConfig {
		t.Errorf("KindOf = %v, want config", KindOf(err))
	}
}

func TestRealtimeURL(t *testing.T) {
	tests := []struct {
		name string
		auth *AuthProvider
		want string
	}{
		{"default", NewOpenAIAuth("k", ""), "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview"},
		{"custom", NewOpenAIAuth("k", "http://localhost:8080/v1"), "ws://localhost:8080/v1/realtime?model=gpt-4o-realtime-preview"},
		{
			"azure",
			NewAzureAuth("k", "https://r.openai.azure.com/openai/realtime?api-version=2024-10-01-preview&deployment=rt"),
			"wss://r.openai.azure.com/openai/realtime?api-version=2024-10-01-preview&deployment=rt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.auth.RealtimeURL(ModelRealtimePreview); got != tt.want {
				t.Errorf("RealtimeURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	var nilAuth *AuthProvider
	for name, auth := range map[string]*AuthProvider{
		"nil":       nilAuth,
		"empty key": NewOpenAIAuth("", ""),
		"no base":   NewAzureAuth("k", ""),
	} {
		if err := auth.validate(); KindOf(err) != KindConfig {
			t.Errorf("%s: KindOf = %v, want config", name, KindOf(err))
		}
	}
}
