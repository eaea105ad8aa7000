package openai

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default per-request timeout, body read included.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "openai-tools-go/1.0"
)

// Client is the OpenAI API client. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	// Chat provides chat completion operations.
	Chat *ChatService

	// Responses provides operations on the Responses API.
	Responses *ResponsesService

	// Embeddings provides embedding operations.
	Embeddings *EmbeddingsService

	// Files provides file management operations.
	Files *FilesService

	// Batches provides batch job operations.
	Batches *BatchesService

	// FineTuning provides fine-tuning job operations.
	FineTuning *FineTuningService

	// Moderations provides content moderation.
	Moderations *ModerationsService

	// Images provides image generation, edits and variations.
	Images *ImagesService

	// Audio provides speech synthesis, transcription and translation.
	Audio *AudioService

	// Models provides the model catalog.
	Models *ModelsService

	// Conversations provides server-side conversation state.
	Conversations *ConversationsService

	config *clientConfig
	http   *httpClient
}

// clientConfig holds the client configuration.
type clientConfig struct {
	auth       *AuthProvider
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
	limiter    *rate.Limiter
	registerer prometheus.Registerer
}

// Option is a function that configures the client.
type Option func(*clientConfig)

// WithAuth replaces the auth provider passed to NewClient.
func WithAuth(auth *AuthProvider) Option {
	return func(c *clientConfig) {
		c.auth = auth
	}
}

// WithHTTPClient sets a custom HTTP client. Its Timeout is left untouched.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithRateLimiter paces outgoing requests. Each request waits on the
// limiter using the caller's context; nothing is retried.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *clientConfig) {
		c.limiter = limiter
	}
}

// WithMetrics registers request metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registerer = reg
	}
}

// NewClient creates a new client for the given provider.
//
// Example:
//
//	auth, err := openai.FromEnv()
//	if err != nil {
//	    return err
//	}
//	client := openai.NewClient(auth, openai.WithTimeout(2*time.Minute))
func NewClient(auth *AuthProvider, opts ...Option) *Client {
	cfg := &clientConfig{
		auth:      auth,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	c := &Client{
		config: cfg,
		http:   newHTTPClient(cfg),
	}

	c.Chat = newChatService(c)
	c.Responses = newResponsesService(c)
	c.Embeddings = newEmbeddingsService(c)
	c.Files = newFilesService(c)
	c.Batches = newBatchesService(c)
	c.FineTuning = newFineTuningService(c)
	c.Moderations = newModerationsService(c)
	c.Images = newImagesService(c)
	c.Audio = newAudioService(c)
	c.Models = newModelsService(c)
	c.Conversations = newConversationsService(c)

	return c
}

// Auth returns the configured auth provider.
func (c *Client) Auth() *AuthProvider {
	return c.config.auth
}

// Logger returns the client logger.
func (c *Client) Logger() *zap.Logger {
	return c.config.logger
}
