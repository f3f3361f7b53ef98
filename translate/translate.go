// Package translate implements the client for the external translation
// service: one HTTP GET per text with `q` and `langpair=SRC|TGT` query
// parameters, answered by a JSON body carrying
// responseData.translatedText.
//
// The contract is single-provider. Provider is the extension point for
// wiring additional services, and Chain tries providers in order; the
// built-in Client is the only provider shipped.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eneno295/multilang-tools/langcode"
)

// DefaultEndpoint is the public translation service URL.
const DefaultEndpoint = "https://api.mymemory.translated.net/get"

// DefaultTimeout bounds one request.
const DefaultTimeout = 15 * time.Second

// defaultRetries is how many times a transport error or 5xx is retried.
const defaultRetries = 2

// sentinelErrors are substrings the service returns inside a 200 body
// when it rejects the input; a body containing one is a failure, not a
// translation.
var sentinelErrors = []string{"INVALID TARGET LANGUAGE", "LANGPAIR="}

// ErrEmptyResult is returned when the service answers with no usable
// translated text.
var ErrEmptyResult = errors.New("translation service returned an empty result")

// Provider translates one text between two languages. Implementations
// must be safe for sequential reuse; batch callers invoke Translate
// once per key and treat each failure independently.
type Provider interface {
	// Name identifies the service in logs and results.
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ---------------------------------------------------------------------------
// Built-in HTTP provider
// ---------------------------------------------------------------------------

// Client is the built-in Provider speaking the GET q/langpair protocol.
type Client struct {
	endpoint string
	hc       *http.Client
	log      zerolog.Logger
	retries  int
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the service URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// WithProxy routes requests through the given HTTP/HTTPS proxy URL.
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		parsed, err := url.Parse(proxyURL)
		if err != nil || proxyURL == "" {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(parsed)
		c.hc.Transport = transport
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRetries sets how many times transient failures are retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// NewClient builds a Client for the public service, honoring
// HTTP_PROXY/HTTPS_PROXY from the environment unless WithProxy is given.
func NewClient(opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	c := &Client{
		endpoint: DefaultEndpoint,
		hc:       &http.Client{Transport: transport, Timeout: DefaultTimeout},
		log:      zerolog.Nop(),
		retries:  defaultRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Provider.
func (c *Client) Name() string { return "mymemory" }

// response is the service's JSON body shape; only the translated text
// is consumed.
type response struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.Number `json:"responseStatus"`
}

// Translate implements Provider. Language codes are normalized to the
// service's expected form before building the langpair.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	langpair := langcode.Normalize(sourceLang) + "|" + langcode.Normalize(targetLang)

	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", langpair)
	endpoint := c.endpoint + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		translated, retryable, err := c.once(ctx, endpoint, langpair)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		if !retryable || attempt == c.retries {
			break
		}

		wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		c.log.Warn().Err(err).Str("langpair", langpair).Dur("wait", wait).Msg("translation request failed, retrying")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

// once performs a single request. The bool result reports whether the
// failure is worth retrying: transport errors, 429 and 5xx answers are,
// sentinel rejections are not.
func (c *Client) once(ctx context.Context, endpoint, langpair string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("translation request failed: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("translation service returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("decoding translation response: %w", err)
	}

	translated := parsed.ResponseData.TranslatedText
	upper := strings.ToUpper(translated)
	for _, sentinel := range sentinelErrors {
		if strings.Contains(upper, sentinel) {
			return "", false, fmt.Errorf("translation rejected for langpair %s: %s", langpair, truncate(translated, 200))
		}
	}
	if strings.TrimSpace(translated) == "" {
		return "", false, ErrEmptyResult
	}

	c.log.Debug().Str("langpair", langpair).Msg("translated")
	return translated, false, nil
}

// ---------------------------------------------------------------------------
// Provider chaining
// ---------------------------------------------------------------------------

// Chain tries each provider in order and returns the first success.
// With a single element it behaves exactly like that provider, which is
// the shipped configuration.
type Chain []Provider

// Name implements Provider.
func (ch Chain) Name() string {
	names := make([]string, len(ch))
	for i, p := range ch {
		names[i] = p.Name()
	}
	return strings.Join(names, ",")
}

// Translate implements Provider.
func (ch Chain) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if len(ch) == 0 {
		return "", errors.New("no translation providers configured")
	}
	var lastErr error
	for _, p := range ch {
		translated, err := p.Translate(ctx, text, sourceLang, targetLang)
		if err == nil {
			return translated, nil
		}
		lastErr = fmt.Errorf("%s: %w", p.Name(), err)
	}
	return "", lastErr
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
