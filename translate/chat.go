package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// temperature keeps chat replies close to a literal translation.
const temperature = 0.3

// ---------------------------------------------------------------------------
// Shared rate-limit pause
// ---------------------------------------------------------------------------

// pauseGate is shared by the engines of one provider. A 429 seen by any of
// them holds back every request until the server's retry delay is over.
type pauseGate struct {
	mu    sync.Mutex
	until time.Time
}

// hold blocks new requests for d, never shortening a running pause.
func (g *pauseGate) hold(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if end := time.Now().Add(d); end.After(g.until) {
		g.until = end
	}
}

func (g *pauseGate) remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return time.Until(g.until)
}

// wait returns once the pause is over or ctx is done.
func (g *pauseGate) wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	for d := g.remaining(); d > 0; d = g.remaining() {
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Wire formats
// ---------------------------------------------------------------------------

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is an OpenAI chat/completions request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiRequest is a Gemini generateContent request.
type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

// apiReply covers the fields read from both response formats.
type apiReply struct {
	Error   json.RawMessage `json:"error"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// extractResponseText returns the reply text of a chat or Gemini response.
func extractResponseText(body []byte) (string, error) {
	var r apiReply
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(r.Error) > 0 && string(r.Error) != "null" {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(r.Error, &e) == nil && e.Message != "" {
			return "", fmt.Errorf("API error: %s", e.Message)
		}
		return "", fmt.Errorf("API error: %s", r.Error)
	}
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content, nil
	}
	if len(r.Candidates) > 0 && len(r.Candidates[0].Content.Parts) > 0 {
		return r.Candidates[0].Content.Parts[0].Text, nil
	}
	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// parseRetryDelay reads Google's RetryInfo delay from a 429 body and adds
// five seconds; 65s when the body carries none.
func parseRetryDelay(body []byte) time.Duration {
	const fallback = 65 * time.Second

	var r struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &r) != nil {
		return fallback
	}
	for _, d := range r.Error.Details {
		if !strings.HasSuffix(d.Type, "RetryInfo") || d.RetryDelay == "" {
			continue
		}
		if secs, err := strconv.ParseFloat(strings.TrimSuffix(d.RetryDelay, "s"), 64); err == nil {
			return time.Duration(secs*float64(time.Second)) + 5*time.Second
		}
	}
	return fallback
}

var markdownCodeBlock = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// cleanReply strips code fences and wrapping quotes models like to add,
// then restores the surrounding whitespace of the source text.
func cleanReply(source, reply string) string {
	reply = strings.TrimSpace(reply)
	if m := markdownCodeBlock.FindStringSubmatch(reply); m != nil {
		reply = m[1]
	}
	if len(reply) >= 2 && reply[0] == '"' && reply[len(reply)-1] == '"' && !strings.HasPrefix(source, `"`) {
		reply = reply[1 : len(reply)-1]
	}
	lead := source[:len(source)-len(strings.TrimLeft(source, " \t\n"))]
	trail := source[len(strings.TrimRight(source, " \t\n")):]
	return lead + reply + trail
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// chatEngine translates one string per request through a chat API.
type chatEngine struct {
	prov   Provider
	gemini bool
	system string
	client *http.Client
	gate   *pauseGate
	log    zerolog.Logger
}

func newChatEngine(prov Provider, langName string, gate *pauseGate, log zerolog.Logger) *chatEngine {
	return &chatEngine{
		prov:   prov,
		gemini: prov.ID == ProviderGoogleAI,
		system: strings.ReplaceAll(SystemPrompt, "{{targetLang}}", langName),
		client: newHTTPClient(prov.Proxy, prov.effectiveTimeout()),
		gate:   gate,
		log:    log.With().Str("provider", prov.ID).Logger(),
	}
}

// newHTTPClient honours an explicit proxy URL, else the environment.
func newHTTPClient(proxy string, timeout time.Duration) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = http.ProxyFromEnvironment
	if u, err := url.Parse(proxy); proxy != "" && err == nil {
		tr.Proxy = http.ProxyURL(u)
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

func (e *chatEngine) Translate(ctx context.Context, text string) (string, error) {
	reply, err := e.call(ctx, text)
	if err != nil {
		return "", err
	}
	return cleanReply(text, reply), nil
}

// endpoint returns the request URL and body for text.
func (e *chatEngine) endpoint(text string) (string, []byte, error) {
	base := strings.TrimRight(e.prov.BaseURL, "/")
	if e.gemini {
		req := geminiRequest{
			Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
		}
		if e.system != "" {
			req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: e.system}}}
		}
		req.GenerationConfig.Temperature = temperature
		body, err := json.Marshal(req)
		return fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, e.prov.Model), body, err
	}

	if !strings.HasSuffix(base, "/chat/completions") {
		base += "/chat/completions"
	}
	body, err := json.Marshal(chatRequest{
		Model: e.prov.Model,
		Messages: []chatMessage{
			{Role: "system", Content: e.system},
			{Role: "user", Content: text},
		},
		Temperature: temperature,
	})
	return base, body, err
}

func (e *chatEngine) newRequest(ctx context.Context, endpoint string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := e.prov.APIKey; key != "" {
		if e.gemini {
			req.Header.Set("x-goog-api-key", key)
		} else {
			req.Header.Set("Authorization", "Bearer "+key)
		}
	}
	return req, nil
}

// retryable marks a failed attempt that may succeed later; wait is the
// delay before the next one.
type retryable struct {
	err  error
	wait time.Duration
}

func (r *retryable) Error() string { return r.err.Error() }
func (r *retryable) Unwrap() error { return r.err }

func (e *chatEngine) call(ctx context.Context, text string) (string, error) {
	endpoint, body, err := e.endpoint(text)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	retries := e.prov.effectiveMaxRetries()
	for attempt := 0; ; attempt++ {
		if err := e.gate.wait(ctx); err != nil {
			return "", err
		}
		e.log.Debug().Int("attempt", attempt+1).Msg("POST " + endpoint)

		reply, err := e.attempt(ctx, endpoint, body, attempt)
		var r *retryable
		if !errors.As(err, &r) {
			return reply, err
		}
		if attempt >= retries {
			return "", fmt.Errorf("giving up after %d retries: %w", retries, r.err)
		}
		e.log.Warn().Err(r.err).Dur("wait", r.wait).Msgf("retrying (%d/%d)", attempt+1, retries)
		if err := sleep(ctx, r.wait); err != nil {
			return "", err
		}
	}
}

// attempt sends one request. Network errors, 429 and 5xx responses come
// back as *retryable.
func (e *chatEngine) attempt(ctx context.Context, endpoint string, body []byte, n int) (string, error) {
	req, err := e.newRequest(ctx, endpoint, body)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &retryable{err: fmt.Errorf("API request failed: %w", err), wait: backoff(n)}
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return extractResponseText(data)
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := parseRetryDelay(data)
		if e.gate != nil {
			e.gate.hold(wait)
		}
		return "", &retryable{err: fmt.Errorf("rate limited: %s", truncate(string(data), 200)), wait: wait}
	case resp.StatusCode >= 500:
		return "", &retryable{err: fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(data), 500)), wait: backoff(n)}
	default:
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(data), 500))
	}
}

// retryBase scales the exponential backoff; tests shrink it.
var retryBase = time.Second

func backoff(attempt int) time.Duration {
	return retryBase << attempt
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
