package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEngine(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, path = r.Header.Get("Authorization"), r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"`+"```\\nNom\\n```"+`"}}]}`)
	}))
	defer srv.Close()

	prov := Provider{ID: ProviderGroq, BaseURL: srv.URL + "/openai/v1", APIKey: "k", Model: "m"}
	factory, err := NewFactory(prov, zerolog.Nop())
	require.NoError(t, err)
	engine, err := factory("fr")
	require.NoError(t, err)

	out, err := engine.Translate(context.Background(), " Name ")
	require.NoError(t, err)
	assert.Equal(t, " Nom ", out)

	assert.Equal(t, "Bearer k", auth)
	assert.Equal(t, "/openai/v1/chat/completions", path)
	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "into French.")
	assert.Equal(t, " Name ", got.Messages[1].Content)
}

func TestGeminiEngine(t *testing.T) {
	var key, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, path = r.Header.Get("x-goog-api-key"), r.URL.Path
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"\"Prix\""}]}}]}`)
	}))
	defer srv.Close()

	prov := Provider{ID: ProviderGoogleAI, BaseURL: srv.URL, APIKey: "g", Model: "gemini-x"}
	factory, err := NewFactory(prov, zerolog.Nop())
	require.NoError(t, err)
	engine, err := factory("fr_CA")
	require.NoError(t, err)

	out, err := engine.Translate(context.Background(), "Price")
	require.NoError(t, err)
	assert.Equal(t, "Prix", out)
	assert.Equal(t, "g", key)
	assert.Equal(t, "/v1beta/models/gemini-x:generateContent", path)
}

func TestChatEngineRetriesServerErrors(t *testing.T) {
	old := retryBase
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = old })

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	engine := newChatEngine(Provider{ID: ProviderOllama, BaseURL: srv.URL, Model: "m"}, "French", &pauseGate{}, zerolog.Nop())
	out, err := engine.Translate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestChatEngineClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	engine := newChatEngine(Provider{ID: ProviderCustomOpenAI, BaseURL: srv.URL, Model: "m"}, "French", nil, zerolog.Nop())
	_, err := engine.Translate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestExtractResponseText(t *testing.T) {
	_, err := extractResponseText([]byte(`{"error":{"message":"quota"}}`))
	assert.EqualError(t, err, "API error: quota")

	_, err = extractResponseText([]byte(`{"nothing":true}`))
	assert.Error(t, err)

	_, err = extractResponseText([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseRetryDelay(t *testing.T) {
	body := []byte(`{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"12s"}]}}`)
	assert.Equal(t, 17*time.Second, parseRetryDelay(body))
	assert.Equal(t, 65*time.Second, parseRetryDelay([]byte(`{}`)))
	assert.Equal(t, 65*time.Second, parseRetryDelay([]byte(`oops`)))
}

func TestCleanReply(t *testing.T) {
	cases := []struct {
		source, reply, want string
	}{
		{"Name", "Nom", "Nom"},
		{"Name", "  Nom\n", "Nom"},
		{"Name\n", "Nom", "Nom\n"},
		{"Name", "```text\nNom\n```", "Nom"},
		{"Name", `"Nom"`, "Nom"},
		{`"quoted"`, `"cité"`, `"cité"`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cleanReply(tc.source, tc.reply), tc.source+" / "+tc.reply)
	}
}

func TestPauseGate(t *testing.T) {
	var g pauseGate
	g.hold(20 * time.Millisecond)
	g.hold(time.Millisecond)
	assert.Greater(t, g.remaining(), 10*time.Millisecond, "a shorter hold must not cut the pause")

	start := time.Now()
	require.NoError(t, g.wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.LessOrEqual(t, g.remaining(), time.Duration(0))

	g.hold(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.wait(ctx), context.Canceled)

	var none *pauseGate
	assert.NoError(t, none.wait(ctx))
}

func TestChatEngineRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"0.01s"}]}}`)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	// The 429 pause includes a fixed 5s buffer; cancel before it ends.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	gate := &pauseGate{}
	engine := newChatEngine(Provider{ID: ProviderOllama, BaseURL: srv.URL, Model: "m"}, "French", gate, zerolog.Nop())
	_, err := engine.Translate(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Greater(t, gate.remaining(), time.Second)
}

func TestProviderValidate(t *testing.T) {
	defaults := DefaultProviders()
	assert.NoError(t, defaults[ProviderGoogle].Validate())
	assert.NoError(t, defaults[ProviderOllama].Validate())
	assert.Error(t, defaults[ProviderGroq].Validate(), "groq needs a key")
	assert.Error(t, defaults[ProviderCustomOpenAI].Validate(), "custom needs a base URL")
	assert.Error(t, Provider{ID: "nope"}.Validate())

	groq := defaults[ProviderGroq]
	groq.APIKey = "k"
	assert.NoError(t, groq.Validate())
	assert.Equal(t, []string{"custom-openai", "google", "google-ai", "groq", "ollama"}, Providers())
}
