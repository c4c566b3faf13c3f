package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"## High CPU\n* chrome is busy"}],"role":"model"},"finishReason":"STOP"}]}`

// newTestClient creates a Client pointed at a test server.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Endpoint: serverURL + "/v1beta/models",
		Model:    "test-model",
		APIKey:   "secret-key",
		Timeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	text, err := client.Generate(context.Background(), "why is it slow?")
	require.NoError(t, err)

	assert.Equal(t, "## High CPU\n* chrome is busy", text)
	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "why is it slow?", gotBody.Contents[0].Parts[0].Text)
}

func TestGenerate_StatusError(t *testing.T) {
	const denied = `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(denied))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "prompt")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, denied, se.Body)
	assert.Contains(t, se.Error(), "403")
}

func TestGenerate_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"missing candidates", `{"usageMetadata":{"promptTokenCount":10}}`, "missing"},
		{"empty candidates", `{"candidates":[]}`, "missing"},
		{"blocked prompt", `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"text not a string", `{"candidates":[{"content":{"parts":[{"text":42}]}}]}`, "not a string"},
		{"invalid JSON", `<html>oops</html>`, "not valid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.Generate(context.Background(), "prompt")

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, pe.Reason, tt.reason)

			var te *TransportError
			assert.False(t, errors.As(err, &te), "parse failure must not look like a transport failure")
		})
	}
}

func TestGenerate_TransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client := newTestClient(t, serverURL)
	_, err := client.Generate(context.Background(), "prompt")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestExplain_DeliversOneResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ch := client.Explain(context.Background(), "prompt")

	select {
	case res, ok := <-ch:
		require.True(t, ok)
		require.NoError(t, res.Err)
		assert.NotEmpty(t, res.RequestID)
		assert.Contains(t, res.Text, "High CPU")
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after the result")
}

func TestExplain_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(Options{
		Endpoint: server.URL,
		Model:    "m",
		APIKey:   "k",
		Timeout:  50 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	select {
	case res := <-client.Explain(context.Background(), "prompt"):
		var te *TransportError
		require.ErrorAs(t, res.Err, &te)
		assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("Explain did not honour its timeout")
	}
}

func TestExplainSnapshot_InvalidMetricsSkipsRequest(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	snap := collectors.Assemble(time.Now(), collectors.CPUMetrics{}, collectors.MemoryMetrics{}, collectors.DiskMetrics{DriveLabel: "N/A"}, nil, 0)

	res := <-client.ExplainSnapshot(context.Background(), snap)
	assert.ErrorIs(t, res.Err, ErrInvalidMetrics)
	assert.Equal(t, 0, hits)
}

func TestExplainSnapshot_Success(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}
		w.Write([]byte(okBody))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	res := <-client.ExplainSnapshot(context.Background(), validSnapshot())
	require.NoError(t, res.Err)
	assert.True(t, strings.Contains(prompt, "Top CPU Process: chrome"), "prompt sent: %s", prompt)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"missing key", Options{}, ErrMissingAPIKey},
		{"blank key", Options{APIKey: "   "}, ErrMissingAPIKey},
		{"defaults", Options{APIKey: "k"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultEndpoint, tt.opts.Endpoint)
			assert.Equal(t, DefaultModel, tt.opts.Model)
			assert.Equal(t, DefaultTimeout, tt.opts.Timeout)
		})
	}

	bad := Options{APIKey: "k", Endpoint: "ftp://example.com"}
	assert.Error(t, bad.Validate())
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(Options{}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
