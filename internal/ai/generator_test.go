package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeOpenAI struct {
	mu       sync.Mutex
	requests []ChatRequest
	respond  func(model string) (int, string)
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	status, body := f.respond(req.Model)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeOpenAI) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		out = append(out, r.Model)
	}
	return out
}

func completion(content string) string {
	data, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(data)
}

const quotaBody = `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`

func newTestGenerator(t *testing.T, fake *fakeOpenAI, cache Cache) *Generator {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewGenerator(Config{APIKey: "sk-test", BaseURL: srv.URL}, cache, nil)
}

func TestGenerator_NoAPIKeyReturnsFallback(t *testing.T) {
	gen := NewGenerator(Config{}, nil, nil)
	fields := testFields("50000")

	text, err := gen.Generate(context.Background(), fields)
	require.NoError(t, err)
	require.Equal(t, FallbackDraft(fields), text)
}

func TestGenerator_PrimaryModel(t *testing.T) {
	fake := &fakeOpenAI{respond: func(string) (int, string) { return http.StatusOK, completion("# Primary") }}
	gen := newTestGenerator(t, fake, nil)

	text, err := gen.Generate(context.Background(), testFields("50000"))
	require.NoError(t, err)
	require.Equal(t, "# Primary", text)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	require.Equal(t, DefaultPrimaryModel, req.Model)
	require.Len(t, req.Messages, 1)
	require.Equal(t, "user", req.Messages[0].Role)
	require.Contains(t, req.Messages[0].Content, "You are a professional grant writer with extensive experience")
	require.Contains(t, req.Messages[0].Content, "Amount Requested: $50000")
	require.Nil(t, req.Temperature)
}

func TestGenerator_QuotaFallsBackToSecondModel(t *testing.T) {
	fake := &fakeOpenAI{respond: func(model string) (int, string) {
		if model == DefaultPrimaryModel {
			return http.StatusTooManyRequests, quotaBody
		}
		return http.StatusOK, completion("# Fallback model")
	}}
	gen := newTestGenerator(t, fake, nil)

	text, err := gen.Generate(context.Background(), testFields("50000"))
	require.NoError(t, err)
	require.Equal(t, "# Fallback model", text)
	require.Equal(t, []string{DefaultPrimaryModel, DefaultFallbackModel}, fake.models())

	req := fake.requests[1]
	require.Len(t, req.Messages, 2)
	require.Equal(t, "system", req.Messages[0].Role)
	require.Equal(t, 4000, req.MaxTokens)
	require.NotNil(t, req.Temperature)
	require.InDelta(t, 0.7, *req.Temperature, 1e-9)
}

func TestGenerator_InsufficientQuotaCodeWithoutStatus429(t *testing.T) {
	fake := &fakeOpenAI{respond: func(model string) (int, string) {
		if model == DefaultPrimaryModel {
			return http.StatusForbidden, quotaBody
		}
		return http.StatusOK, completion("# Fallback model")
	}}
	gen := newTestGenerator(t, fake, nil)

	text, err := gen.Generate(context.Background(), testFields("50000"))
	require.NoError(t, err)
	require.Equal(t, "# Fallback model", text)
}

func TestGenerator_BothModelsFailReturnsOfflineDraft(t *testing.T) {
	fake := &fakeOpenAI{respond: func(model string) (int, string) {
		if model == DefaultPrimaryModel {
			return http.StatusTooManyRequests, quotaBody
		}
		return http.StatusInternalServerError, `{"error":{"message":"boom"}}`
	}}
	gen := newTestGenerator(t, fake, nil)
	fields := testFields("50000")

	text, err := gen.Generate(context.Background(), fields)
	require.NoError(t, err)
	require.Equal(t, FallbackDraft(fields), text)
}

func TestGenerator_OtherPrimaryFailure(t *testing.T) {
	fake := &fakeOpenAI{respond: func(string) (int, string) {
		return http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`
	}}
	gen := newTestGenerator(t, fake, nil)

	_, err := gen.Generate(context.Background(), testFields("50000"))
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.Equal(t, []string{DefaultPrimaryModel}, fake.models())
}

func TestGenerator_EmptyOutput(t *testing.T) {
	fake := &fakeOpenAI{respond: func(string) (int, string) { return http.StatusOK, completion("") }}
	gen := newTestGenerator(t, fake, nil)

	text, err := gen.Generate(context.Background(), testFields("50000"))
	require.NoError(t, err)
	require.Equal(t, EmptyOutput, text)
}

func TestGenerator_CachesModelOutput(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewRedisCacheWithClient(client, 0)

	fake := &fakeOpenAI{respond: func(string) (int, string) { return http.StatusOK, completion("# Cached") }}
	gen := newTestGenerator(t, fake, cache)
	fields := testFields("50000")

	for i := 0; i < 2; i++ {
		text, err := gen.Generate(context.Background(), fields)
		require.NoError(t, err)
		require.Equal(t, "# Cached", text)
	}
	require.Len(t, fake.models(), 1)
	require.True(t, mr.Exists("draft:"+CacheKey(DefaultPrimaryModel, fields)))
}

func TestIsQuotaError(t *testing.T) {
	require.True(t, IsQuotaError(&APIError{StatusCode: 429}))
	require.True(t, IsQuotaError(&APIError{StatusCode: 400, Code: "insufficient_quota"}))
	require.False(t, IsQuotaError(&APIError{StatusCode: 500}))
	require.False(t, IsQuotaError(context.Canceled))
}
