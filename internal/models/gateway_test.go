package models

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuli2514/rurichat/internal/types"
)

func testConfig(endpoint string) types.ChatAPIConfig {
	return types.ChatAPIConfig{
		Endpoint:    endpoint,
		Key:         "test-key",
		Model:       "test-model",
		Temperature: 0.8,
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	g := NewGateway()
	_, err := g.Complete(context.Background(), types.ChatAPIConfig{}, nil, CompleteOptions{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCompleteExtractsAssistantText(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"你好呀"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway()
	msgs := []ChatMessage{
		SystemMessage("system prompt"),
		UserMessage("hello"),
	}
	text, err := g.Complete(context.Background(), testConfig(srv.URL), msgs, CompleteOptions{MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "你好呀", text)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody["model"])
	assert.Equal(t, 0.8, gotBody["temperature"])
	assert.Equal(t, float64(256), gotBody["max_tokens"])
}

func TestCompleteVisionParts(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"看到了"}}]}`))
	}))
	defer srv.Close()

	g := NewGateway()
	msgs := []ChatMessage{
		{Role: RoleUser, Parts: []ContentPart{
			{Text: "用户发来一张照片"},
			{ImageURL: "data:image/png;base64,AAAA"},
		}},
	}
	_, err := g.Complete(context.Background(), testConfig(srv.URL), msgs, CompleteOptions{})
	require.NoError(t, err)

	assert.Contains(t, string(gotBody), `"image_url"`)
	assert.Contains(t, string(gotBody), `"detail":"low"`)
	assert.Contains(t, string(gotBody), "data:image/png;base64,AAAA")
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGateway()
	_, err := g.Complete(context.Background(), testConfig(srv.URL), []ChatMessage{UserMessage("hi")}, CompleteOptions{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	g := NewGateway()
	_, err := g.Complete(context.Background(), testConfig(srv.URL), []ChatMessage{UserMessage("hi")}, CompleteOptions{})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestListModelsShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"openai data wrapper", `{"data":[{"id":"a"},{"id":"b"}]}`, []string{"a", "b"}},
		{"bare array", `[{"id":"x"},"y"]`, []string{"x", "y"}},
		{"models wrapper", `{"models":["m1","m2"]}`, []string{"m1", "m2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/models", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			g := NewGateway()
			ids, err := g.ListModels(context.Background(), srv.URL, "test-key")
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestListModelsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	g := NewGateway()
	_, err := g.ListModels(context.Background(), srv.URL, "test-key")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.Status)
}

func TestListModelsBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()

	g := NewGateway()
	_, err := g.ListModels(context.Background(), srv.URL, "test-key")
	assert.ErrorIs(t, err, ErrBadResponse)
}
