package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/giddylist/pkg/logger"
)

func TestCompleteSendsMessagesRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, APIVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "be brief", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "hello", req.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hi "},{"type":"text","text":"there"}],"usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "test-model", srv.Client(), logger.Discard())
	out, err := c.Complete(context.Background(), "be brief", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "m", srv.Client(), logger.Discard())
	_, err := c.Complete(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteWithoutKey(t *testing.T) {
	c := NewClient("", "", "m", nil, logger.Discard())
	assert.False(t, c.Enabled())
	_, err := c.Complete(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateGuide(t *testing.T) {
	reply := "Here you go:\n```json\n" +
		`{"title":"Best STEM Toys for 5 Year Olds","description":"Hands-on picks","content":"## Why STEM","keywords":["stem toys","gifts for 5 year olds"],"meta_title":"STEM Toys","meta_description":"Top picks"}` +
		"\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"content": []map[string]string{{"type": "text", "text": reply}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "m", srv.Client(), logger.Discard())
	draft, err := c.GenerateGuide(context.Background(), GuideRequest{Topic: "STEM toys", AgeRange: "5-7"})
	require.NoError(t, err)
	assert.Equal(t, "Best STEM Toys for 5 Year Olds", draft.Title)
	assert.Equal(t, []string{"stem toys", "gifts for 5 year olds"}, draft.Keywords)
}

func TestParseGuideDraftRejectsGarbage(t *testing.T) {
	_, err := ParseGuideDraft("sorry, I can't help with that")
	assert.Error(t, err)

	_, err = ParseGuideDraft(`{"description":"no title"}`)
	assert.Error(t, err)
}

func TestGuidePrompt(t *testing.T) {
	p := GuidePrompt(GuideRequest{
		Topic:        "outdoor play",
		AgeRange:     "3-5",
		Keywords:     []string{"toddler bikes"},
		ProductNames: []string{"Balance Bike"},
	})
	assert.Contains(t, p, "outdoor play")
	assert.Contains(t, p, "Age range: 3-5")
	assert.Contains(t, p, "toddler bikes")
	assert.Contains(t, p, "- Balance Bike")
	assert.NotContains(t, p, "Category")
}
