package questions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fiveQuestions = `{"questions":[
	{"question":"q1","answer":1},
	{"question":"q2","answer":2.0},
	{"question":"q3","answer":3},
	{"question":"q4","answer":4},
	{"question":"q5","answer":5},
	{"question":"q6","answer":6}
]}`

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "Topic: rivers", req.Messages[1].Content)
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceGenerate(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n"+fiveQuestions+"\n```")
	src := NewHTTPSource(srv.URL, "secret", "test-model", time.Second)

	items, err := src.Generate(context.Background(), "rivers")
	require.NoError(t, err)
	require.Len(t, items, Count)
	assert.Equal(t, "q1", items[0].Question)
	assert.Equal(t, 2, items[1].Answer)
}

func TestHTTPSourceUpstreamError(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "")
	src := NewHTTPSource(srv.URL, "secret", "", time.Second)

	_, err := src.Generate(context.Background(), "rivers")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	// Runs before srv.Close so the handler never holds Close up.
	defer close(release)
	src := NewHTTPSource(srv.URL, "", "", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := src.Generate(ctx, "rivers")
	assert.Error(t, err)
}

func TestParseSetSkipsUnusableItems(t *testing.T) {
	_, err := ParseSet(`{"questions":[
		{"question":"q1","answer":1},
		{"question":"","answer":2},
		{"question":"q3","answer":3.5},
		{"question":"q4","answer":4},
		{"question":"q5","answer":5},
		{"question":"q6","answer":6}
	]}`)
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = ParseSet("not json")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestStaticSource(t *testing.T) {
	items, err := NewStaticSource().Generate(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, items, Count)

	seen := map[string]bool{}
	for _, q := range items {
		assert.NotEmpty(t, q.Question)
		assert.False(t, seen[q.Question], "picks must not repeat")
		seen[q.Question] = true
	}
}

func TestWholeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"-7", -7, true},
		{"3.0", 3, true},
		{"1e3", 1000, true},
		{"3.5", 0, false},
		{"1e30", 0, false},
		{"-1e30", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := wholeNumber(json.Number(c.in))
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}
