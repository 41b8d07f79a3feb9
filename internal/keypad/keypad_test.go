package keypad

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fincalc/internal/calculator"
	"fincalc/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsDisplay(t *testing.T) {
	k, err := New(Config{Locale: "en-IN"}, nil)
	require.NoError(t, err)

	in := strings.NewReader("1 2 3 4 5 6 + 4 =\n\n8 / 0 =\n2 x 3\n")
	var out strings.Builder
	require.NoError(t, k.Run(context.Background(), in, &out))

	assert.Equal(t, []string{
		"1,23,456 + 4 | 1,23,460",
		"8 ÷ 0 | Error: Cannot divide by zero",
		"2 × 3 | 6",
	}, strings.Split(strings.TrimSpace(out.String()), "\n"))
}

func TestRunScientific(t *testing.T) {
	k, err := New(Config{Scientific: true, Angle: "deg"}, nil)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, k.Run(context.Background(), strings.NewReader("sin 9 0 ) =\n"), &out))
	assert.Equal(t, "sin(90) | 1\n", out.String())
}

func TestRunUploadsHistory(t *testing.T) {
	var (
		mu       sync.Mutex
		received []server.HistoryRequest
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		var req server.HistoryRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		received = append(received, req)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	k, err := New(Config{ServerURI: ts.URL + "/", Token: "token-1", MaxWorkers: 2}, nil)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, k.Run(context.Background(), strings.NewReader("2 + 2 =\n1 / 0 =\n5 * 5 =\n"), &out))

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []server.HistoryRequest{
		{Expression: "2 + 2", Result: "4"},
		{Expression: "5 × 5", Result: "25"},
	}, received)
}

func TestRunStopsOnCancel(t *testing.T) {
	k, err := New(Config{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, w := io.Pipe()
	defer w.Close()
	assert.ErrorIs(t, k.Run(ctx, r, &strings.Builder{}), context.Canceled)
}

// endless yields "1" lines forever.
type endless struct{}

func (endless) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = "1\n"[i%2]
	}
	return len(p), nil
}

func TestReadLinesStopsOnCancel(t *testing.T) {
	k, err := New(Config{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lines := k.readLines(ctx, endless{})

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-lines:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "1 + 2 | 3", Render(calculator.Display{Expression: "1 + 2", Result: "3"}))
	assert.Equal(t, " | ", Render(calculator.Display{}))
}

func TestRunPrintsPrompt(t *testing.T) {
	k, err := New(Config{Prompt: "> "}, nil)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, k.Run(context.Background(), strings.NewReader("1 + 1\n\n"), &out))
	assert.Equal(t, "> 1 + 1 | 2\n> > ", out.String())
}
