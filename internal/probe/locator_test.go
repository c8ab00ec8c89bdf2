package probe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocator_Find(t *testing.T) {
	t.Parallel()

	t.Run("first reachable port in priority order wins", func(t *testing.T) {
		t.Parallel()

		first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(first.Close)
		second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(second.Close)

		closed := closedPort(t)
		firstPort := serverPort(t, first)
		secondPort := serverPort(t, second)

		l := NewLocator(NewProber(WithHosts("127.0.0.1")), []int{closed, firstPort, secondPort})
		result, err := l.Find(context.Background())

		require.NoError(t, err)
		assert.Equal(t, firstPort, result.Target.Port)
		assert.True(t, result.Reachable)
	})

	t.Run("hosts are tried in order within a port", func(t *testing.T) {
		t.Parallel()

		var visited []string
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			visited = append(visited, r.URL.Host)
			if r.URL.Hostname() == "localhost" {
				return nil, errors.New("connection refused")
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader("")),
				Request:    r,
			}, nil
		})}

		p := NewProber(WithHTTPClient(client))
		l := NewLocator(p, []int{8081, 19000})
		url, ok := l.Locate(context.Background())

		require.True(t, ok)
		assert.Equal(t, "http://127.0.0.1:8081", url)
		assert.Equal(t, []string{"localhost:8081", "127.0.0.1:8081"}, visited)
	})

	t.Run("nothing reachable", func(t *testing.T) {
		t.Parallel()

		l := NewLocator(NewProber(WithHosts("127.0.0.1")), []int{closedPort(t), closedPort(t)})

		_, err := l.Find(context.Background())
		require.ErrorIs(t, err, ErrNoActiveServer)

		url, ok := l.Locate(context.Background())
		assert.False(t, ok)
		assert.Empty(t, url)
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		l := NewLocator(NewProber(WithHosts("127.0.0.1")), []int{closedPort(t)})
		_, err := l.Find(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewLocator_DefaultPorts(t *testing.T) {
	t.Parallel()

	l := NewLocator(NewProber(), nil)
	assert.Equal(t, []int{8081, 19000, 19006, 19001, 19002}, l.ports)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
