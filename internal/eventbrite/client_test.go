package eventbrite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		details string
	}{
		{"unauthorized", http.StatusUnauthorized, "", KindUnauthorized, ""},
		{"not found", http.StatusNotFound, "", KindNotFound, ""},
		{"bad request with description", http.StatusBadRequest, `{"error":"ARGUMENTS_ERROR","error_description":"start_date is invalid"}`, KindBadRequest, "start_date is invalid"},
		{"bad request without json", http.StatusBadRequest, "oops", KindBadRequest, ""},
		{"server error", http.StatusBadGateway, "", KindServiceUnavailable, "Please try again later"},
		{"other status", http.StatusTeapot, "short and stout", KindRequestFailed, "short and stout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "tok")
			err := c.Request(context.Background(), srv.URL, nil)
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.details, apiErr.Details)
		})
	}
}

func TestRequestDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"events":[{"id":"1"}]}`))
	}))
	defer srv.Close()

	var out eventsResponse
	require.NoError(t, NewClient(srv.URL, "tok").Request(context.Background(), srv.URL, &out))
	require.Len(t, out.Events, 1)
	assert.Equal(t, "1", out.Events[0].ID)
}

func TestRequestUndecodableBodyIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	var out eventsResponse
	err := NewClient(srv.URL, "tok").Request(context.Background(), srv.URL, &out)
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", WithTimeout(50*time.Millisecond))
	start := time.Now()
	err := c.Request(context.Background(), srv.URL, nil)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, http.StatusRequestTimeout, err.(*Error).Status)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRequestCallerCancelIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := NewClient(srv.URL, "tok").Request(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequestOfflineSkipsNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", WithConnectivity(func() bool { return false }))
	err := c.Request(context.Background(), srv.URL, nil)

	assert.ErrorIs(t, err, ErrOffline)
	assert.Zero(t, hits)
}

func TestRequestConnectionRefusedIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	err := NewClient(addr, "tok").Request(context.Background(), addr, nil)
	require.Error(t, err)
	assert.Equal(t, KindNetworkError, KindOf(err))
	assert.NotEmpty(t, err.(*Error).Details)
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := error(&Error{Kind: KindNotFound, Status: 404, Message: "Organization or events not found"})
	wrapped := errors.Join(errors.New("context"), err)

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrTimeout)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "Organization or events not found", err.Error())
}
