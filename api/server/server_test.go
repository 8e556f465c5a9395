// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

func newTestServer(t *testing.T, listener net.Listener) *Server {
	return New(
		log.NewNoOpLogger(),
		listener,
		Config{
			AllowedOrigins:  []string{"https://example.org"},
			ShutdownTimeout: time.Second,
			ServerName:      "elasticd",
		},
		metric.NewRegistry(),
		nil,
	)
}

func teapot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
}

func TestAddRoute(t *testing.T) {
	r := require.New(t)

	s := newTestServer(t, nil)
	r.NoError(s.AddRoute(http.HandlerFunc(teapot), "elastic", ""))
	r.NoError(s.AddRoute(http.HandlerFunc(teapot), "elastic", "/ws"))
	r.NoError(s.Handle("/health", http.HandlerFunc(teapot)))

	tests := []struct {
		path         string
		expectedCode int
	}{
		{path: "/ext/elastic", expectedCode: http.StatusTeapot},
		{path: "/ext/elastic/ws", expectedCode: http.StatusTeapot},
		{path: "/health", expectedCode: http.StatusTeapot},
		{path: "/ext/other", expectedCode: http.StatusNotFound},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, test.path, nil))
			require.Equal(t, test.expectedCode, rec.Code)
			require.Equal(t, "elasticd", rec.Header().Get(HTTPHeaderServer))
		})
	}
}

func TestAddRouteInvalid(t *testing.T) {
	require := require.New(t)

	s := newTestServer(t, nil)
	require.ErrorIs(s.AddRoute(http.HandlerFunc(teapot), "", ""), ErrInvalidRoute)
	require.ErrorIs(s.AddRoute(http.HandlerFunc(teapot), "a/b", ""), ErrInvalidRoute)
	require.ErrorIs(s.AddRoute(http.HandlerFunc(teapot), "elastic", "ws"), ErrInvalidRoute)
	require.ErrorIs(s.Handle("health", http.HandlerFunc(teapot)), ErrInvalidRoute)
}

func TestCORS(t *testing.T) {
	require := require.New(t)

	s := newTestServer(t, nil)
	require.NoError(s.AddRoute(http.HandlerFunc(teapot), "elastic", ""))

	req := httptest.NewRequest(http.MethodGet, "/ext/elastic", nil)
	req.Header.Set("Origin", "https://example.org")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal("https://example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ext/elastic", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDispatchAndShutdown(t *testing.T) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)

	s := newTestServer(t, listener)
	require.NoError(s.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})))

	dispatched := make(chan error, 1)
	go func() {
		dispatched <- s.Dispatch()
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal("ok", string(body))

	require.NoError(s.Shutdown())
	require.NoError(<-dispatched)
}
