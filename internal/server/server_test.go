package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestServer(h http.Handler) *Server {
	return New(h, Options{
		Port:            0,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: 2 * time.Second,
	}, slog.New(slog.DiscardHandler))
}

func TestServer_ServesAndShutsDownInReverseOrder(t *testing.T) {
	srv := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"store", "notifier", "metrics"} {
		srv.OnShutdown(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	addr := <-srv.Listening()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", addr.(*net.TCPAddr).Port))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("expected body pong, got %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	want := []string{"metrics", "notifier", "store"}
	if !slices.Equal(order, want) {
		t.Errorf("expected shutdown order %v, got %v", want, order)
	}
}

func TestServer_ShutdownErrorsAreJoined(t *testing.T) {
	srv := newTestServer(http.NotFoundHandler())
	srv.OnShutdown("redis", func(context.Context) error { return errors.New("connection reset") })
	srv.OnShutdown("postgres", func(context.Context) error { return errors.New("pool busy") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	<-srv.Listening()
	cancel()

	err := <-done
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"redis: connection reset", "postgres: pool busy"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
