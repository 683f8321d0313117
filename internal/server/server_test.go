package server_test

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/JaimeStill/image-lab/internal/config"
	"github.com/JaimeStill/image-lab/internal/server"
	"github.com/JaimeStill/image-lab/pkg/lifecycle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStart_ServerResponds(t *testing.T) {
	cfg := &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     "5s",
		WriteTimeout:    "5s",
		ShutdownTimeout: "5s",
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("test response"))
	})

	lc := lifecycle.New()
	sys := server.New(cfg, handler, testLogger())
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	resp, err := http.Get("http://" + sys.Addr() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if string(body) != "test response" {
		t.Errorf("body = %q, want %q", body, "test response")
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	if _, err := http.Get("http://" + sys.Addr() + "/"); err == nil {
		t.Error("server still accepting requests after shutdown")
	}
}

func TestStart_AddressInUse(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: "1s"}

	lc := lifecycle.New()
	first := server.New(cfg, http.NotFoundHandler(), testLogger())
	if err := first.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer lc.Shutdown(time.Second)

	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort() failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	taken := *cfg
	taken.Port = port

	second := server.New(&taken, http.NotFoundHandler(), testLogger())
	if err := second.Start(lifecycle.New()); err == nil {
		t.Error("Start() on bound port error = nil, want error")
	}
}
