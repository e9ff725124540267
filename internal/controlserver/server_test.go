package controlserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/opsnotebook/es-driver/internal/driver"
)

func TestServer_StartServesAndShutsDown(t *testing.T) {
	srv := New(0, &stubConnector{status: driver.StatusDisconnected})

	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "disconnected" {
		t.Errorf("status = %q, want disconnected", body["status"])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	if _, err := http.Get("http://" + srv.Addr() + "/status"); err == nil {
		t.Error("server still serving after Shutdown")
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := New(0, &stubConnector{})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() before Start error = %v", err)
	}
}
