package checks

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckHealthUpAndDown(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	results := CheckHealth([]string{up.URL, down.URL}, DefaultHealthConfig())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != "up" || results[0].StatusCode != http.StatusOK {
		t.Errorf("expected first up/200, got %+v", results[0])
	}
	if results[1].Status != "down" || results[1].StatusCode != http.StatusInternalServerError {
		t.Errorf("expected second down/500, got %+v", results[1])
	}
}

func TestCheckHealthClientErrorIsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	results := CheckHealth([]string{srv.URL}, DefaultHealthConfig())
	// Reachable with a 4xx still means the endpoint answers.
	if results[0].Status != "up" {
		t.Errorf("expected 404 to count as up, got %+v", results[0])
	}
}

func TestCheckHealthUnreachable(t *testing.T) {
	config := DefaultHealthConfig()
	config.Timeout = 2 * time.Second

	results := CheckHealth([]string{"http://127.0.0.1:1"}, config)
	if results[0].Status != "down" {
		t.Errorf("expected down for unreachable host, got %+v", results[0])
	}
	if results[0].Error == "" {
		t.Error("expected error message for unreachable host")
	}
}

func TestCheckHealthPreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c", srv.URL + "/d"}
	results := CheckHealth(urls, DefaultHealthConfig())

	for i, r := range results {
		if r.URL != urls[i] {
			t.Errorf("result %d: expected %s, got %s", i, urls[i], r.URL)
		}
	}
}

func TestCheckHealthSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	config := DefaultHealthConfig()
	CheckHealth([]string{srv.URL}, config)

	if gotUA != config.UserAgent {
		t.Errorf("expected user agent %q, got %q", config.UserAgent, gotUA)
	}
}
