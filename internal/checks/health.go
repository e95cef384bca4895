package checks

import (
	"net/http"
	"sync"
	"time"
)

// #region types

// HealthResult is the outcome of one URL health check.
type HealthResult struct {
	URL            string `json:"url"`
	Status         string `json:"status"` // "up" | "down"
	StatusCode     int    `json:"status_code,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Error          string `json:"error,omitempty"`
}

// HealthConfig tunes the health checker.
type HealthConfig struct {
	Timeout     time.Duration
	Concurrency int
	UserAgent   string
}

// DefaultHealthConfig returns sensible defaults.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		Timeout:     10 * time.Second,
		Concurrency: 8,
		UserAgent:   "discipline-gates-healthcheck/1.0",
	}
}

// #endregion types

// #region check-health

// CheckHealth probes every URL concurrently and returns results in input
// order. A URL is up when the request completes with a status below 500.
func CheckHealth(urls []string, config HealthConfig) []HealthResult {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	client := &http.Client{Timeout: config.Timeout}

	results := make([]HealthResult, len(urls))
	sem := make(chan struct{}, config.Concurrency)
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = checkOne(client, url, config.UserAgent)
		}(i, url)
	}
	wg.Wait()

	return results
}

// checkOne probes a single URL.
func checkOne(client *http.Client, url, userAgent string) HealthResult {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return HealthResult{URL: url, Status: "down", Error: err.Error()}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return HealthResult{URL: url, Status: "down", ResponseTimeMs: elapsed, Error: err.Error()}
	}
	defer resp.Body.Close()

	status := "up"
	if resp.StatusCode >= 500 {
		status = "down"
	}
	return HealthResult{
		URL:            url,
		Status:         status,
		StatusCode:     resp.StatusCode,
		ResponseTimeMs: elapsed,
	}
}

// #endregion check-health
