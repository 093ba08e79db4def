package main

import (
	"net/http"
	"os"
	"time"
)

// Container health probe: succeeds when the API answers the version endpoint.
func main() {
	addr := os.Getenv("SHIBARI_HEALTH_ADDR")
	if addr == "" {
		addr = "http://127.0.0.1:8080"
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(addr + "/api/version")
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		os.Exit(1)
	}
	os.Exit(0)
}
