package sysinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// NetInfo is the public-side view of the host's connectivity, shown for
// context before the network tests. Not part of the JSON report.
type NetInfo struct {
	IP      string `json:"ip"`
	Org     string `json:"org"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// FetchNetInfo asks ipinfo.io about the host's public address.
func FetchNetInfo(ctx context.Context) (*NetInfo, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://ipinfo.io/json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipinfo returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	info := &NetInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, err
	}
	return info, nil
}
