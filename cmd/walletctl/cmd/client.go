package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// No library in this repository's dependency pack is used purely for
// CLI-to-service HTTP calls, so this stays on net/http directly.
var httpClient = &http.Client{Timeout: 10 * time.Second}

func postJSON(path string, body any) (map[string]any, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := httpClient.Post(serverAddr+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("call walletd: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

func getJSON(path string) (map[string]any, error) {
	resp, err := httpClient.Get(serverAddr + path)
	if err != nil {
		return nil, fmt.Errorf("call walletd: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

func decodeResponse(resp *http.Response) (map[string]any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w (body: %s)", err, raw)
	}
	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("walletd returned %d: %v", resp.StatusCode, out["msg"])
	}
	return out, nil
}
