package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// NodeURL returns the base URL of the node API, from MEDISHARE_NODE_URL
// or the local default.
func NodeURL() string {
	if url := os.Getenv("MEDISHARE_NODE_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

var httpClient = &http.Client{Timeout: 15 * time.Second}

// AuthHeaders carries the credentials a request may need.
type AuthHeaders struct {
	Token         string // API JWT, Authorization: Bearer
	APIKey        string // X-API-Key
	ProviderToken string // X-Provider-Token
}

// FromEnv reads credentials from the environment.
func FromEnv() AuthHeaders {
	return AuthHeaders{
		Token:         os.Getenv("MEDISHARE_CLI_JWT"),
		APIKey:        os.Getenv("MEDISHARE_CLI_API_KEY"),
		ProviderToken: os.Getenv("MEDISHARE_CLI_PROVIDER_TOKEN"),
	}
}

func (a AuthHeaders) apply(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
	if a.APIKey != "" {
		req.Header.Set("X-API-Key", a.APIKey)
	}
	if a.ProviderToken != "" {
		req.Header.Set("X-Provider-Token", a.ProviderToken)
	}
}

// doJSON runs one request and decodes the JSON response. Non-2xx
// responses come back as errors carrying the body text.
func doJSON(method, path string, body []byte, auth AuthHeaders, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, NodeURL()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	auth.apply(req)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("node returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// Status mirrors the node's /status response.
type Status struct {
	Status      string `json:"status"`
	Uptime      int64  `json:"uptime_seconds"`
	RecordCount int    `json:"record_count"`
	QueuedJobs  int    `json:"queued_jobs"`
	Version     string `json:"version"`
	APIVersion  string `json:"api_version"`
	LastStore   string `json:"last_store_time"`
}

func (s Status) ToJSON() string {
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func GetStatus() (Status, error) {
	var status Status
	err := doJSON(http.MethodGet, "/status", nil, AuthHeaders{}, &status)
	return status, err
}

// HealthMetrics mirrors the node's /nodehealth response.
type HealthMetrics struct {
	Status  string `json:"status"`
	Metrics struct {
		UptimeSeconds   int64   `json:"uptime_seconds"`
		RecordCount     int     `json:"record_count"`
		QueuedJobs      int     `json:"queued_jobs"`
		CPULoadPercent  float64 `json:"cpu_load_percent"`
		MemoryMB        float64 `json:"memory_mb"`
		DiskFreeMB      float64 `json:"disk_free_mb"`
		EngineReachable bool    `json:"engine_reachable"`
		LastStoreTime   string  `json:"last_store_time"`
	} `json:"metrics"`
}

func GetHealthMetrics() (HealthMetrics, error) {
	var data HealthMetrics
	err := doJSON(http.MethodGet, "/nodehealth", nil, AuthHeaders{}, &data)
	return data, err
}

func GetLiveness() (bool, error) {
	var result struct {
		Alive bool `json:"alive"`
	}
	err := doJSON(http.MethodGet, "/health/liveness", nil, AuthHeaders{}, &result)
	return result.Alive, err
}

func GetReadiness() (bool, error) {
	var result struct {
		Ready bool `json:"ready"`
	}
	err := doJSON(http.MethodGet, "/health/readiness", nil, AuthHeaders{}, &result)
	return result.Ready, err
}

// SubmitRecord posts a signed store envelope.
func SubmitRecord(envelope []byte, auth AuthHeaders) (map[string]interface{}, error) {
	var receipt map[string]interface{}
	err := doJSON(http.MethodPost, "/api/v1/records", envelope, auth, &receipt)
	return receipt, err
}

// GetRecord fetches the domain views of a stored record.
func GetRecord(ownerID string, auth AuthHeaders) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := doJSON(http.MethodGet, "/api/v1/records/"+ownerID, nil, auth, &out)
	return out, err
}

// GetRecordRegion fetches the storage region handle of a record.
func GetRecordRegion(ownerID string, auth AuthHeaders) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := doJSON(http.MethodGet, "/api/v1/records/"+ownerID+"/region", nil, auth, &out)
	return out, err
}

// SubmitReShare posts a re-share request, gated by role when role is
// non-empty.
func SubmitReShare(role string, body []byte, auth AuthHeaders) (map[string]interface{}, error) {
	path := "/api/v1/reshare"
	if role != "" {
		path += "/" + role
	}
	var receipt map[string]interface{}
	err := doJSON(http.MethodPost, path, body, auth, &receipt)
	return receipt, err
}

// ListRoles fetches the role names the node gates re-shares for.
func ListRoles() ([]string, error) {
	var out struct {
		Roles []string `json:"roles"`
	}
	err := doJSON(http.MethodGet, "/api/v1/roles", nil, AuthHeaders{}, &out)
	return out.Roles, err
}

// InitCompDef asks the node to register the re-share computation
// definition with its engine.
func InitCompDef(auth AuthHeaders) (map[string]interface{}, error) {
	var receipt map[string]interface{}
	err := doJSON(http.MethodPost, "/api/v1/admin/compdef", nil, auth, &receipt)
	return receipt, err
}

// InspectJobs fetches the in-flight computation offsets (dev endpoint).
func InspectJobs() ([]uint64, error) {
	var out struct {
		InFlight []uint64 `json:"inFlight"`
		Count    int      `json:"count"`
	}
	err := doJSON(http.MethodGet, "/dev/inspect_jobs", nil, AuthHeaders{}, &out)
	return out.InFlight, err
}
