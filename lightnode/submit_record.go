// Minimal record submitter for environments without the full CLI: one
// stdlib-only binary that posts a pre-signed envelope to a node.
package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
)

func main() {
	// Read provider token from environment
	providerToken := os.Getenv("MEDISHARE_PROVIDER_TOKEN")
	if providerToken == "" {
		fmt.Println("MEDISHARE_PROVIDER_TOKEN not set in environment")
		os.Exit(1)
	}

	// API auth: a minted JWT or the node API key
	apiToken := os.Getenv("MEDISHARE_API_TOKEN")
	apiKey := os.Getenv("MEDISHARE_API_KEY")
	if apiToken == "" && apiKey == "" {
		fmt.Println("Neither MEDISHARE_API_TOKEN nor MEDISHARE_API_KEY set in environment")
		os.Exit(1)
	}

	nodeURL := os.Getenv("MEDISHARE_NODE_URL")
	if nodeURL == "" {
		nodeURL = "http://localhost:8080"
	}

	envelopePath := "record_envelope.json"
	if len(os.Args) > 1 {
		envelopePath = os.Args[1]
	}
	jsonData, err := os.ReadFile(envelopePath)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", envelopePath, err)
		os.Exit(1)
	}

	req, err := http.NewRequest("POST", nodeURL+"/api/v1/records", bytes.NewReader(jsonData))
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Provider-Token", providerToken)
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Println(string(body))
}
