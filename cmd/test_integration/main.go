package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

// Manual smoke test against a running server:
//
//	go run ./cmd/test_integration shelf.jpg
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: test_integration <shelf-photo.jpg>")
		os.Exit(1)
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Health
	fmt.Println("1. Checking Health...")
	if !sendRequest("GET", "/api/v1/health", nil) {
		fmt.Println("FAILED: Health check")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health check")

	// 2. Detect
	fmt.Println("2. Detecting Titles...")
	imageData, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading image: %v\n", err)
		os.Exit(1)
	}

	payload := map[string]interface{}{
		"image_base64": base64.StdEncoding.EncodeToString(imageData),
		"media_type":   "image/jpeg",
	}

	if !sendRequest("POST", "/api/v1/detect?diagnostics=true", payload) {
		fmt.Println("FAILED: Detect")
		os.Exit(1)
	}
	fmt.Println("PASSED: Detect")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
