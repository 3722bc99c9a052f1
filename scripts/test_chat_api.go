package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Manual smoke test against a locally running server:
//
//	go run scripts/test_chat_api.go
//
// Requires JWT_SECRET in the environment (or .env) matching the server's.
const baseURL = "http://localhost:3000/api"

func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func signToken(secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 180 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	return resp, raw, err
}

func main() {
	if err := godotenv.Load(); err != nil {
		color.Yellow("No .env file found, using system env")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		color.Red("JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := signToken(secret)
	if err != nil {
		color.Red("Failed to sign token: %v", err)
		os.Exit(1)
	}

	messages := []string{
		"I am so happy today, I finally got the job!",
		"Although I'm a bit nervous about the first day.",
	}

	for i, msg := range messages {
		color.Cyan("=== Turn %d: POST /chat ===", i+1)
		resp, raw, err := sendRequest("POST", "/chat", token, map[string]string{"message": msg})
		if err != nil {
			color.Red("Request failed: %v", err)
			os.Exit(1)
		}
		if resp.StatusCode != http.StatusOK {
			color.Red("Unexpected status %d", resp.StatusCode)
			prettyPrint(raw)
			os.Exit(1)
		}
		prettyPrint(raw)
	}

	color.Cyan("=== GET /chat/history ===")
	resp, raw, err := sendRequest("GET", "/chat/history", token, nil)
	if err != nil {
		color.Red("Request failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		color.Red("Unexpected status %d", resp.StatusCode)
		prettyPrint(raw)
		os.Exit(1)
	}
	prettyPrint(raw)

	color.Green("Smoke test passed")
}
