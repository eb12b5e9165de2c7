package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// The chatbot is an external vector-search service; MediaHub only proxies
// requests to it and never touches embeddings itself.

var chatbotHTTP = &http.Client{Timeout: 30 * time.Second}

func chatbotURL(path string) string {
	base := os.Getenv("CHATBOT_API_URL")
	if base == "" {
		base = "http://localhost:8000"
	}
	return base + path
}

// ChatbotQuery forwards a user question and returns the upstream JSON as-is.
func ChatbotQuery(payload map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode chatbot request")
	}

	resp, err := chatbotHTTP.Post(chatbotURL("/query"), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "chatbot request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chatbot response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatbot returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode chatbot response")
	}
	return result, nil
}

// ChatbotGet proxies a read-only endpoint (health, sources).
func ChatbotGet(path string) (map[string]interface{}, error) {
	resp, err := chatbotHTTP.Get(chatbotURL(path))
	if err != nil {
		return nil, errors.Wrap(err, "chatbot request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chatbot response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatbot returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode chatbot response")
	}
	return result, nil
}
