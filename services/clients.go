package services

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// DefaultHttpClient returns the shared HTTP client used for fetching
// remote contracts.
var DefaultHttpClient = sync.OnceValue(func() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
})

// DefaultGeminiClient returns the shared Gemini client backing the contract
// assistant.
var DefaultGeminiClient = sync.OnceValue(func() *genai.Client {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		panic("GEMINI_API_KEY is not set, please set it in the environment")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		panic("failed to create Gemini client: " + err.Error())
	}

	return client
})

// DefaultOpenAIClient returns the shared OpenAI client used for clause
// embeddings. OPENAI_BASE_URL allows pointing it at a compatible gateway.
var DefaultOpenAIClient = sync.OnceValue(func() *openai.Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		panic("OPENAI_API_KEY is not set, please set it in the environment")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	config := openai.DefaultConfig(apiKey)

	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(config)
})
