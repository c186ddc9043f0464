package aigen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profile-nft-backend/internal/payment"
)

// ErrEmptyPrompt is returned before any network call when the prompt is blank.
var ErrEmptyPrompt = errors.New("prompt is required")

// ErrUnverifiedPayment is returned before any network call when the supplied
// receipt is missing or unverified. The gateway must never be reachable on
// an unverified payment.
var ErrUnverifiedPayment = errors.New("payment not verified")

// ErrNoImage is returned when the provider responded successfully but
// produced zero image outputs (text-only completions are possible).
var ErrNoImage = errors.New("no image was generated")

// Image is the raw generation output. Display encoding (data URLs) is the
// caller's concern.
type Image struct {
	Bytes     []byte
	MediaType string
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Data []struct {
		B64JSON   string `json:"b64_json"`
		MediaType string `json:"media_type,omitempty"`
	} `json:"data"`
}

// GenerateImage produces a profile image for the prompt. The payment receipt
// gates the call: an unverified receipt fails fast without contacting the
// provider.
func (c *Client) GenerateImage(ctx context.Context, prompt string, receipt *payment.Receipt) (*Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if receipt == nil || !receipt.Verified {
		return nil, ErrUnverifiedPayment
	}

	styled := fmt.Sprintf("Create a unique profile picture: %s. Style: vibrant, artistic, suitable for a social media avatar.", prompt)

	jsonData, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: styled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to generate image: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, file := range result.Data {
		mediaType := file.MediaType
		if mediaType == "" {
			mediaType = "image/png"
		}
		if !strings.HasPrefix(mediaType, "image/") {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(file.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image payload: %w", err)
		}

		return &Image{Bytes: data, MediaType: mediaType}, nil
	}

	return nil, ErrNoImage
}
