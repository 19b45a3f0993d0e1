package client

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/picogrid/brightfleet/pkg/models"
)

// SaveResponse is the body of a successful /api/save call.
type SaveResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewFleetClient creates a client for baseURL with optional API key authentication.
// This is a convenience wrapper around NewClient
func NewFleetClient(baseURL string, apiKey string) (*Fleet, error) {
	return NewClient(Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 30 * time.Second,
	})
}

// GetAPIKey retrieves the API key from an environment variable
func GetAPIKey(envVarName string) string {
	if envVarName == "" {
		return ""
	}
	return os.Getenv(envVarName)
}

// Load fetches the stored document.
func (c *Fleet) Load(ctx context.Context) (*models.Document, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/load", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	var doc models.Document
	if err := decodeResponse(resp, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &doc, nil
}

// Save replaces the stored document.
func (c *Fleet) Save(ctx context.Context, doc *models.Document) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/save", doc)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	var result SaveResponse
	if err := decodeResponse(resp, &result); err != nil {
		return fmt.Errorf("failed to decode save response: %w", err)
	}
	if result.Status != "success" {
		return fmt.Errorf("save rejected: %s", result.Message)
	}
	return nil
}

// ValidateConnection checks the server answers the load endpoint
func (c *Fleet) ValidateConnection(ctx context.Context) error {
	if _, err := c.Load(ctx); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	return nil
}
