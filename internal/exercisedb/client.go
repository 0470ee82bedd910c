package exercisedb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default request timeout when the caller did not configure one.
const defaultTimeout = 10 * time.Second

// CatalogExercise is a single entry returned by the ExerciseDB API.
type CatalogExercise struct {
	ExternalID string `json:"id"`
	Name       string `json:"name"`
	BodyPart   string `json:"bodyPart"`
	Equipment  string `json:"equipment"`
	Target     string `json:"target"`
	GifURL     string `json:"gifUrl"`
}

// Client searches the public exercise catalog.
type Client interface {
	SearchByName(ctx context.Context, query string, limit int) ([]CatalogExercise, error)
	ListByBodyPart(ctx context.Context, bodyPart string, limit int) ([]CatalogExercise, error)
}

type apiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an ExerciseDB API client. The key is sent as a
// RapidAPI header on every request.
func NewClient(baseURL, apiKey string, httpClient *http.Client) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &apiClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// SearchByName looks up catalog exercises whose name contains the query.
func (c *apiClient) SearchByName(ctx context.Context, query string, limit int) ([]CatalogExercise, error) {
	endpoint := fmt.Sprintf("%s/exercises/name/%s", c.baseURL, url.PathEscape(query))
	return c.fetch(ctx, endpoint, limit)
}

// ListByBodyPart lists catalog exercises for one body part token (e.g.
// "chest", "upper legs").
func (c *apiClient) ListByBodyPart(ctx context.Context, bodyPart string, limit int) ([]CatalogExercise, error) {
	endpoint := fmt.Sprintf("%s/exercises/bodyPart/%s", c.baseURL, url.PathEscape(bodyPart))
	return c.fetch(ctx, endpoint, limit)
}

func (c *apiClient) fetch(ctx context.Context, endpoint string, limit int) ([]CatalogExercise, error) {
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exercisedb request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exercisedb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exercisedb returned status %d: %s", resp.StatusCode, respBytes)
	}

	var exercises []CatalogExercise
	if err := json.Unmarshal(respBytes, &exercises); err != nil {
		return nil, fmt.Errorf("unmarshal exercisedb response: %w", err)
	}
	return exercises, nil
}
