package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/terra-clan/hero-quest/internal/game"
	"github.com/terra-clan/hero-quest/internal/models"
)

// Client is a Go SDK for the hero-quest API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new hero-quest client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error envelope returned by the server
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Status, e.Code, e.Message)
}

// Player is returned when a player is created
type Player struct {
	ID    string             `json:"player_id"`
	State models.PlayerState `json:"state"`
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

// CreatePlayer starts a new journey
func (c *Client) CreatePlayer(ctx context.Context) (*Player, error) {
	var p Player
	if err := c.call(ctx, http.MethodPost, "/api/v1/players", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profile retrieves the full player snapshot
func (c *Client) Profile(ctx context.Context, playerID string) (*models.Profile, error) {
	var p models.Profile
	if err := c.call(ctx, http.MethodGet, playerPath(playerID, ""), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Reset clears all progress of a player
func (c *Client) Reset(ctx context.Context, playerID string) error {
	return c.call(ctx, http.MethodDelete, playerPath(playerID, ""), nil, nil)
}

// CompleteQuiz submits quiz answers keyed by question id
func (c *Client) CompleteQuiz(ctx context.Context, playerID string, answers map[int]string) (*models.QuizResult, error) {
	var r models.QuizResult
	req := models.QuizRequest{Answers: answers}
	if err := c.call(ctx, http.MethodPost, playerPath(playerID, "/quiz"), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Missions lists the missions visible to a player
func (c *Client) Missions(ctx context.Context, playerID string) ([]models.MissionView, error) {
	var r struct {
		Missions []models.MissionView `json:"missions"`
	}
	if err := c.call(ctx, http.MethodGet, playerPath(playerID, "/missions"), nil, &r); err != nil {
		return nil, err
	}
	return r.Missions, nil
}

// CompleteMission completes a mission with optional reflection input
func (c *Client) CompleteMission(ctx context.Context, playerID string, missionID int, input string) (*models.MissionResult, error) {
	var r models.MissionResult
	path := playerPath(playerID, fmt.Sprintf("/missions/%d/complete", missionID))
	if err := c.call(ctx, http.MethodPost, path, models.CompleteMissionRequest{Input: input}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Badges lists every badge with the player's unlock state
func (c *Client) Badges(ctx context.Context, playerID string) ([]models.BadgeStatus, error) {
	var r struct {
		Badges []models.BadgeStatus `json:"badges"`
	}
	if err := c.call(ctx, http.MethodGet, playerPath(playerID, "/badges"), nil, &r); err != nil {
		return nil, err
	}
	return r.Badges, nil
}

// CompleteAssessment submits the emotional self-assessment
func (c *Client) CompleteAssessment(ctx context.Context, playerID string, answers map[int]string) (*models.AssessmentResult, error) {
	var r models.AssessmentResult
	req := models.AssessmentRequest{Answers: answers}
	if err := c.call(ctx, http.MethodPost, playerPath(playerID, "/assessment"), req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Progress adds points and unlocks a mission outside the story dialog
func (c *Client) Progress(ctx context.Context, playerID string, req models.ProgressRequest) (*models.PlayerState, error) {
	var s models.PlayerState
	if err := c.call(ctx, http.MethodPost, playerPath(playerID, "/progress"), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// OpenStory opens the story dialog at the player's last node
func (c *Client) OpenStory(ctx context.Context, playerID string) (*game.StoryStep, error) {
	return c.storyCall(ctx, http.MethodPost, playerID, "/story/open")
}

// Story returns the open story dialog
func (c *Client) Story(ctx context.Context, playerID string) (*game.StoryStep, error) {
	return c.storyCall(ctx, http.MethodGet, playerID, "/story")
}

// RevealStory finishes revealing the current node's text
func (c *Client) RevealStory(ctx context.Context, playerID string) (*game.StoryStep, error) {
	return c.storyCall(ctx, http.MethodPost, playerID, "/story/reveal")
}

// Choose selects a choice of the current node
func (c *Client) Choose(ctx context.Context, playerID string, choiceID int) (*game.StoryStep, error) {
	return c.storyCall(ctx, http.MethodPost, playerID, fmt.Sprintf("/story/choices/%d", choiceID))
}

// SkipStory takes the story shortcut
func (c *Client) SkipStory(ctx context.Context, playerID string) (*game.StoryStep, error) {
	return c.storyCall(ctx, http.MethodPost, playerID, "/story/skip")
}

// CloseStory closes the dialog, keeping the player's position
func (c *Client) CloseStory(ctx context.Context, playerID string) (*game.StoryStep, error) {
	return c.storyCall(ctx, http.MethodPost, playerID, "/story/close")
}

func (c *Client) storyCall(ctx context.Context, method, playerID, suffix string) (*game.StoryStep, error) {
	var step game.StoryStep
	if err := c.call(ctx, method, playerPath(playerID, suffix), nil, &step); err != nil {
		return nil, err
	}
	return &step, nil
}

func playerPath(playerID, suffix string) string {
	return "/api/v1/players/" + playerID + suffix
}

// call performs a request and unwraps the response envelope into out
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("HTTP %d: failed to unmarshal response: %w", resp.StatusCode, err)
	}

	if !result.Success {
		apiErr := result.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "unknown", Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}
