// Package client provides an HTTP client for the DevLink API. It mirrors
// the server's route surface one to one and decodes field-keyed error
// bodies into APIError values.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Client is a client for the DevLink API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New creates a new DevLink API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FieldErrors maps a field name to a human-readable message, matching the
// API's validation and conflict response bodies.
type FieldErrors map[string]string

// APIError is a non-2xx API response.
type APIError struct {
	Status int
	Fields FieldErrors
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("api error: status %d (%s)", e.Status, strings.Join(parts, "; "))
}

// Token returns the stored bearer token, as issued by Login.
func (c *Client) Token() string {
	return c.token
}

// SetToken installs a previously issued token ("Bearer ..." included).
func (c *Client) SetToken(token string) {
	c.token = token
}

// do sends a JSON request and decodes the JSON response into out (when
// non-nil). Error bodies are decoded into APIError.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var fields FieldErrors
		if json.Unmarshal(respBody, &fields) == nil {
			apiErr.Fields = fields
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/users/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the issued token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	req := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", req, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// CurrentUser returns the account the stored token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/current", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MyProfile returns the caller's profile.
func (c *Client) MyProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AllProfiles returns every profile.
func (c *Client) AllProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile/all", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ProfileByHandle looks a profile up by its public handle.
func (c *Client) ProfileByHandle(ctx context.Context, handle string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile/handle/"+handle, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileByUserID looks a profile up by its owner's user ID.
func (c *Client) ProfileByUserID(ctx context.Context, userID uint) (*Profile, error) {
	var profile Profile
	path := fmt.Sprintf("/api/profile/user/%d", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates or updates the caller's profile.
func (c *Client) UpsertProfile(ctx context.Context, req *ProfileRequest) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/api/profile", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AddExperience appends a work history entry to the caller's profile.
func (c *Client) AddExperience(ctx context.Context, req *ExperienceRequest) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/api/profile/experience", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteExperience removes a work history entry by ID.
func (c *Client) DeleteExperience(ctx context.Context, id uint) (*Profile, error) {
	var profile Profile
	path := fmt.Sprintf("/api/profile/experience/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AddEducation appends an education entry to the caller's profile.
func (c *Client) AddEducation(ctx context.Context, req *EducationRequest) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/api/profile/education", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteEducation removes an education entry by ID.
func (c *Client) DeleteEducation(ctx context.Context, id uint) (*Profile, error) {
	var profile Profile
	path := fmt.Sprintf("/api/profile/education/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteAccount removes the caller's profile and account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/profile", nil, nil)
}

// Posts returns the feed, newest first.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post returns a single post with its likes and comments.
func (c *Client) Post(ctx context.Context, id uint) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/api/posts/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost publishes a post as the caller.
func (c *Client) CreatePost(ctx context.Context, text string) (*Post, error) {
	var post Post
	req := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/api/posts", req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes the caller's own post.
func (c *Client) DeletePost(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/api/posts/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// LikePost likes a post on behalf of the caller.
func (c *Client) LikePost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/api/posts/like/%d", id)
	if err := c.do(ctx, http.MethodPost, path, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UnlikePost removes the caller's like from a post.
func (c *Client) UnlikePost(ctx context.Context, id uint) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/api/posts/unlike/%d", id)
	if err := c.do(ctx, http.MethodPost, path, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID uint, text string) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/api/posts/comment/%d", postID)
	req := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, path, req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeleteComment removes a comment from a post.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID uint) (*Post, error) {
	var post Post
	path := fmt.Sprintf("/api/posts/comment/%d/%d", postID, commentID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}
