package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is returned whenever the remote API answers outside the 2xx range.
type APIError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("status code: %d", e.StatusCode)
}

//
// Wire payloads
//

// UserPayload is the registration/login body sent to the API.
type UserPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserData is a created user together with its token pair.
type UserData struct {
	UserPayload
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// PostPayload is the post-creation body sent to the API.
type PostPayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Post is the slice of the API's post representation the bot cares about.
type Post struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Client drives the blog API over HTTP. All calls are sequential and
// blocking; concurrency, retries, and idempotency are out of scope.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient constructs a Client for the API rooted at baseURL
// (e.g. "http://localhost:8080"). A nil httpc gets a 30s-timeout default.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

// CreateUser registers the payload, then logs in with the same credentials
// and returns the identity with its token pair.
func (c *Client) CreateUser(ctx context.Context, payload UserPayload) (*UserData, error) {
	if err := c.request(ctx, http.MethodPost, "/api/users/register", payload, "", nil); err != nil {
		return nil, err
	}
	login := map[string]string{"email": payload.Email, "password": payload.Password}
	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.request(ctx, http.MethodPost, "/api/users/login", login, "", &pair); err != nil {
		return nil, err
	}
	return &UserData{
		UserPayload:  payload,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// CreatePost submits a new post on behalf of user.
func (c *Client) CreatePost(ctx context.Context, user *UserData, payload PostPayload) (*Post, error) {
	var p Post
	if err := c.request(ctx, http.MethodPost, "/api/posts/", payload, user.AccessToken, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LikePost submits a like for postID on behalf of user.
func (c *Client) LikePost(ctx context.Context, user *UserData, postID string) error {
	return c.request(ctx, http.MethodPost, "/api/posts/"+postID+"/like", nil, user.AccessToken, nil)
}

// request performs one JSON round trip. A non-2xx response yields *APIError;
// when out is non-nil the response body is decoded into it.
func (c *Client) request(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{StatusCode: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
