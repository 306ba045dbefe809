// Package threadclient is the Go client for the comment thread API plus a
// small local cache that mirrors how the site's UI tracks thread state: a
// pure reducer over typed actions, driven by a controller that pairs each
// successful request with the action describing its effect.
package threadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sakif/portfolio/internal/model"
)

// APIError is a non-2xx response decoded into the server's error envelope.
type APIError struct {
	Status  int    // HTTP status code
	Type    string // machine-readable error type, e.g. "forbidden"
	Message string // human-readable description
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Type, e.Message)
}

// Client talks to the portfolio API over HTTP. The zero value is not
// usable; create one with New.
//
// Requests are authenticated with a bearer header when a token is set.
// There are no retries: a failed mutation surfaces immediately so the
// caller can decide, the same way the UI reports and stops.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the API at baseURL (no trailing slash).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the session token used on subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current session token, empty if signed out.
func (c *Client) Token() string { return c.token }

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type authResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login signs in with email + password and stores the returned token on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

// Register creates a manual account and stores the returned token.
func (c *Client) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register",
		credentials{Email: email, Username: username, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

// FetchComments retrieves the thread, newest first, replies inline.
func (c *Client) FetchComments(ctx context.Context) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.do(ctx, http.MethodGet, "/api/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

type contentBody struct {
	Content string `json:"content"`
}

// PostComment creates a comment.
func (c *Client) PostComment(ctx context.Context, content string) (*model.Comment, error) {
	var comment model.Comment
	err := c.do(ctx, http.MethodPost, "/api/comments", contentBody{Content: content}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment replaces a comment's body.
func (c *Client) UpdateComment(ctx context.Context, commentID, content string) (*model.Comment, error) {
	var comment model.Comment
	err := c.do(ctx, http.MethodPatch, "/api/comments/"+commentID,
		contentBody{Content: content}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment deletes a comment and its replies.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+commentID, nil, nil)
}

// PostReply creates a reply under a comment.
func (c *Client) PostReply(ctx context.Context, commentID, content string) (*model.Reply, error) {
	var reply model.Reply
	err := c.do(ctx, http.MethodPost, "/api/comments/"+commentID+"/replies",
		contentBody{Content: content}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// UpdateReply replaces a reply's body.
func (c *Client) UpdateReply(ctx context.Context, commentID, replyID, content string) (*model.Reply, error) {
	var reply model.Reply
	err := c.do(ctx, http.MethodPatch, "/api/comments/"+commentID+"/replies/"+replyID,
		contentBody{Content: content}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// DeleteReply deletes a reply.
func (c *Client) DeleteReply(ctx context.Context, commentID, replyID string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+commentID+"/replies/"+replyID, nil, nil)
}

// do issues one request and decodes the response. A non-2xx status becomes
// an *APIError carrying the server's error envelope.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("threadclient: encoding request body: %w", err)
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("threadclient: building request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("threadclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Type = envelope.Error
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("threadclient: decoding response: %w", err)
		}
	}
	return nil
}
