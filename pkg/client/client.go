// Package client is a REST client for the startpage API. The session cookie
// set on login is kept in a cookie jar, and a bearer token can be supplied
// for callers that persist the token themselves.
package client

import (
	"acumenus/startpage-api/internal/model"
	"acumenus/startpage-api/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// APIError is returned for every non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 if err is not an
// *APIError
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}

type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is used as is.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sends t as a bearer token on every request
func WithToken(t string) Option {
	return func(c *Client) { c.token = t }
}

// New returns a client for the API rooted at baseURL, e.g.
// http://localhost:3009/api
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url, %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base: u,
		http: &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}

	for _, o := range opts {
		o(c)
	}

	return c, nil
}

// Token returns the bearer token the client currently sends
func (c *Client) Token() string {
	return c.token
}

// Login authenticates and keeps the returned token for later calls
func (c *Client) Login(ctx context.Context, username, password string) (service.LoginResult, error) {
	var res service.LoginResult

	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &res)
	if err != nil {
		return res, err
	}

	c.token = res.Token
	return res, nil
}

// Logout clears the session on both sides
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.token = ""
	return err
}

func (c *Client) Me(ctx context.Context) (model.PublicUser, error) {
	var u model.PublicUser
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

func (c *Client) Users(ctx context.Context) ([]model.PublicUser, error) {
	var users []model.PublicUser
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) User(ctx context.Context, id string) (model.PublicUser, error) {
	var u model.PublicUser
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &u)
	return u, err
}

func (c *Client) CreateUser(ctx context.Context, in service.NewUser) (model.PublicUser, error) {
	var u model.PublicUser
	err := c.do(ctx, http.MethodPost, "/users", in, &u)
	return u, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, p service.UserPatch) (model.PublicUser, error) {
	var u model.PublicUser
	err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), p, &u)
	return u, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Links(ctx context.Context) ([]model.Link, error) {
	var links []model.Link
	err := c.do(ctx, http.MethodGet, "/links", nil, &links)
	return links, err
}

func (c *Client) Link(ctx context.Context, id string) (model.Link, error) {
	var l model.Link
	err := c.do(ctx, http.MethodGet, "/links/"+url.PathEscape(id), nil, &l)
	return l, err
}

func (c *Client) CreateLink(ctx context.Context, in service.LinkInput) (model.Link, error) {
	var l model.Link
	err := c.do(ctx, http.MethodPost, "/links", in, &l)
	return l, err
}

func (c *Client) UpdateLink(ctx context.Context, id string, in service.LinkInput) (model.Link, error) {
	var l model.Link
	err := c.do(ctx, http.MethodPut, "/links/"+url.PathEscape(id), in, &l)
	return l, err
}

func (c *Client) DeleteLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/links/"+url.PathEscape(id), nil, nil)
}

// UploadAsset sends r as a multipart upload of the given kind
func (c *Client) UploadAsset(ctx context.Context, id string, kind service.AssetKind, filename string, r io.Reader) (model.Link, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("kind", string(kind)); err != nil {
		return model.Link{}, err
	}

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return model.Link{}, err
	}

	if _, err := io.Copy(fw, r); err != nil {
		return model.Link{}, err
	}

	if err := mw.Close(); err != nil {
		return model.Link{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/links/"+url.PathEscape(id)+"/assets", &buf)
	if err != nil {
		return model.Link{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var l model.Link
	err = c.send(req, &l)
	return l, err
}

func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/heartbeat", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body, %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, rd)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response, %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
