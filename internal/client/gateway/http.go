package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avolkovs/keepsake/internal/common"
)

// HTTPClient implements Gateway over the server's REST surface.
//
// Tokens are held in memory only. On a 401 the client spends its refresh
// token once to obtain a fresh pair and retries the request; a second 401
// surfaces to the caller as common.ErrorUnauthorized.
type HTTPClient struct {
	baseURL string
	client  *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *HTTPClient) setTokens(pair tokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
}

func (c *HTTPClient) tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Authenticated reports whether the client currently holds an access token.
func (c *HTTPClient) Authenticated() bool {
	access, _ := c.tokens()
	return access != ""
}

// Logout drops the stored token pair.
func (c *HTTPClient) Logout() {
	c.setTokens(tokenPair{})
}

// errorFromStatus maps server status codes onto the shared sentinels so
// callers can use errors.Is regardless of the transport.
func errorFromStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return common.ErrorInvalidInput
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrPasswordRequired
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	case http.StatusGone:
		return common.ErrorExpired
	default:
		return common.ErrorInternal
	}
}

// do performs one JSON request. When authed is true the stored access
// token is attached and a single refresh-and-retry is attempted on 401.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, authed bool) error {

	err := c.doOnce(ctx, method, path, body, out, authed)
	if err == nil || !authed {
		return err
	}

	if _, refresh := c.tokens(); errors.Is(err, common.ErrorUnauthorized) && refresh != "" {
		if rerr := c.refresh(ctx); rerr != nil {
			return err
		}
		return c.doOnce(ctx, method, path, body, out, authed)
	}

	return err
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body, out any, authed bool) error {

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		access, _ := c.tokens()
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+access)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorFromStatus(resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// refresh spends the refresh token for a new pair. Refresh tokens are
// single use server-side, so the stored pair is replaced wholesale.
func (c *HTTPClient) refresh(ctx context.Context) error {
	_, refresh := c.tokens()

	var pair tokenPair
	err := c.doOnce(ctx, http.MethodPost, "/api/user/refresh",
		map[string]string{"refresh_token": refresh}, &pair, false)
	if err != nil {
		return err
	}

	c.setTokens(pair)
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, userName, email, password string) error {
	var pair tokenPair
	err := c.doOnce(ctx, http.MethodPost, "/api/user/register", map[string]string{
		"user_name": userName,
		"email":     email,
		"password":  password,
	}, &pair, false)
	if err != nil {
		return err
	}
	c.setTokens(pair)
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, userName, password string) error {
	var pair tokenPair
	err := c.doOnce(ctx, http.MethodPost, "/api/user/login", map[string]string{
		"user_name": userName,
		"password":  password,
	}, &pair, false)
	if err != nil {
		return err
	}
	c.setTokens(pair)
	return nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/user/password", map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	}, nil, true)
}

func (c *HTTPClient) GetTree(ctx context.Context) (string, error) {
	var resp struct {
		FileTree string `json:"file_tree"`
	}
	if err := c.do(ctx, http.MethodGet, "/filetree", nil, &resp, true); err != nil {
		return "", err
	}
	return resp.FileTree, nil
}

func (c *HTTPClient) PutTree(ctx context.Context, tree string) error {
	return c.do(ctx, http.MethodPost, "/filetree",
		map[string]string{"file_tree": tree}, nil, true)
}

func (c *HTTPClient) GetContent(ctx context.Context, path string) (string, error) {
	var resp struct {
		EncodedContent string `json:"encoded_content"`
	}
	q := "/content?file_path=" + url.QueryEscape(path)
	if err := c.do(ctx, http.MethodGet, q, nil, &resp, true); err != nil {
		return "", err
	}
	return resp.EncodedContent, nil
}

func (c *HTTPClient) PutContent(ctx context.Context, path, content string) error {
	return c.do(ctx, http.MethodPost, "/content", map[string]string{
		"file_path":       path,
		"encoded_content": content,
	}, nil, true)
}

func (c *HTTPClient) DeleteContent(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodPost, "/remove_file",
		map[string]string{"file_path": path}, nil, true)
}

func (c *HTTPClient) Rename(ctx context.Context, oldPath, newPath string) (string, error) {
	var resp struct {
		Success  bool   `json:"success"`
		FileTree string `json:"file_tree"`
	}
	err := c.do(ctx, http.MethodPost, "/rename", map[string]string{
		"old_path": oldPath,
		"new_path": newPath,
	}, &resp, true)
	if err != nil {
		return "", err
	}
	return resp.FileTree, nil
}

func (c *HTTPClient) CreateShare(ctx context.Context, req ShareRequest) (string, error) {
	var resp struct {
		Identifier string `json:"identifier"`
	}
	err := c.do(ctx, http.MethodPost, "/api/share", map[string]string{
		"strategy":        req.Strategy,
		"max_date":        req.MaxDate.Format(time.RFC3339),
		"password":        req.Password,
		"iv":              req.IV,
		"encoded_content": req.EncodedContent,
	}, &resp, true)
	if err != nil {
		return "", err
	}
	return resp.Identifier, nil
}

func (c *HTTPClient) ListShares(ctx context.Context) ([]ShareInfo, error) {
	var resp struct {
		Shares []ShareInfo `json:"shares"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/share", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Shares, nil
}

func (c *HTTPClient) DeleteShare(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/share/"+url.PathEscape(id), nil, nil, true)
}

func (c *HTTPClient) FetchShare(ctx context.Context, id, password string) (string, string, error) {
	var body map[string]string
	if password != "" {
		body = map[string]string{"password": password}
	}

	var resp struct {
		Content string `json:"content"`
		IV      string `json:"iv"`
	}
	err := c.doOnce(ctx, http.MethodPost, "/s/"+url.PathEscape(id), body, &resp, false)
	if err != nil {
		return "", "", err
	}
	return resp.Content, resp.IV, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doOnce(ctx, http.MethodGet, "/api/health", nil, nil, false)
}
