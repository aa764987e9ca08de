package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"secureshare/internal/client/models"
	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/rbac"
)

// HTTPClient implements Client over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string

	// onUnauthorized fires once per request that came back with 401.
	onUnauthorized func()
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient constructs a client for the given base URL, e.g.
// "https://localhost:8443". The onUnauthorized hook may be nil.
func NewHTTPClient(baseURL string, onUnauthorized func()) *HTTPClient {
	return &HTTPClient{
		baseURL:        baseURL,
		http:           &http.Client{Timeout: 60 * time.Second},
		onUnauthorized: onUnauthorized,
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// statusError carries a non-2xx response for endpoint-specific mapping.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.code, e.message)
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// It maps transport failures to common.ErrUnavailable and 401 to
// common.ErrUnauthorized, invoking the onUnauthorized hook exactly once for
// the request. Other non-2xx statuses come back as *statusError for the
// caller to map.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return common.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return &statusError{code: resp.StatusCode, message: eb.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// mapStatus converts a *statusError to a sentinel via the given table, or
// returns the error unchanged.
func mapStatus(err error, table map[int]error) error {
	se, ok := err.(*statusError)
	if !ok {
		return err
	}
	if mapped, ok := table[se.code]; ok {
		return mapped
	}
	return err
}

// ---- wire DTOs ----

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userJSON) toIdentity() (*models.Identity, error) {
	role, err := rbac.ParseRole(u.Role)
	if err != nil {
		return nil, err
	}
	return &models.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: role}, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	VerificationID string `json:"verification_id"`
}

type verifyRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type verifyResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

type createShareRequest struct {
	FileID     string `json:"file_id"`
	GranteeID  string `json:"grantee_id"`
	Permission string `json:"permission"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type shareGrantJSON struct {
	Token      string    `json:"token"`
	FileID     string    `json:"file_id"`
	GranteeID  string    `json:"grantee_id"`
	Permission string    `json:"permission"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type sharedFileJSON struct {
	Record     models.FileRecord `json:"record"`
	Envelope   *cryptox.Envelope `json:"envelope"`
	Permission string            `json:"permission"`
}

// ---- auth ----

func (c *HTTPClient) Register(ctx context.Context, name, email string, password []byte) error {
	err := c.do(ctx, http.MethodPost, "/api/register",
		registerRequest{Name: name, Email: email, Password: string(password)}, nil)
	return mapStatus(err, map[int]error{
		http.StatusConflict:   common.ErrAlreadyExists,
		http.StatusBadRequest: common.ErrValidation,
	})
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/login",
		loginRequest{Email: email, Password: string(password)}, &resp)
	if err != nil {
		return "", err
	}
	return resp.VerificationID, nil
}

func (c *HTTPClient) VerifyLogin(ctx context.Context, verificationID, code string) (*models.Identity, error) {
	var resp verifyResponse
	err := c.do(ctx, http.MethodPost, "/api/verify",
		verifyRequest{VerificationID: verificationID, Code: code}, &resp)
	if err != nil {
		return nil, mapStatus(err, map[int]error{
			http.StatusBadRequest: common.ErrInvalidCode,
			http.StatusGone:       common.ErrVerificationExpired,
		})
	}

	identity, err := resp.User.toIdentity()
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return identity, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	c.SetToken("")
	return err
}

// ---- files ----

func (c *HTTPClient) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	var files []models.FileRecord
	if err := c.do(ctx, http.MethodGet, "/api/files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Upload sends the complete envelope in one request, reporting transmission
// progress as a non-decreasing percentage that reaches 100 before Upload
// returns successfully.
func (c *HTTPClient) Upload(ctx context.Context, env *cryptox.Envelope, onProgress func(percent int)) (*models.FileRecord, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	pr := &progressReader{r: bytes.NewReader(data), total: int64(len(data)), fn: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", pr)
	if err != nil {
		return nil, err
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", "application/json")

	var rec models.FileRecord
	if err := c.send(req, &rec); err != nil {
		return nil, mapStatus(err, map[int]error{
			http.StatusForbidden:  common.ErrForbidden,
			http.StatusBadRequest: common.ErrValidation,
		})
	}

	pr.finish()
	return &rec, nil
}

func (c *HTTPClient) Download(ctx context.Context, fileID string) (*cryptox.Envelope, error) {
	var env cryptox.Envelope
	err := c.do(ctx, http.MethodGet, "/api/files/"+fileID, nil, &env)
	if err != nil {
		return nil, mapStatus(err, map[int]error{
			http.StatusNotFound:  common.ErrNotFound,
			http.StatusForbidden: common.ErrForbidden,
		})
	}
	return &env, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID string) error {
	err := c.do(ctx, http.MethodDelete, "/api/files/"+fileID, nil, nil)
	return mapStatus(err, map[int]error{
		http.StatusNotFound:  common.ErrNotFound,
		http.StatusForbidden: common.ErrForbidden,
	})
}

// ---- shares ----

func (c *HTTPClient) CreateShareGrant(ctx context.Context, fileID, granteeID string, perm models.GrantPermission, ttlSeconds int) (*models.ShareGrant, error) {
	var resp shareGrantJSON
	err := c.do(ctx, http.MethodPost, "/api/shares", createShareRequest{
		FileID:     fileID,
		GranteeID:  granteeID,
		Permission: string(perm),
		TTLSeconds: ttlSeconds,
	}, &resp)
	if err != nil {
		return nil, mapStatus(err, map[int]error{
			http.StatusBadRequest: common.ErrValidation,
			http.StatusForbidden:  common.ErrForbidden,
			http.StatusNotFound:   common.ErrNotFound,
		})
	}

	permission, err := models.ParseGrantPermission(resp.Permission)
	if err != nil {
		return nil, err
	}
	return &models.ShareGrant{
		Token:      resp.Token,
		FileID:     resp.FileID,
		GranteeID:  resp.GranteeID,
		Permission: permission,
		ExpiresAt:  resp.ExpiresAt,
	}, nil
}

func (c *HTTPClient) ResolveShareLink(ctx context.Context, token string) (*models.SharedFile, error) {
	var resp sharedFileJSON
	err := c.do(ctx, http.MethodGet, "/api/shares/"+token, nil, &resp)
	if err != nil {
		return nil, mapStatus(err, map[int]error{
			http.StatusNotFound: common.ErrGrantNotFound,
			http.StatusGone:     common.ErrGrantExpired,
		})
	}

	permission, err := models.ParseGrantPermission(resp.Permission)
	if err != nil {
		return nil, err
	}
	return &models.SharedFile{
		Record:     resp.Record,
		Envelope:   resp.Envelope,
		Permission: permission,
	}, nil
}

// ---- users ----

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.Identity, error) {
	var users []userJSON
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}

	result := make([]models.Identity, 0, len(users))
	for _, u := range users {
		identity, err := u.toIdentity()
		if err != nil {
			return nil, err
		}
		result = append(result, *identity)
	}
	return result, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID string) error {
	err := c.do(ctx, http.MethodDelete, "/api/admin/users/"+userID, nil, nil)
	return mapStatus(err, map[int]error{
		http.StatusNotFound:  common.ErrNotFound,
		http.StatusForbidden: common.ErrForbidden,
	})
}
