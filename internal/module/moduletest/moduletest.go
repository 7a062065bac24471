// Package moduletest holds the token fake and HTTP helpers shared by the
// module handler tests.
package moduletest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/jwt"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// ErrInvalidToken is returned for tokens the fake never issued.
var ErrInvalidToken = errors.New("token is invalid")

// JWT is an in-memory jwt.Service. Tokens are opaque strings mapped to
// their claims.
type JWT struct {
	// GenerateErr, when set, is returned by GenerateToken.
	GenerateErr error

	mu      sync.Mutex
	seq     int
	tokens  map[string]*jwt.Token
	revoked []string
}

var _ jwt.Service = (*JWT)(nil)

// NewJWT returns an empty token service.
func NewJWT() *JWT {
	return &JWT{tokens: make(map[string]*jwt.Token)}
}

func (j *JWT) GenerateToken(userID string, roles []string, expiresIn time.Duration) (string, error) {
	if j.GenerateErr != nil {
		return "", j.GenerateErr
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	raw := fmt.Sprintf("token-%d-%s", j.seq, userID)
	j.tokens[raw] = &jwt.Token{
		UserID:    userID,
		Roles:     append([]string(nil), roles...),
		ExpiresAt: time.Now().Add(expiresIn),
	}
	return raw, nil
}

func (j *JWT) ValidateToken(raw string) (*jwt.Token, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	tok, ok := j.tokens[raw]
	if !ok {
		return nil, ErrInvalidToken
	}
	return tok, nil
}

func (j *JWT) ValidateAndParse(raw string) (*jwt.Token, error) { return j.ValidateToken(raw) }
func (j *JWT) ParseToken(raw string) (*jwt.Token, error)       { return j.ValidateToken(raw) }

func (j *JWT) RefreshToken(raw string) (string, error) {
	return j.RefreshTokenExtend(raw, time.Hour)
}

func (j *JWT) RefreshTokenExtend(raw string, d time.Duration) (string, error) {
	tok, err := j.ValidateToken(raw)
	if err != nil {
		return "", err
	}
	return j.GenerateToken(tok.UserID, tok.Roles, d)
}

func (j *JWT) RevokeToken(raw string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.tokens, raw)
	return nil
}

func (j *JWT) IsTokenRevoked(raw string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.tokens[raw]
	return !ok
}

func (j *JWT) RevokeAllUserTokens(userID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for raw, tok := range j.tokens {
		if tok.UserID == userID {
			delete(j.tokens, raw)
		}
	}
	j.revoked = append(j.revoked, userID)
	return nil
}

func (j *JWT) Close() {}

// Revoked lists the users whose tokens were revoked, in call order.
func (j *JWT) Revoked() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.revoked...)
}

// Issue returns a valid token for userID holding role.
func (j *JWT) Issue(t testing.TB, userID string, role domain.Role) string {
	t.Helper()
	raw, err := j.GenerateToken(userID, []string{string(role)}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

// Router returns a test engine with mount applied to an authenticated
// /api/v1 group.
func Router(tokens middleware.TokenValidator, mount func(api *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mount(r.Group("/api/v1", middleware.Authenticate(tokens)))
	return r
}

// Response is a recorded envelope response.
type Response struct {
	Code int
	Body map[string]any
	Raw  []byte
}

// Success returns the envelope success flag.
func (r Response) Success() bool {
	ok, _ := r.Body["success"].(bool)
	return ok
}

// Message returns the envelope message.
func (r Response) Message() string {
	msg, _ := r.Body["message"].(string)
	return msg
}

// Data returns the envelope data as an object, or nil.
func (r Response) Data() map[string]any {
	data, _ := r.Body["data"].(map[string]any)
	return data
}

// List returns the envelope data as an array, or nil.
func (r Response) List() []any {
	data, _ := r.Body["data"].([]any)
	return data
}

// Do sends a JSON request. body may be nil, a raw JSON string or any value
// to marshal. An empty token sends no Authorization header.
func Do(t testing.TB, h http.Handler, method, path, token string, body any) Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, h, req, token)
}

// File is a part of a multipart upload.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Upload sends a multipart/form-data request with fields and files.
func Upload(t testing.TB, h http.Handler, method, path, token string, fields map[string]string, files ...File) Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		header.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return serve(t, h, req, token)
}

func serve(t testing.TB, h http.Handler, req *http.Request, token string) Response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := Response{Code: rec.Code, Raw: rec.Body.Bytes()}
	if len(res.Raw) > 0 {
		if err := json.Unmarshal(res.Raw, &res.Body); err != nil {
			t.Fatalf("decode response %q: %v", res.Raw, err)
		}
	}
	return res
}
