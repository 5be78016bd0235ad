package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	cfg := &config.Config{
		Port:            "0",
		SessionSecret:   "test-secret",
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 2,
		Env:             "test",
		RedisURL:        "localhost:6379",
	}
	s, err := NewServerWithDeps(cfg, testutil.NewTestDB(t), nil)
	require.NoError(t, err)
	return s, s.BuildApp()
}

// browser carries session cookies across requests like a real client.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, ck := range resp.Cookies() {
		b.cookies[ck.Name] = ck
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) postForm(path string, form url.Values) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, fileField, filename string, fileContent []byte) *http.Response {
	b.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.NoError(b.t, err)
		_, err = fw.Write(fileContent)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return string(body)
}

// registerUser creates an account directly and returns the user. The shared
// password is "password12".
func registerUser(t *testing.T, s *Server, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password12"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

// login signs the browser in as the given user.
func login(t *testing.T, b *browser, email string) {
	t.Helper()
	resp := b.postForm("/login", url.Values{
		"email":    {email},
		"password": {"password12"},
	})
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	_, app := newTestServer(t)
	resp := newBrowser(t, app).get("/health")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthRequiredRedirectsGuests(t *testing.T) {
	t.Parallel()

	_, app := newTestServer(t)
	b := newBrowser(t, app)

	for _, path := range []string{"/posts/create", "/posts/1/edit"} {
		resp := b.get(path)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	}

	resp := b.postForm("/posts", url.Values{"title": {"A Valid Title"}, "content": {"c"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestErrorPageForUnknownPost(t *testing.T) {
	t.Parallel()

	_, app := newTestServer(t)
	resp := newBrowser(t, app).get("/posts/no-such-post")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Page not found")
}
