package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/pictor/internal/auth"
	"github.com/prn-tf/pictor/internal/domain"
	"github.com/prn-tf/pictor/internal/pkg/password"
	"github.com/prn-tf/pictor/internal/repository"
	"github.com/prn-tf/pictor/internal/service"
	"github.com/prn-tf/pictor/internal/storage"
)

// memoryUserRepo is an in-memory repository.UserRepository for router tests.
type memoryUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) UpdateName(ctx context.Context, id int64, name string) error {
	u, exists := m.users[id]
	if !exists {
		return repository.ErrNotFound
	}
	u.Name = name
	return nil
}

func (m *memoryUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	u, exists := m.users[id]
	if !exists {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memoryUserRepo) Delete(ctx context.Context, id int64) error {
	if _, exists := m.users[id]; !exists {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	result := &repository.ListResult[domain.User]{Total: int64(len(m.users))}
	for _, u := range m.users {
		result.Items = append(result.Items, u)
	}
	return result, nil
}

func (m *memoryUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// memoryBackend is an in-memory storage.Backend for router tests.
type memoryBackend struct {
	objects map[string][]byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: make(map[string][]byte)}
}

func (m *memoryBackend) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryBackend) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	data, exists := m.objects[key]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBackend) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, exists := m.objects[key]
	return exists, nil
}

const testOrigin = "http://localhost:5173"

type testAPI struct {
	router  http.Handler
	issuer  *auth.Issuer
	repo    *memoryUserRepo
	backend *memoryBackend
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	repo := newMemoryUserRepo()
	backend := newMemoryBackend()
	hasher := password.NewHasher(bcrypt.MinCost)
	issuer := auth.NewIssuer("test-secret", time.Hour)
	logger := zerolog.Nop()

	authService := service.NewAuthService(repo, hasher, issuer, nil, service.LoginLimit{}, logger)
	accountService := service.NewAccountService(repo, hasher, logger)
	imageService := service.NewImageService(backend, 1<<20, logger)

	router := NewRouter(RouterConfig{
		UserHandler:    NewUserHandler(authService, accountService, nil, logger),
		ImageHandler:   NewImageHandler(imageService, 2<<20, nil, logger),
		AuthMiddleware: auth.Middleware(issuer, logger),
		AllowedOrigin:  testOrigin,
		Logger:         logger,
	})

	return &testAPI{router: router, issuer: issuer, repo: repo, backend: backend}
}

// bootstrapToken issues a token directly, standing in for an operator
// account created out of band.
func (a *testAPI) bootstrapToken(t *testing.T) string {
	t.Helper()
	token, err := a.issuer.Issue("Admin", "admin", 1000)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var body apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Root(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "API started", rec.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	paths := []string{
		"/users/sign-up",
		"/users/change-name",
		"/users/change-password",
		"/images/uploads",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, path, "", map[string]string{})
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "Invalid or expired token provided!", decodeResponse(t, rec).Message)
		})
	}
}

func TestRouter_AccountLifecycle(t *testing.T) {
	api := newTestAPI(t)
	bootstrap := api.bootstrapToken(t)

	signUp := map[string]string{
		"name":     "Ann Smith",
		"username": "ann",
		"password": "secret-pass",
	}

	// Sign-up
	rec := api.do(t, http.MethodPost, "/users/sign-up", bootstrap, signUp)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "User created successfully", decodeResponse(t, rec).Message)

	// Duplicate username
	rec = api.do(t, http.MethodPost, "/users/sign-up", bootstrap, signUp)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Username has already been taken", decodeResponse(t, rec).Message)

	// Validation failure carries field errors
	rec = api.do(t, http.MethodPost, "/users/sign-up", bootstrap, map[string]string{
		"name":     "Bob",
		"username": "bob",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse(t, rec)
	require.Equal(t, "Validation failed", body.Message)
	require.Contains(t, body.Errors, "Password")

	// Login
	rec = api.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"username": "ann",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	loginBody := decodeResponse(t, rec)
	require.Equal(t, "Authentication succeeded!", loginBody.Message)
	require.NotEmpty(t, loginBody.Token)
	token := loginBody.Token

	claims, err := api.issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "ann", claims.Username)

	// Wrong password and unknown user are indistinguishable
	for _, creds := range []map[string]string{
		{"username": "ann", "password": "wrong-pass"},
		{"username": "nobody", "password": "secret-pass"},
	} {
		rec = api.do(t, http.MethodPost, "/users/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid credentials!", decodeResponse(t, rec).Message)
	}

	// Change name
	rec = api.do(t, http.MethodPost, "/users/change-name", token, map[string]interface{}{
		"currentPassword": "secret-pass",
		"newName":         "Ann Jones",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Name updated successfully!", decodeResponse(t, rec).Message)

	// Password unchanged by the rename
	rec = api.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"username": "ann",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Change password with a wrong current password leaves state alone
	rec = api.do(t, http.MethodPost, "/users/change-password", token, map[string]interface{}{
		"currentPassword": "wrong-pass",
		"newPassword":     "brand-new-pass",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Incorrect current password!", decodeResponse(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"username": "ann",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Change password for real
	rec = api.do(t, http.MethodPost, "/users/change-password", token, map[string]interface{}{
		"currentPassword": "secret-pass",
		"newPassword":     "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Password updated successfully!", decodeResponse(t, rec).Message)

	rec = api.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"username": "ann",
		"password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"username": "ann",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ForeignUserIDRejected(t *testing.T) {
	api := newTestAPI(t)
	bootstrap := api.bootstrapToken(t)

	rec := api.do(t, http.MethodPost, "/users/sign-up", bootstrap, map[string]string{
		"name":     "Ann Smith",
		"username": "ann",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"username": "ann",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decodeResponse(t, rec).Token

	// A body-supplied userId pointing at another account is rejected
	// before any password check happens.
	rec = api.do(t, http.MethodPost, "/users/change-name", token, map[string]interface{}{
		"userId":          9999,
		"currentPassword": "secret-pass",
		"newName":         "Mallory",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "You can only modify your own account!", decodeResponse(t, rec).Message)
}

func TestRouter_ImageUpload(t *testing.T) {
	api := newTestAPI(t)
	token := api.bootstrapToken(t)

	makeUpload := func(t *testing.T, field, filename, contentType, payload string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
		hdr["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader(payload))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("success", func(t *testing.T) {
		body, contentType := makeUpload(t, uploadFieldName, "avatar.png", "image/png", "fake-png-bytes")
		req := httptest.NewRequest(http.MethodPost, "/images/uploads", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		require.Equal(t, "Image uploaded successfully!", resp.Message)
		require.NotEmpty(t, resp.Key)
		require.Equal(t, []byte("fake-png-bytes"), api.backend.objects[resp.Key])
	})

	t.Run("wrong field name", func(t *testing.T) {
		body, contentType := makeUpload(t, "file", "avatar.png", "image/png", "fake-png-bytes")
		req := httptest.NewRequest(http.MethodPost, "/images/uploads", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid image upload!", decodeResponse(t, rec).Message)
	})

	t.Run("not an image", func(t *testing.T) {
		body, contentType := makeUpload(t, uploadFieldName, "report.pdf", "application/pdf", "%PDF-1.4")
		req := httptest.NewRequest(http.MethodPost, "/images/uploads", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid image upload!", decodeResponse(t, rec).Message)
	})
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", testOrigin)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		require.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/users/login", nil)
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "GET,POST,PUT,DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
	})
}
