package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devlink/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(t *testing.T, path string, body any, header ...string) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if len(header) > 0 {
		req.Header.Set("Authorization", header[0])
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(userRepo *MockUserRepository)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "Success",
			body: map[string]string{
				"name":      "Test User",
				"email":     "test@example.com",
				"password":  "password123",
				"password2": "password123",
			},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate email",
			body: map[string]string{
				"name":      "Test User",
				"email":     "exists@example.com",
				"password":  "password123",
				"password2": "password123",
			},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "exists@example.com").
					Return(&models.User{ID: 1, Email: "exists@example.com"}, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "email",
		},
		{
			name: "Mismatched passwords",
			body: map[string]string{
				"name":      "Test User",
				"email":     "test@example.com",
				"password":  "password123",
				"password2": "different123",
			},
			mockSetup:      func(userRepo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password2",
		},
		{
			name:           "Missing everything",
			body:           map[string]string{},
			mockSetup:      func(userRepo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, app, userRepo, _, _ := newTestServer(t)
			tt.mockSetup(userRepo)

			resp, err := app.Test(postJSON(t, "/api/users/register", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			if tt.expectedField != "" {
				assert.Contains(t, body, tt.expectedField)
			}
		})
	}
}

func TestRegister_SetsGravatarAndHash(t *testing.T) {
	_, app, userRepo, _, _ := newTestServer(t)

	var created *models.User
	userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil)
	userRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.User)
		}).Return(nil)

	resp, err := app.Test(postJSON(t, "/api/users/register", map[string]string{
		"name":      "Alice",
		"email":     "alice@example.com",
		"password":  "password123",
		"password2": "password123",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	require.NotNil(t, created)
	assert.Contains(t, created.Avatar, "gravatar.com/avatar/")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
	assert.NotEqual(t, "password123", created.Password)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := &models.User{
		ID:       1,
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: string(hash),
	}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(userRepo *MockUserRepository)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "Success",
			body: map[string]string{"email": "alice@example.com", "password": "password123"},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Unknown email",
			body: map[string]string{"email": "ghost@example.com", "password": "password123"},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
			expectedField:  "email",
		},
		{
			name: "Wrong password",
			body: map[string]string{"email": "alice@example.com", "password": "wrongwrong"},
			mockSetup: func(userRepo *MockUserRepository) {
				userRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(stored, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password",
		},
		{
			name:           "Missing fields",
			body:           map[string]string{},
			mockSetup:      func(userRepo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, app, userRepo, _, _ := newTestServer(t)
			tt.mockSetup(userRepo)

			resp, err := app.Test(postJSON(t, "/api/users/login", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			if tt.expectedField != "" {
				assert.Contains(t, body, tt.expectedField)
			}
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, true, body["success"])
				token, _ := body["token"].(string)
				assert.True(t, strings.HasPrefix(token, "Bearer "), "token carries the Bearer prefix")
			}
		})
	}
}

func TestCurrentUser(t *testing.T) {
	s, app, userRepo, _, _ := newTestServer(t)

	user := &models.User{ID: 7, Name: "Alice", Email: "alice@example.com"}
	userRepo.On("GetByID", mock.Anything, uint(7)).Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
	req.Header.Set("Authorization", authToken(t, s, user))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestAuthRequired(t *testing.T) {
	s, app, _, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "No header", header: ""},
		{name: "Malformed header", header: "Token abc"},
		{name: "Garbage token", header: "Bearer not.a.token"},
		{
			name: "Wrong secret",
			header: func() string {
				other := &Server{config: s.config}
				otherCfg := *s.config
				otherCfg.JWTSecret = "different_secret"
				other.config = &otherCfg
				u := &models.User{ID: 1, Name: "Eve"}
				return authToken(t, other, u)
			}(),
		},
		{
			name: "Expired token",
			header: func() string {
				now := time.Now()
				claims := jwt.MapClaims{
					"sub":  "1",
					"id":   uint(1),
					"name": "Eve",
					"iss":  tokenIssuer,
					"aud":  tokenAudience,
					"exp":  now.Add(-time.Hour).Unix(),
					"iat":  now.Add(-2 * time.Hour).Unix(),
					"nbf":  now.Add(-2 * time.Hour).Unix(),
				}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
					SignedString([]byte(s.config.JWTSecret))
				require.NoError(t, err)
				return "Bearer " + signed
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/current", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}
