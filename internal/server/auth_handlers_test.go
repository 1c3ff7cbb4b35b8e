package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kampus/internal/config"
	"kampus/internal/models"
	"kampus/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	args := m.Called(ctx, prefix, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func newAuthTestServer(mockRepo *MockUserRepository) *Server {
	return &Server{
		config:      &config.Config{JWTSecret: "test_secret"},
		userRepo:    mockRepo,
		userService: service.NewUserService(mockRepo),
	}
}

func TestSignup(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := newAuthTestServer(mockRepo)

	app.Post("/signup", s.Signup)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username":     "deniz_42",
				"email":        "deniz@example.com",
				"password":     "Password123!",
				"display_name": "Deniz",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "deniz@example.com").Return(nil, nil)
				mockRepo.On("UsernameTaken", mock.Anything, "deniz_42").Return(false, nil)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"username": "deniz_43",
				"email":    "exists@example.com",
				"password": "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "exists@example.com").Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Taken Username",
			body: map[string]string{
				"username": "taken_name",
				"email":    "fresh@example.com",
				"password": "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "fresh@example.com").Return(nil, nil)
				mockRepo.On("UsernameTaken", mock.Anything, "taken_name").Return(true, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"username": "deniz_44",
				"email":    "weak@example.com",
				"password": "short",
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Username",
			body: map[string]string{
				"username": "ab",
				"email":    "tiny@example.com",
				"password": "Password123!",
			},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "tiny@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestLogin(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := newAuthTestServer(mockRepo)

	app.Post("/login", s.Login)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	assert.NoError(t, err)
	stored := &models.User{ID: 7, Username: "deniz_42", Email: "deniz@example.com", Password: string(hashed)}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"email": "deniz@example.com", "password": "Password123!"},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "deniz@example.com").Return(stored, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong Password",
			body: map[string]string{"email": "deniz@example.com", "password": "nope"},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "deniz@example.com").Return(stored, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown Email",
			body: map[string]string{"email": "ghost@example.com", "password": "Password123!"},
			mockSetup: func() {
				mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var out struct {
					Token string `json:"token"`
				}
				assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.NotEmpty(t, out.Token)
			}
		})
	}
}
