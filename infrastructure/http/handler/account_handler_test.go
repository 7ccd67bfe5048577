package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hotellisting/hotellisting-api/application/port/inbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	domainerr "github.com/hotellisting/hotellisting-api/domain/error"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
	"github.com/hotellisting/hotellisting-api/infrastructure/config"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/middleware"
	"github.com/hotellisting/hotellisting-api/infrastructure/http/validator"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/jwt"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/logger"
)

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*inbound.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthUseCase) Register(ctx context.Context, req inbound.RegistrationRequest) ([]valueobject.IdentityError, error) {
	args := m.Called(ctx, req)
	errs, _ := args.Get(0).([]valueobject.IdentityError)
	return errs, args.Error(1)
}

func (m *MockAuthUseCase) RegisterWithRole(ctx context.Context, req inbound.RoleRegistrationRequest) ([]valueobject.IdentityError, error) {
	args := m.Called(ctx, req)
	errs, _ := args.Get(0).([]valueobject.IdentityError)
	return errs, args.Error(1)
}

func (m *MockAuthUseCase) RefreshToken(ctx context.Context, req inbound.RefreshRequest) (*inbound.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*inbound.AuthResponse)
	return resp, args.Error(1)
}

func newTestRouter(t *testing.T, uc inbound.AuthUseCase) (*mux.Router, *jwt.JWTService) {
	t.Helper()
	issuer, err := jwt.NewJWTService(&config.Config{
		JWTIssuer:          "HotelListingAPI",
		JWTAudience:        "HotelListingAPIClient",
		JWTSecret:          "0123456789abcdef0123456789abcdef",
		AccessTokenMinutes: 10,
	})
	require.NoError(t, err)

	h := NewAccountHandler(uc, validator.New(), logger.NewNopLogger())
	return NewRouter(h, middleware.NewAuthMiddleware(issuer), nil), issuer
}

func adminBearer(t *testing.T, issuer *jwt.JWTService, role string) string {
	t.Helper()
	token, err := issuer.Issue([]entity.Claim{
		entity.NewClaim(entity.ClaimEmail, "root@test.io"),
		entity.NewClaim(entity.ClaimRole, role),
	})
	require.NoError(t, err)
	return "Bearer " + token.Token
}

func TestAccountHandler_Login(t *testing.T) {
	validReq := inbound.LoginRequest{Email: "ann@test.io", Password: "Passw0rd!"}

	tests := []struct {
		name           string
		requestBody    string
		mockResponse   *inbound.AuthResponse
		mockError      error
		callsUseCase   bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "successful login",
			requestBody:    `{"email":"ann@test.io","password":"Passw0rd!"}`,
			mockResponse:   &inbound.AuthResponse{UserID: "u1", Token: "access", RefreshToken: "refresh"},
			callsUseCase:   true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":true,"message":"Login successful","data":{"userId":"u1","token":"access","refreshToken":"refresh"}}`,
		},
		{
			name:           "bad credentials",
			requestBody:    `{"email":"ann@test.io","password":"Passw0rd!"}`,
			callsUseCase:   true,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":false,"message":"Invalid email or password","data":null}`,
		},
		{
			name:           "store failure",
			requestBody:    `{"email":"ann@test.io","password":"Passw0rd!"}`,
			mockError:      domainerr.ErrStore("FindByEmail", assert.AnError),
			callsUseCase:   true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":false,"message":"Internal server error","data":null}`,
		},
		{
			name:           "malformed body",
			requestBody:    `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":false,"message":"Invalid request body","data":null}`,
		},
		{
			name:           "password too short",
			requestBody:    `{"email":"ann@test.io","password":"abc"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":false,"message":"Validation failed","data":{"password":"password must be at least 7 characters"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockAuthUseCase)
			if tt.callsUseCase {
				uc.On("Login", mock.Anything, validReq).Return(tt.mockResponse, tt.mockError)
			}
			router, _ := newTestRouter(t, uc)

			req := httptest.NewRequest(http.MethodPost, "/api/Account/login", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			uc.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_Register(t *testing.T) {
	body := `{"email":"ann@test.io","password":"Passw0rd!","firstName":"Ann","lastName":"Lee"}`
	expectedReq := inbound.RegistrationRequest{
		LoginRequest: inbound.LoginRequest{Email: "ann@test.io", Password: "Passw0rd!"},
		FirstName:    "Ann",
		LastName:     "Lee",
	}

	tests := []struct {
		name           string
		mockErrs       []valueobject.IdentityError
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "created",
			mockErrs:       []valueobject.IdentityError{},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":true,"message":"Registration successful","data":null}`,
		},
		{
			name: "duplicate user",
			mockErrs: []valueobject.IdentityError{
				{Code: valueobject.CodeDuplicateUserName, Description: "Username 'ann@test.io' is already taken."},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":false,"message":"Registration failed","data":{"DuplicateUserName":"Username 'ann@test.io' is already taken."}}`,
		},
		{
			name:           "store failure",
			mockError:      domainerr.ErrStore("Create", assert.AnError),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":false,"message":"Internal server error","data":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockAuthUseCase)
			uc.On("Register", mock.Anything, expectedReq).Return(tt.mockErrs, tt.mockError)
			router, _ := newTestRouter(t, uc)

			req := httptest.NewRequest(http.MethodPost, "/api/Account/register", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			uc.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_RegisterWithRole(t *testing.T) {
	body := `{"email":"bo@test.io","password":"Passw0rd!","firstName":"Bo","lastName":"Ray","role":"Administrator"}`

	tests := []struct {
		name           string
		authRole       string
		callsUseCase   bool
		expectedStatus int
	}{
		{name: "anonymous", expectedStatus: http.StatusUnauthorized},
		{name: "plain user", authRole: "User", expectedStatus: http.StatusForbidden},
		{name: "administrator", authRole: "Administrator", callsUseCase: true, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockAuthUseCase)
			if tt.callsUseCase {
				uc.On("RegisterWithRole", mock.Anything, mock.MatchedBy(func(req inbound.RoleRegistrationRequest) bool {
					return req.Email == "bo@test.io" && req.Role == "Administrator"
				})).Return([]valueobject.IdentityError{}, nil)
			}
			router, issuer := newTestRouter(t, uc)

			req := httptest.NewRequest(http.MethodPost, "/api/Account/register/role", bytes.NewBufferString(body))
			if tt.authRole != "" {
				req.Header.Set("Authorization", adminBearer(t, issuer, tt.authRole))
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			uc.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_RefreshToken(t *testing.T) {
	body := `{"userId":"u1","token":"access","refreshToken":"refresh"}`
	expectedReq := inbound.RefreshRequest{UserID: "u1", Token: "access", RefreshToken: "refresh"}

	tests := []struct {
		name           string
		mockResponse   *inbound.AuthResponse
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "reissued",
			mockResponse:   &inbound.AuthResponse{UserID: "u1", Token: "access-2", RefreshToken: "refresh-2"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":true,"message":"Token refreshed","data":{"userId":"u1","token":"access-2","refreshToken":"refresh-2"}}`,
		},
		{
			name:           "rejected refresh token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":false,"message":"Invalid refresh token","data":null}`,
		},
		{
			name:           "token for another user",
			mockError:      domainerr.ErrUserMismatchFor("u1"),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":false,"message":"Unauthorized","data":null}`,
		},
		{
			name:           "unreadable access token",
			mockError:      domainerr.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":false,"message":"Unauthorized","data":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockAuthUseCase)
			uc.On("RefreshToken", mock.Anything, expectedReq).Return(tt.mockResponse, tt.mockError)
			router, _ := newTestRouter(t, uc)

			req := httptest.NewRequest(http.MethodPost, "/api/Account/refreshtoken", bytes.NewBufferString(body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.JSONEq(t, tt.expectedBody, rec.Body.String())
			uc.AssertExpectations(t)
		})
	}
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, new(MockAuthUseCase))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"message":"healthy","data":null}`, rec.Body.String())
}
