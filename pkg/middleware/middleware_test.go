package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/authenticating/mocks"
	"github.com/vfg2006/sus-dashboard-api/pkg/apiErrors"
	"go.uber.org/mock/gomock"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestCors(t *testing.T) {
	handler := Cors([]string{"http://localhost:3000"})(okHandler)

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{name: "Origem permitida", method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusNoContent, wantAllowed: "http://localhost:3000"},
		{name: "Origem desconhecida", method: http.MethodGet, origin: "http://evil.example", wantStatus: http.StatusNoContent, wantAllowed: ""},
		{name: "Preflight", method: http.MethodOptions, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllowed: "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/dashboard", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCors_Wildcard(t *testing.T) {
	handler := Cors([]string{"*"})(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://painel.saude.ce.gov.br")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://painel.saude.ce.gov.br", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		header     string
		setup      func(m *mocks.MockAuthenticator)
		wantStatus int
		wantCode   string
	}{
		{name: "Sem cabeçalho", header: "", setup: func(m *mocks.MockAuthenticator) {}, wantStatus: http.StatusUnauthorized},
		{name: "Sem prefixo Bearer", header: "abc", setup: func(m *mocks.MockAuthenticator) {}, wantStatus: http.StatusUnauthorized},
		{
			name:   "Token inválido",
			header: "Bearer ruim",
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().ValidateToken("ruim").Return(nil, authenticating.ErrInvalidToken)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Token expirado",
			header: "Bearer velho",
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().ValidateToken("velho").Return(nil, authenticating.NewAuthError(authenticating.ErrExpiredToken, apiErrors.ErrExpiredToken, ""))
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apiErrors.ErrExpiredToken,
		},
		{
			name:   "Falha inesperada na validação",
			header: "Bearer qualquer",
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().ValidateToken("qualquer").Return(nil, errors.New("falha"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   apiErrors.ErrInternalServer,
		},
		{
			name:   "Token válido",
			header: "Bearer bom",
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().ValidateToken("bom").Return(&domain.Claims{UserEmail: "gestor@saude.ce.gov.br", UserRoleID: authenticating.RoleAdmin}, nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := mocks.NewMockAuthenticator(ctrl)
			tt.setup(authService)

			req := httptest.NewRequest(http.MethodPost, "/v1/dataset/reload", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(authService)(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name       string
		claims     *domain.Claims
		wantStatus int
	}{
		{name: "Sem claims", claims: nil, wantStatus: http.StatusUnauthorized},
		{name: "Papel sem permissão", claims: &domain.Claims{UserRoleID: 99}, wantStatus: http.StatusForbidden},
		{name: "Administrador", claims: &domain.Claims{UserRoleID: authenticating.RoleAdmin}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/dataset/reload", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), ContextKeyUser, tt.claims))
			}
			rec := httptest.NewRecorder()

			AdminOnly()(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLoggingMiddleware_SetsCorrelationID(t *testing.T) {
	rec := httptest.NewRecorder()
	LoggingMiddleware()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(CorrelationIDHeader))
}

func TestLogPanicMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("falha inesperada")
	})

	rec := httptest.NewRecorder()
	LogPanicMiddleware()(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
