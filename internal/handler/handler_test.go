package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type structValidator struct {
	v *validator.Validate
}

func (s *structValidator) Validate(i interface{}) error {
	return s.v.Struct(i)
}

func newContext(method, target, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &structValidator{v: validator.New()}

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if userID != uuid.Nil {
		c.Set(UserIDContextKey, userID)
	}
	return c, rec
}

// requireHTTPError asserts err is an echo error with the given status and code.
func requireHTTPError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, stderrors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	assert.Equal(t, status, he.Code)
	body, ok := he.Message.(errors.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, code, body.Code)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password, name string) (*model.User, string, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) LogIn(ctx context.Context, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) ResolveToken(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockIdeaService is a mock implementation of IdeaService.
type MockIdeaService struct {
	mock.Mock
}

func (m *MockIdeaService) CreateIdea(ctx context.Context, ownerID uuid.UUID, in service.IdeaInput) (*model.Idea, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Idea), args.Error(1)
}

func (m *MockIdeaService) ListIdeasFor(ctx context.Context, userID uuid.UUID) ([]model.Idea, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Idea), args.Error(1)
}

func (m *MockIdeaService) GetIdea(ctx context.Context, ideaID, requesterID uuid.UUID) (*model.Idea, error) {
	args := m.Called(ctx, ideaID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Idea), args.Error(1)
}

func (m *MockIdeaService) UpdateIdea(ctx context.Context, ideaID, requesterID uuid.UUID, patch service.IdeaPatch) (*model.Idea, error) {
	args := m.Called(ctx, ideaID, requesterID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Idea), args.Error(1)
}

// MockRoleService is a mock implementation of RoleService.
type MockRoleService struct {
	mock.Mock
}

func (m *MockRoleService) AddRole(ctx context.Context, ideaID, requesterID uuid.UUID, targetEmail string, req service.RoleRequest) (*model.IdeaRole, error) {
	args := m.Called(ctx, ideaID, requesterID, targetEmail, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IdeaRole), args.Error(1)
}

func (m *MockRoleService) RemoveRole(ctx context.Context, ideaID, roleID, requesterID uuid.UUID) error {
	args := m.Called(ctx, ideaID, roleID, requesterID)
	return args.Error(0)
}

func (m *MockRoleService) ListRoles(ctx context.Context, ideaID, requesterID uuid.UUID) ([]model.IdeaRole, error) {
	args := m.Called(ctx, ideaID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IdeaRole), args.Error(1)
}

func TestAuthHandler_SignUp(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAuthService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: `{"email":"a@x.com","password":"pw","name":"A"}`,
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, "a@x.com", "pw", "A").
					Return(&model.User{ID: uuid.New(), Email: "a@x.com", Name: "A", Password: "pw"}, "tok", nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           `{"email":"a@x.com","password":"pw"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "malformed body",
			body:           `{"email":`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST_BODY",
		},
		{
			name: "duplicate email",
			body: `{"email":"a@x.com","password":"pw","name":"A"}`,
			setupMock: func(m *MockAuthService) {
				m.On("SignUp", mock.Anything, "a@x.com", "pw", "A").Return(nil, "", errors.ErrEmailTaken)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "USER_ALREADY_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			tt.setupMock(svc)

			c, rec := newContext(http.MethodPost, "/api/auth/signup", tt.body, uuid.Nil)
			err := NewAuthHandler(svc).SignUp(c)

			if tt.expectedCode != "" {
				requireHTTPError(t, err, tt.expectedStatus, tt.expectedCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "tok", body["token"])
			user := body["user"].(map[string]interface{})
			assert.Equal(t, "a@x.com", user["email"])
			assert.NotContains(t, user, "password")
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("LogIn", mock.Anything, "a@x.com", "nope").Return(nil, "", errors.ErrInvalidCredentials)

	c, _ := newContext(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"nope"}`, uuid.Nil)
	err := NewAuthHandler(svc).Login(c)
	requireHTTPError(t, err, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}

func TestIdeaHandler_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := new(MockIdeaService)
		in := service.IdeaInput{Name: "X", Description: "D", ProblemCategory: "Technology", Solution: "S"}
		svc.On("CreateIdea", mock.Anything, userID, in).Return(&model.Idea{
			ID: uuid.New(), Name: "X", Description: "D", ProblemCategory: "Technology", Solution: "S",
			Visibility: model.VisibilityPrivate, OwnerID: userID, UserRole: model.RoleIdeaOwner,
		}, nil)

		c, rec := newContext(http.MethodPost, "/api/ideas",
			`{"name":"X","description":"D","problemCategory":"Technology","solution":"S"}`, userID)
		require.NoError(t, NewIdeaHandler(svc).Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "private", body["visibility"])
		assert.Equal(t, "IDEA_OWNER", body["userRole"])
		assert.Equal(t, userID.String(), body["ownerId"])
	})

	t.Run("unknown visibility", func(t *testing.T) {
		svc := new(MockIdeaService)
		c, _ := newContext(http.MethodPost, "/api/ideas",
			`{"name":"X","description":"D","problemCategory":"Technology","solution":"S","visibility":"friends"}`, userID)
		err := NewIdeaHandler(svc).Create(c)
		requireHTTPError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")
		svc.AssertNotCalled(t, "CreateIdea", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/ideas", `{}`, uuid.Nil)
		err := NewIdeaHandler(new(MockIdeaService)).Create(c)
		requireHTTPError(t, err, http.StatusUnauthorized, "UNAUTHORIZED")
	})
}

func TestIdeaHandler_Get(t *testing.T) {
	userID := uuid.New()
	ideaID := uuid.New()

	t.Run("bad id", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/ideas/nope", "", userID)
		c.SetParamNames("id")
		c.SetParamValues("nope")
		err := NewIdeaHandler(new(MockIdeaService)).Get(c)
		requireHTTPError(t, err, http.StatusBadRequest, "INVALID_IDEA_ID")
	})

	t.Run("private idea of someone else", func(t *testing.T) {
		svc := new(MockIdeaService)
		svc.On("GetIdea", mock.Anything, ideaID, userID).Return(nil, errors.ErrIdeaNotVisible)

		c, _ := newContext(http.MethodGet, "/api/ideas/"+ideaID.String(), "", userID)
		c.SetParamNames("id")
		c.SetParamValues(ideaID.String())
		err := NewIdeaHandler(svc).Get(c)
		requireHTTPError(t, err, http.StatusForbidden, "IDEA_NOT_VISIBLE")
	})

	t.Run("store failure hides cause", func(t *testing.T) {
		svc := new(MockIdeaService)
		cause := stderrors.New("dial tcp: connection refused")
		svc.On("GetIdea", mock.Anything, ideaID, userID).Return(nil, errors.Store("find idea", cause))

		c, _ := newContext(http.MethodGet, "/api/ideas/"+ideaID.String(), "", userID)
		c.SetParamNames("id")
		c.SetParamValues(ideaID.String())
		err := NewIdeaHandler(svc).Get(c)
		requireHTTPError(t, err, http.StatusInternalServerError, "INTERNAL_ERROR")

		var he *echo.HTTPError
		require.True(t, stderrors.As(err, &he))
		assert.ErrorIs(t, he.Internal, cause)
		assert.NotContains(t, he.Message.(errors.ErrorResponse).Error, "connection refused")
	})
}

func TestIdeaHandler_UpdatePassesOnlyProvidedFields(t *testing.T) {
	userID := uuid.New()
	ideaID := uuid.New()
	public := model.VisibilityPublic

	svc := new(MockIdeaService)
	svc.On("UpdateIdea", mock.Anything, ideaID, userID, service.IdeaPatch{Visibility: &public}).
		Return(&model.Idea{ID: ideaID, Visibility: model.VisibilityPublic}, nil)

	c, rec := newContext(http.MethodPut, "/api/ideas/"+ideaID.String(), `{"visibility":"public"}`, userID)
	c.SetParamNames("id")
	c.SetParamValues(ideaID.String())
	require.NoError(t, NewIdeaHandler(svc).Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRoleHandler_Add(t *testing.T) {
	userID := uuid.New()
	ideaID := uuid.New()

	svc := new(MockRoleService)
	svc.On("AddRole", mock.Anything, ideaID, userID, "c@x.com", mock.MatchedBy(func(r service.RoleRequest) bool {
		return r.Kind == model.RoleContractor &&
			r.StartDate != nil && r.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			r.EndDate == nil && r.EquityPercentage == nil
	})).Return(&model.IdeaRole{ID: uuid.New(), IdeaID: ideaID, Role: model.RoleContractor}, nil)

	c, rec := newContext(http.MethodPost, "/api/ideas/"+ideaID.String()+"/roles",
		`{"email":"c@x.com","role":"CONTRACTOR","startDate":"2024-01-01"}`, userID)
	c.SetParamNames("id")
	c.SetParamValues(ideaID.String())
	require.NoError(t, NewRoleHandler(svc).Add(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestRoleHandler_AddEquity(t *testing.T) {
	userID := uuid.New()
	ideaID := uuid.New()

	svc := new(MockRoleService)
	svc.On("AddRole", mock.Anything, ideaID, userID, "b@x.com", mock.MatchedBy(func(r service.RoleRequest) bool {
		return r.Kind == model.RoleEquityOwner && r.EquityPercentage != nil &&
			r.EquityPercentage.Equal(decimal.RequireFromString("12.5"))
	})).Return(nil, errors.ErrNotIdeaOwner)

	c, _ := newContext(http.MethodPost, "/api/ideas/"+ideaID.String()+"/roles",
		`{"email":"b@x.com","role":"EQUITY_OWNER","equityPercentage":12.5}`, userID)
	c.SetParamNames("id")
	c.SetParamValues(ideaID.String())
	err := NewRoleHandler(svc).Add(c)
	requireHTTPError(t, err, http.StatusForbidden, "NOT_IDEA_OWNER")
	svc.AssertExpectations(t)
}

func TestRoleHandler_Remove(t *testing.T) {
	userID := uuid.New()
	ideaID := uuid.New()
	roleID := uuid.New()

	t.Run("no content", func(t *testing.T) {
		svc := new(MockRoleService)
		svc.On("RemoveRole", mock.Anything, ideaID, roleID, userID).Return(nil)

		c, rec := newContext(http.MethodDelete, "/", "", userID)
		c.SetParamNames("id", "roleId")
		c.SetParamValues(ideaID.String(), roleID.String())
		require.NoError(t, NewRoleHandler(svc).Remove(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("owner role", func(t *testing.T) {
		svc := new(MockRoleService)
		svc.On("RemoveRole", mock.Anything, ideaID, roleID, userID).Return(errors.ErrOwnerRoleRemoval)

		c, _ := newContext(http.MethodDelete, "/", "", userID)
		c.SetParamNames("id", "roleId")
		c.SetParamValues(ideaID.String(), roleID.String())
		err := NewRoleHandler(svc).Remove(c)
		requireHTTPError(t, err, http.StatusConflict, "OWNER_ROLE_REQUIRED")
	})
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01"`), &d))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d.Time)

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T10:00:00Z"`), &d))
	assert.Equal(t, 10, d.Hour())

	assert.Error(t, json.Unmarshal([]byte(`"03/01/2024"`), &d))

	var p *Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Nil(t, p.timePtr())
}

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/health", "", uuid.Nil)
		require.NoError(t, NewHealthHandler(nil, nil).Health(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("ready without cache", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/readyz", "", uuid.Nil)
		require.NoError(t, NewHealthHandler(stubChecker{}, nil).Ready(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Checks["database"])
		assert.Equal(t, "not configured", body.Checks["cache"])
	})

	t.Run("database down", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/readyz", "", uuid.Nil)
		require.NoError(t, NewHealthHandler(stubChecker{err: stderrors.New("refused")}, stubChecker{}).Ready(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "error", body.Checks["database"])
		assert.Equal(t, "ok", body.Checks["cache"])
		assert.NotContains(t, rec.Body.String(), "refused")
	})
}
