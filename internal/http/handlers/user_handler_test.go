package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tbourn/go-blog-backend/internal/auth"
	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/repo"
	"github.com/tbourn/go-blog-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

// ----- Fake service -----

type fakeUserService struct {
	registerErr error
	registered  *domain.User

	loginErr  error
	loginPair auth.TokenPair

	refreshIn  string
	refreshErr error

	listParams repo.ListParams
	listUsers  []domain.User
	listCount  int64

	getUser *domain.User
	getErr  error

	deleteUsername  string
	deleteRequester *domain.User
	deleteErr       error
}

func (f *fakeUserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if f.registered == nil {
		f.registered = &domain.User{ID: primitive.NewObjectID(), Email: email, Username: username}
	}
	return f.registered, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	if f.loginErr != nil {
		return nil, auth.TokenPair{}, f.loginErr
	}
	return &domain.User{}, f.loginPair, nil
}

func (f *fakeUserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	f.refreshIn = refreshToken
	if f.refreshErr != nil {
		return auth.TokenPair{}, f.refreshErr
	}
	return auth.TokenPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil
}

func (f *fakeUserService) List(ctx context.Context, params repo.ListParams) ([]domain.User, int64, error) {
	f.listParams = params
	return f.listUsers, f.listCount, nil
}

func (f *fakeUserService) Get(ctx context.Context, username string) (*domain.User, error) {
	return f.getUser, f.getErr
}

func (f *fakeUserService) SoftDelete(ctx context.Context, username string, requester *domain.User) error {
	f.deleteUsername, f.deleteRequester = username, requester
	return f.deleteErr
}

func userRouter(svc *fakeUserService, identity *domain.User) *gin.Engine {
	r := gin.New()
	if identity != nil {
		r.Use(func(c *gin.Context) { c.Set("user", identity) })
	}
	h := NewUserHandlers(svc)
	g := r.Group("/api/users")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/refresh", h.Refresh)
	g.GET("/", h.List)
	g.GET("/:username", h.Get)
	g.DELETE("/:username", h.Delete)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("bad error body %q: %v", w.Body.String(), err)
	}
	return e
}

// ----- Tests -----

func TestRegister_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"duplicate", services.ErrDuplicateUser, http.StatusBadRequest, ErrCodeConflict},
		{"short password", services.ErrPasswordTooShort, http.StatusUnprocessableEntity, ErrCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := userRouter(&fakeUserService{registerErr: tc.serviceErr}, nil)
			w := doJSON(t, r, http.MethodPost, "/api/users/register",
				`{"email":"a@b.com","username":"a","password":"pw"}`, nil)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", w.Code, tc.wantStatus)
			}
			if e := decodeError(t, w); e.Code != tc.wantCode {
				t.Errorf("code = %q; want %q", e.Code, tc.wantCode)
			}
		})
	}
}

func TestRegister_Success(t *testing.T) {
	svc := &fakeUserService{}
	r := userRouter(svc, nil)
	w := doJSON(t, r, http.MethodPost, "/api/users/register",
		`{"email":"a@b.com","username":"a","password":"pw"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var u domain.User
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.Username != "a" {
		t.Errorf("username = %q", u.Username)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("password leaked in response: %s", w.Body.String())
	}
}

func TestRegister_RejectsBadPayload(t *testing.T) {
	r := userRouter(&fakeUserService{}, nil)
	for _, body := range []string{
		`not json`,
		`{"email":"not-an-email","username":"a","password":"pw"}`,
		`{"username":"a","password":"pw"}`,
	} {
		w := doJSON(t, r, http.MethodPost, "/api/users/register", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d; want 400", body, w.Code)
		}
	}
}

func TestLogin_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown email", services.ErrUserNotFound, http.StatusNotFound},
		{"wrong password", services.ErrWrongCredentials, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := userRouter(&fakeUserService{loginErr: tc.serviceErr}, nil)
			w := doJSON(t, r, http.MethodPost, "/api/users/login",
				`{"email":"a@b.com","password":"pw"}`, nil)
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestLogin_ReturnsPair(t *testing.T) {
	svc := &fakeUserService{loginPair: auth.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	r := userRouter(svc, nil)
	w := doJSON(t, r, http.MethodPost, "/api/users/login",
		`{"email":"a@b.com","password":"pw"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var pair auth.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestRefresh_RequiresBearer(t *testing.T) {
	r := userRouter(&fakeUserService{}, nil)
	w := doJSON(t, r, http.MethodGet, "/api/users/refresh", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestRefresh_ForwardsToken(t *testing.T) {
	svc := &fakeUserService{}
	r := userRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/users/refresh", "",
		map[string]string{"Authorization": "Bearer the-refresh-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.refreshIn != "the-refresh-token" {
		t.Errorf("token forwarded = %q", svc.refreshIn)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := &fakeUserService{refreshErr: auth.ErrInvalidToken}
	r := userRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/users/refresh", "",
		map[string]string{"Authorization": "Bearer junk"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestListUsers_ParsesSelectorParams(t *testing.T) {
	svc := &fakeUserService{listCount: 42, listUsers: []domain.User{}}
	r := userRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/users/?q=ali&skip=5&limit=2&sort=-username", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	p := svc.listParams
	if p.Query != "ali" || p.Skip != 5 || p.Limit != 2 || p.Sort != "-username" {
		t.Errorf("params = %+v", p)
	}
	var resp ListUsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 42 {
		t.Errorf("count = %d", resp.Count)
	}
	if resp.Users == nil {
		t.Errorf("users should marshal as an empty list, got null")
	}
}

func TestListUsers_DefaultsWhenUnparsable(t *testing.T) {
	svc := &fakeUserService{}
	r := userRouter(svc, nil)
	doJSON(t, r, http.MethodGet, "/api/users/?skip=abc&limit=", "", nil)
	if svc.listParams.Skip != 0 || svc.listParams.Limit != 10 {
		t.Errorf("params = %+v; want defaults", svc.listParams)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	r := userRouter(&fakeUserService{getErr: services.ErrUserNotFound}, nil)
	w := doJSON(t, r, http.MethodGet, "/api/users/ghost", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestDeleteUser_StatusMapping(t *testing.T) {
	me := &domain.User{ID: primitive.NewObjectID()}
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", services.ErrUserNotFound, http.StatusNotFound},
		{"not self", services.ErrForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeUserService{deleteErr: tc.serviceErr}
			r := userRouter(svc, me)
			w := doJSON(t, r, http.MethodDelete, "/api/users/someone", "", nil)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", w.Code, tc.wantStatus)
			}
			if svc.deleteUsername != "someone" || svc.deleteRequester != me {
				t.Errorf("service saw %q/%v", svc.deleteUsername, svc.deleteRequester)
			}
		})
	}
}
