package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/handler"
	"shop-api/internal/middleware"
	"shop-api/internal/model"
	"shop-api/internal/repository"
	"shop-api/internal/service"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Health(context.Context) error {
	return p.err
}

type testServer struct {
	handler    http.Handler
	tokens     *auth.TokenManager
	users      *repository.MockUserRepository
	products   *repository.MockDocumentRepository
	flashSales *repository.MockDocumentRepository
	orders     *repository.MockDocumentRepository
}

func newTestServer(t *testing.T, db stubPinger) *testServer {
	t.Helper()

	return newTestServerWithConfig(t, db, &config.Config{
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		RequestTimeout:   5 * time.Second,
	})
}

func newTestServerWithConfig(t *testing.T, db stubPinger, cfg *config.Config) *testServer {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret", "1h")
	require.NoError(t, err)

	ts := &testServer{
		tokens:     tokens,
		users:      &repository.MockUserRepository{},
		products:   &repository.MockDocumentRepository{},
		flashSales: &repository.MockDocumentRepository{},
		orders:     &repository.MockDocumentRepository{},
	}

	authService, err := service.NewAuthService(ts.users, tokens)
	require.NoError(t, err)

	ts.handler = New(cfg, middleware.NewAuthMiddleware(tokens), middleware.NewMetrics(), Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Products:   handler.NewCatalogHandler(service.NewCatalogService(ts.products, "product")),
		FlashSales: handler.NewCatalogHandler(service.NewCatalogService(ts.flashSales, "flash-sale item")),
		Orders:     handler.NewOrderHandler(service.NewOrderService(ts.orders)),
		Status:     handler.NewStatusHandler(db),
	})

	return ts
}

func (ts *testServer) token(t *testing.T, email string) string {
	t.Helper()

	token, err := ts.tokens.Issue(auth.Identity{Email: email, Role: model.RoleUser})
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method string, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRegisterTwiceConflicts(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	ts.users.On("FindByEmail", mock.Anything, "a@x.com").Return(model.User{}, model.ErrUserNotFound).Once()
	ts.users.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	ts.users.On("FindByEmail", mock.Anything, "a@x.com").Return(model.User{Email: "a@x.com"}, nil).Once()

	first := ts.do(t, http.MethodPost, "/api/v1/register", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw", "number": "555",
	}, "")
	require.Equal(t, http.StatusCreated, first.Code)
	body := decode(t, first)
	require.Equal(t, true, body["success"])
	require.Equal(t, "User registered successfully!", body["message"])

	second := ts.do(t, http.MethodPost, "/api/v1/register", map[string]string{
		"username": "someone else", "email": "a@x.com", "password": "different", "number": "999",
	}, "")
	require.Equal(t, http.StatusBadRequest, second.Code)
	body = decode(t, second)
	require.Equal(t, false, body["success"])
	require.Equal(t, "User already exists", body["message"])

	ts.users.AssertExpectations(t)
}

func TestRegisterRejectsMalformedJSON(t *testing.T) {
	ts := newTestServer(t, stubPinger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid JSON body", decode(t, rec)["message"])
}

func TestLoginFlow(t *testing.T) {
	hash, err := auth.HashPassword("right-password")
	require.NoError(t, err)

	ts := newTestServer(t, stubPinger{})
	ts.users.On("FindByEmail", mock.Anything, "a@x.com").Return(model.User{Email: "a@x.com", PasswordHash: hash, Role: model.RoleUser}, nil)
	ts.users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(model.User{}, model.ErrUserNotFound)

	ok := ts.do(t, http.MethodPost, "/api/v1/login", map[string]string{"email": "a@x.com", "password": "right-password"}, "")
	require.Equal(t, http.StatusOK, ok.Code)
	body := decode(t, ok)
	require.Equal(t, true, body["success"])
	require.Equal(t, "User successfully logged in!", body["message"])

	token, _ := body["accessToken"].(string)
	claims, err := ts.tokens.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)

	wrongPassword := ts.do(t, http.MethodPost, "/api/v1/login", map[string]string{"email": "a@x.com", "password": "nope"}, "")
	unknownEmail := ts.do(t, http.MethodPost, "/api/v1/login", map[string]string{"email": "ghost@x.com", "password": "right-password"}, "")

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	require.Equal(t, "invalid credentials", decode(t, wrongPassword)["message"])
}

func TestOrdersRequireMatchingToken(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	orders := []model.Document{{"email": "a@x.com", "item": "phone"}}
	ts.orders.On("Find", mock.Anything, bson.M{"email": "a@x.com"}).Return(orders, nil)

	missing := ts.do(t, http.MethodGet, "/orders?email=a@x.com", nil, "")
	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.Equal(t, "unauthorized access", decode(t, missing)["message"])

	garbage := ts.do(t, http.MethodGet, "/orders?email=a@x.com", nil, "garbage")
	require.Equal(t, http.StatusForbidden, garbage.Code)
	require.Equal(t, "forbidden access", decode(t, garbage)["message"])

	mismatch := ts.do(t, http.MethodGet, "/orders?email=a@x.com", nil, ts.token(t, "b@y.com"))
	require.Equal(t, http.StatusForbidden, mismatch.Code)
	body := decode(t, mismatch)
	require.Equal(t, "forbidden access", body["message"])
	require.NotContains(t, body, "data")

	match := ts.do(t, http.MethodGet, "/orders?email=a@x.com", nil, ts.token(t, "a@x.com"))
	require.Equal(t, http.StatusOK, match.Code)
	data, _ := decode(t, match)["data"].([]any)
	require.Len(t, data, 1)
	require.Equal(t, "a@x.com", data[0].(map[string]any)["email"])

	ts.orders.AssertNumberOfCalls(t, "Find", 1)
}

func TestOrderCreateAndDelete(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	id := primitive.NewObjectID()
	ts.orders.On("Insert", mock.Anything, model.Document{"item": "phone", "qty": float64(2), "email": "a@x.com"}).Return(id, nil)
	ts.orders.On("DeleteByID", mock.Anything, id.Hex(), bson.M{"email": "a@x.com"}).Return(int64(1), nil)
	ts.orders.On("DeleteByID", mock.Anything, id.Hex(), bson.M{"email": "b@y.com"}).Return(int64(0), nil)

	created := ts.do(t, http.MethodPost, "/orders", map[string]any{"item": "phone", "qty": 2}, ts.token(t, "a@x.com"))
	require.Equal(t, http.StatusCreated, created.Code)
	data := decode(t, created)["data"].(map[string]any)
	require.Equal(t, id.Hex(), data["insertedId"])

	forged := ts.do(t, http.MethodPost, "/orders", map[string]any{"item": "phone", "email": "a@x.com"}, ts.token(t, "b@y.com"))
	require.Equal(t, http.StatusForbidden, forged.Code)

	foreign := ts.do(t, http.MethodDelete, "/order/"+id.Hex(), nil, ts.token(t, "b@y.com"))
	require.Equal(t, http.StatusNotFound, foreign.Code)

	deleted := ts.do(t, http.MethodDelete, "/order/"+id.Hex(), nil, ts.token(t, "a@x.com"))
	require.Equal(t, http.StatusOK, deleted.Code)

	unauthenticated := ts.do(t, http.MethodPost, "/orders", map[string]any{"item": "phone"}, "")
	require.Equal(t, http.StatusUnauthorized, unauthenticated.Code)
}

func TestCatalogRoutes(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	id := primitive.NewObjectID()
	missing := primitive.NewObjectID()

	ts.products.On("Find", mock.Anything, bson.M{}).Return([]model.Document{{"_id": id, "name": "phone"}}, nil)
	ts.products.On("FindByID", mock.Anything, id.Hex()).Return(model.Document{"_id": id, "name": "phone"}, nil)
	ts.products.On("FindByID", mock.Anything, missing.Hex()).Return(nil, model.ErrNotFound)
	ts.products.On("FindByID", mock.Anything, "bad-id").Return(nil, model.ErrInvalidID)
	ts.flashSales.On("Find", mock.Anything, bson.M{}).Return([]model.Document{}, nil)

	list := ts.do(t, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	items := decode(t, list)["data"].([]any)
	require.Equal(t, id.Hex(), items[0].(map[string]any)["_id"])

	one := ts.do(t, http.MethodGet, "/product/"+id.Hex(), nil, "")
	require.Equal(t, http.StatusOK, one.Code)

	notFound := ts.do(t, http.MethodGet, "/product/"+missing.Hex(), nil, "")
	require.Equal(t, http.StatusNotFound, notFound.Code)
	require.Equal(t, "product not found", decode(t, notFound)["message"])

	badID := ts.do(t, http.MethodGet, "/product/bad-id", nil, "")
	require.Equal(t, http.StatusBadRequest, badID.Code)

	sales := ts.do(t, http.MethodGet, "/flash-sale", nil, "")
	require.Equal(t, http.StatusOK, sales.Code)

	create := ts.do(t, http.MethodPost, "/products", map[string]any{"name": "tablet"}, "")
	require.Equal(t, http.StatusUnauthorized, create.Code)
}

func TestStoreFailuresDoNotLeak(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	ts.products.On("Find", mock.Anything, bson.M{}).Return(nil, errors.New("connection refused: 10.0.0.5:27017"))

	rec := ts.do(t, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.0.5")
	require.Equal(t, "INTERNAL_ERROR", decode(t, rec)["error"].(map[string]any)["code"])
}

func TestStatusRoutes(t *testing.T) {
	ts := newTestServer(t, stubPinger{})

	root := ts.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, root.Code)
	body := decode(t, root)
	require.Equal(t, "Server is running smoothly", body["message"])
	require.NotEmpty(t, body["timestamp"])

	health := ts.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, health.Code)

	down := newTestServer(t, stubPinger{err: errors.New("no reachable servers")})
	unhealthy := down.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, unhealthy.Code)

	metrics := ts.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, metrics.Code)
	require.Contains(t, metrics.Body.String(), "shop_http_requests_total")

	unknown := ts.do(t, http.MethodGet, "/nope", nil, "")
	require.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestAuthRateLimitClientIdentity(t *testing.T) {
	attempt := func(ts *testServer, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString("{"))
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	cfg := &config.Config{
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1,
		RequestTimeout:   5 * time.Second,
	}

	direct := newTestServerWithConfig(t, stubPinger{}, cfg)
	require.Equal(t, http.StatusBadRequest, attempt(direct, "198.51.100.1"))
	require.Equal(t, http.StatusTooManyRequests, attempt(direct, "198.51.100.2"))

	proxied := *cfg
	proxied.TrustProxy = true
	behindProxy := newTestServerWithConfig(t, stubPinger{}, &proxied)
	require.Equal(t, http.StatusBadRequest, attempt(behindProxy, "198.51.100.1"))
	require.Equal(t, http.StatusBadRequest, attempt(behindProxy, "198.51.100.2"))
	require.Equal(t, http.StatusTooManyRequests, attempt(behindProxy, "198.51.100.1"))
}

func TestRegisterAcceptsNumericContactNumber(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	ts.users.On("FindByEmail", mock.Anything, "n@x.com").Return(model.User{}, model.ErrUserNotFound).Once()
	ts.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Number == "5551234"
	})).Return(nil).Once()

	rec := ts.do(t, http.MethodPost, "/api/v1/register", map[string]any{
		"username": "num", "email": "n@x.com", "password": "pw", "number": 5551234,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ts.users.AssertExpectations(t)
}

func TestOversizedBodiesAreRejected(t *testing.T) {
	ts := newTestServer(t, stubPinger{})
	huge := `{"email":"` + strings.Repeat("a", 2<<20) + `","password":"pw"}`

	for _, target := range []string{"/api/v1/login", "/api/v1/register"} {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(huge))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, target)
		require.Equal(t, "PAYLOAD_TOO_LARGE", decode(t, rec)["error"].(map[string]any)["code"], target)
	}

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(huge))
	req.Header.Set("Authorization", "Bearer "+ts.token(t, "a@x.com"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	ts.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	ts.orders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
