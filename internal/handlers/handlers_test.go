package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ggorockee/coffeemode/internal/database/dbtest"
	"github.com/ggorockee/coffeemode/internal/handlers"
	"github.com/ggorockee/coffeemode/internal/middleware"
	"github.com/ggorockee/coffeemode/internal/repository"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/ggorockee/coffeemode/pkg/auth"
	"github.com/ggorockee/coffeemode/pkg/firebase"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "valid-token"

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, token string) (*firebase.VerifiedToken, error) {
	if token != validToken {
		return nil, errors.New("bad token")
	}
	return &firebase.VerifiedToken{UID: "uid-1", Email: "Alice@Example.com", Name: "Alice"}, nil
}

type fakeMetadata struct {
	result *services.ResolutionResult
	err    error
	title  string
}

func (f *fakeMetadata) ResolveFromMetadata(_ context.Context, title, _, _ string) (*services.ResolutionResult, error) {
	f.title = title
	return f.result, f.err
}

type fakeLinks struct {
	result *services.ResolutionResult
	err    error
}

func (f *fakeLinks) ResolveFromSharedLink(context.Context, string) (*services.ResolutionResult, error) {
	return f.result, f.err
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app      *fiber.App
	metadata *fakeMetadata
	links    *fakeLinks
}

func newTestServer(t *testing.T, uploadSecret string) *testServer {
	t.Helper()

	db := dbtest.New(t)
	auth := middleware.AuthRequired(fakeVerifier{})
	ts := &testServer{metadata: &fakeMetadata{}, links: &fakeLinks{}}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api")
	handlers.SetupGoogleMapsRoutes(api.Group("/google-maps"),
		handlers.NewGoogleMapsHandler(ts.metadata, ts.links), middleware.OptionalAuth(fakeVerifier{}))
	handlers.SetupCafeRoutes(api.Group("/cafes"),
		handlers.NewCafeHandler(services.NewCafeService(repository.NewCafeRepo(db))), auth)
	handlers.SetupUserRoutes(api.Group("/users"),
		handlers.NewUserHandler(services.NewUserService(repository.NewUserRepo(db))), auth)
	handlers.SetupImageRoutes(api.Group("/images"),
		handlers.NewImageHandler(services.NewUploadTokenService(uploadSecret, 10)), auth)
	app.Get("/health", handlers.HealthCheck)
	app.Use(handlers.NotFound)

	ts.app = app
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, resp.StatusCode, env.Code, "envelope code mirrors the HTTP status")
	return resp.StatusCode, env
}

func TestResolvePlace(t *testing.T) {
	ts := newTestServer(t, "")
	ts.metadata.result = &services.ResolutionResult{PlaceID: "ChIJ-blue-bottle"}

	status, env := ts.do(t, http.MethodPost, "/api/google-maps/resolve",
		map[string]string{"title": "Blue Bottle", "description": "downtown"}, "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Blue Bottle", ts.metadata.title)
	var result services.ResolutionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "ChIJ-blue-bottle", result.PlaceID)
}

func TestResolvePlaceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"no candidate", fmt.Errorf("%w for %q", services.ErrNoCandidateFound, "nowhere cafe"), http.StatusNotFound, ""},
		{"provider down", fmt.Errorf("find place: %w: maps: REQUEST_DENIED", services.ErrLookupUnavailable), http.StatusBadGateway, "place provider unavailable"},
		{"unclassified", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, "")
			ts.metadata.err = tt.err

			status, env := ts.do(t, http.MethodPost, "/api/google-maps/resolve", map[string]string{"title": "x"}, "")

			assert.Equal(t, tt.status, status)
			assert.Equal(t, "null", string(env.Data))
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Message)
			}
		})
	}
}

func TestResolveLink(t *testing.T) {
	ts := newTestServer(t, "")
	ts.links.result = &services.ResolutionResult{
		PlaceID: "0x1:0x2",
		Link:    &services.LinkData{FeatureID: "0x1:0x2", Name: "Blue Bottle"},
	}

	status, env := ts.do(t, http.MethodPost, "/api/google-maps/resolve-link",
		map[string]string{"sharingUrl": "https://maps.app.goo.gl/abc"}, "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Google Maps link resolved successfully", env.Message)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data, "googleMapsData")
}

func TestResolveLinkErrors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		ts := newTestServer(t, "")
		status, _ := ts.do(t, http.MethodPost, "/api/google-maps/resolve-link", map[string]string{}, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("no feature id", func(t *testing.T) {
		ts := newTestServer(t, "")
		ts.links.err = services.ErrFeatureIDExtraction
		status, _ := ts.do(t, http.MethodPost, "/api/google-maps/resolve-link",
			map[string]string{"sharingUrl": "https://example.com"}, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("store failure", func(t *testing.T) {
		ts := newTestServer(t, "")
		ts.links.err = fmt.Errorf("%w: save: %w", services.ErrLinkResolutionFailed, errors.New("disk full"))
		status, env := ts.do(t, http.MethodPost, "/api/google-maps/resolve-link",
			map[string]string{"sharingUrl": "https://maps.app.goo.gl/abc"}, "")
		assert.Equal(t, http.StatusBadGateway, status)
		assert.NotContains(t, env.Message, "disk full")
	})
}

func cafeBody(name, googlePlace string) map[string]any {
	return map[string]any{
		"name":        name,
		"address":     "서울 중구 세종대로 110",
		"location":    map[string]float64{"lat": 37.5665, "lng": 126.9780},
		"googlePlace": googlePlace,
	}
}

func TestCafeRoutes(t *testing.T) {
	ts := newTestServer(t, "")

	status, _ := ts.do(t, http.MethodPost, "/api/cafes", cafeBody("Cafe A", "place-a"), "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, http.MethodPost, "/api/cafes", cafeBody("Cafe A", "place-a"), "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := ts.do(t, http.MethodPost, "/api/cafes", cafeBody("Cafe A", "place-a"), validToken)
	require.Equal(t, http.StatusCreated, status)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	status, _ = ts.do(t, http.MethodPost, "/api/cafes", cafeBody("Cafe B", "place-a"), validToken)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/api/cafes", map[string]any{"name": "no address"}, validToken)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = ts.do(t, http.MethodGet, "/api/cafes/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Cafe A")

	status, _ = ts.do(t, http.MethodGet, "/api/cafes/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, env = ts.do(t, http.MethodPut, "/api/cafes/"+created.ID, cafeBody("Cafe A+", ""), validToken)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Cafe A+")

	status, env = ts.do(t, http.MethodGet, "/api/cafes/nearby?lat=37.5665&lng=126.9780&radiusKm=1", nil, "")
	assert.Equal(t, http.StatusOK, status)
	var nearby []services.NearbyCafe
	require.NoError(t, json.Unmarshal(env.Data, &nearby))
	require.Len(t, nearby, 1)
	assert.Equal(t, created.ID, nearby[0].ID)

	status, _ = ts.do(t, http.MethodGet, "/api/cafes/nearby?lng=126.9780", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, http.MethodGet, "/api/cafes/nearby?lat=37.5&lng=126.9&radiusKm=500", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	for _, query := range []string{"lat=NaN&lng=126.9", "lat=37.5&lng=126.9&radiusKm=NaN", "lat=37.5&lng=Inf"} {
		status, _ = ts.do(t, http.MethodGet, "/api/cafes/nearby?"+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, status, query)
	}

	status, _ = ts.do(t, http.MethodDelete, "/api/cafes/"+created.ID, nil, validToken)
	assert.Equal(t, http.StatusOK, status)

	status, env = ts.do(t, http.MethodGet, "/api/cafes", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(env.Data))
}

func TestUserRoutes(t *testing.T) {
	ts := newTestServer(t, "")

	status, env := ts.do(t, http.MethodPost, "/api/users", map[string]string{"name": "Bob", "email": "bob@example.com"}, "")
	require.Equal(t, http.StatusCreated, status)
	var bob struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &bob))
	assert.Equal(t, "user", bob.Role)

	status, _ = ts.do(t, http.MethodPost, "/api/users", map[string]string{"name": "Bobby", "email": "BOB@example.com"}, "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodGet, "/api/users/"+bob.ID, nil, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodGet, "/api/users/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = ts.do(t, http.MethodGet, "/api/users/me", nil, validToken)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Email       string `json:"email"`
		FirebaseUID string `json:"firebaseUid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, "uid-1", me.FirebaseUID)

	status, env = ts.do(t, http.MethodGet, "/api/users?page=0&size=1", nil, "")
	require.Equal(t, http.StatusOK, status)
	var page services.ListUsersResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, 2, page.TotalPages)

	status, _ = ts.do(t, http.MethodGet, "/api/users?size=1000", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUploadToken(t *testing.T) {
	t.Run("issued to the caller", func(t *testing.T) {
		ts := newTestServer(t, "worker-secret")
		status, env := ts.do(t, http.MethodPost, "/api/images/upload-token", nil, validToken)
		require.Equal(t, http.StatusOK, status)

		var token services.UploadToken
		require.NoError(t, json.Unmarshal(env.Data, &token))
		claims, err := auth.ValidateUploadToken(token.Token, "worker-secret")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserID)
	})

	t.Run("requires auth", func(t *testing.T) {
		ts := newTestServer(t, "worker-secret")
		status, _ := ts.do(t, http.MethodPost, "/api/images/upload-token", nil, "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("disabled without secret", func(t *testing.T) {
		ts := newTestServer(t, "")
		status, _ := ts.do(t, http.MethodPost, "/api/images/upload-token", nil, validToken)
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})
}

func TestAuthNotConfigured(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/private", middleware.AuthRequired(nil), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, "")
	status, env := ts.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", env.Message)
}
