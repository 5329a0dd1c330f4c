package http

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/guildpost/guildpost/adapters/store"
	"github.com/guildpost/guildpost/adapters/tokenizer"
	"github.com/guildpost/guildpost/core"
	"github.com/guildpost/guildpost/pkg/wallet"
	"github.com/guildpost/guildpost/ports"
	"github.com/guildpost/guildpost/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nullDirectory struct{}

func (nullDirectory) Lookup(ctx context.Context, address string) (*ports.Profile, error) {
	return nil, nil
}

type nullPublisher struct{}

func (nullPublisher) PublishLogin(ctx context.Context, address string) error { return nil }
func (nullPublisher) PublishLogout(ctx context.Context, address, tokenID string) error {
	return nil
}

type testApp struct {
	router     *gin.Engine
	dispatcher *Dispatcher
	auth       *service.AuthService
	tokenizer  ports.Tokenizer
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWith(t, nil)
}

// newTestAppWith allows swapping the token store, e.g. for a failing one.
func newTestAppWith(t *testing.T, tokens ports.TokenStore) *testApp {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	memStore := store.NewMemoryStore()
	if tokens == nil {
		tokens = memStore
	}
	tk := tokenizer.NewJWTTokenizer(key)
	authService := service.NewAuthService(
		tk,
		memStore,
		memStore,
		tokens,
		nullDirectory{},
		nullPublisher{},
		zap.NewNop(),
	)

	dispatcher := NewDispatcher(authService, zap.NewNop())
	router := SetupRouter(
		dispatcher,
		NewAuthHandlers(authService),
		NewBountyHandlers(store.NewMemoryBountyStore()),
	)
	return &testApp{router: router, dispatcher: dispatcher, auth: authService, tokenizer: tk}
}

func (app *testApp) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// login runs the full wallet flow and returns the address and access token.
func (app *testApp) login(t *testing.T, label string) (string, string) {
	t.Helper()
	provider, err := wallet.New(wallet.KindMnemonic, "test wallet "+label)
	require.NoError(t, err)
	require.NoError(t, provider.Init(context.Background()))

	rec := app.do(t, http.MethodPost, "/auth/init", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	nonce := decodeBody(t, rec)["nonce"].(string)

	sig, err := provider.SignLogin(nonce)
	require.NoError(t, err)

	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{
		"address":   provider.Address(),
		"signature": sig,
		"nonce":     nonce,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return provider.Address(), decodeBody(t, rec)["token"].(string)
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)

	provider, err := wallet.New(wallet.KindMnemonic, "scenario a wallet")
	require.NoError(t, err)
	require.NoError(t, provider.Init(context.Background()))

	rec := app.do(t, http.MethodPost, "/auth/init", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	nonce := decodeBody(t, rec)["nonce"].(string)
	require.NotEmpty(t, nonce)

	sig, err := provider.SignLogin(nonce)
	require.NoError(t, err)

	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{
		"address":   provider.Address(),
		"signature": sig,
		"nonce":     nonce,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refresh_token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, provider.Address(), user["id"], "user id equals the wallet address")
}

func TestNonceReplayRejected(t *testing.T) {
	app := newTestApp(t)

	first, err := wallet.New(wallet.KindMnemonic, "replay wallet one")
	require.NoError(t, err)
	require.NoError(t, first.Init(context.Background()))

	rec := app.do(t, http.MethodPost, "/auth/init", nil, "")
	nonce := decodeBody(t, rec)["nonce"].(string)

	sig, err := first.SignLogin(nonce)
	require.NoError(t, err)
	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{
		"address": first.Address(), "signature": sig, "nonce": nonce,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Replay with a different, also-valid signature for the same nonce.
	second, err := wallet.New(wallet.KindMnemonic, "replay wallet two")
	require.NoError(t, err)
	require.NoError(t, second.Init(context.Background()))
	sig2, err := second.SignLogin(nonce)
	require.NoError(t, err)

	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{
		"address": second.Address(), "signature": sig2, "nonce": nonce,
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid nonce", decodeBody(t, rec)["error"])
}

func TestRefreshExpiredTokenUnauthorized(t *testing.T) {
	app := newTestApp(t)
	address, _ := app.login(t, "stale session")

	stale := &core.Session{
		User:          core.User{Address: address},
		IssuedAt:      time.Now().Add(-10 * 24 * time.Hour),
		RefreshExpiry: time.Now().Add(-time.Hour),
		RefreshID:     "stale-refresh",
	}
	expired, err := app.tokenizer.SessionToRefreshToken(stale)
	require.NoError(t, err)

	rec := app.do(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": expired,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Refresh token expired", decodeBody(t, rec)["error"])
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": "not-a-token",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid refresh token", decodeBody(t, rec)["error"])
}

func TestLogoutGarbageTokenUnprocessable(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/logout", map[string]string{
		"refresh_token": "not-a-token",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid refresh token", decodeBody(t, rec)["error"])
}

type downTokenStore struct{}

func (downTokenStore) InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	return errors.New("token store down")
}

func (downTokenStore) IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error) {
	return false, errors.New("token store down")
}

func TestLogoutStoreOutageIsServerError(t *testing.T) {
	app := newTestAppWith(t, downTokenStore{})

	live := &core.Session{
		User:          core.User{Address: "erd1someaddress"},
		IssuedAt:      time.Now(),
		RefreshExpiry: time.Now().Add(time.Hour),
		RefreshID:     "live-refresh",
	}
	token, err := app.tokenizer.SessionToRefreshToken(live)
	require.NoError(t, err)

	rec := app.do(t, http.MethodPost, "/auth/logout", map[string]string{
		"refresh_token": token,
	}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "a backend outage is not a bad token")
}

func TestPrivateActionRequiresIdentity(t *testing.T) {
	app := newTestApp(t)
	invoked := 0

	router := gin.New()
	router.Any("/private-resource", app.dispatcher.Handle(Resource{
		http.MethodGet: {
			Visibility: Private,
			Handle: func(ctx context.Context, req *Request) (*Response, error) {
				invoked++
				return &Response{Body: gin.H{"ok": true}}, nil
			},
		},
	}))

	for _, bearer := range []string{"", "garbage-token"} {
		req := httptest.NewRequest(http.MethodGet, "/private-resource", nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not Authenticated", decodeBody(t, rec)["error"])
	}
	assert.Zero(t, invoked, "the action body must never run for anonymous callers")
}

func TestInvalidBearerIsAnonymousNotError(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/bounties", nil, "syntactically!!invalid??token")
	assert.Equal(t, http.StatusOK, rec.Code, "a public action proceeds as anonymous")
}

func TestValidationCollectsAllViolations(t *testing.T) {
	app := newTestApp(t)

	// Two independent violations: bad address format, missing signature.
	rec := app.do(t, http.MethodPost, "/auth/login", map[string]string{
		"address": "not-an-address",
		"nonce":   "whatever",
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody(t, rec)
	details := body["details"].([]any)
	require.Len(t, details, 2, "all violations are reported, not just the first")

	fields := map[string]string{}
	for _, d := range details {
		detail := d.(map[string]any)
		fields[detail["field"].(string)] = detail["rule"].(string)
	}
	assert.Equal(t, "erd_addr", fields["address"], "the address format rule is cited")
	assert.Equal(t, "required", fields["signature"])
}

func TestUnknownFieldsTolerated(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/auth/login", map[string]string{
		"address":     "not-an-address",
		"signature":   "aa",
		"nonce":       "n",
		"extra_field": "ignored",
	}, "")
	// Still a validation failure for the address, not a rejection of the
	// unknown field.
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeBody(t, rec)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "address", details[0].(map[string]any)["field"])
}

func TestMalformedJSONBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodDelete, "/auth/login", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
	assert.Equal(t, "Method Not Allowed", rec.Body.String())

	rec = app.do(t, http.MethodPut, "/bounties", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestCacheableActionEmitsCacheControl(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/bounties", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, s-maxage=60, stale-while-revalidate=300", rec.Header().Get("Cache-Control"))
}

func TestBountyLifecycle(t *testing.T) {
	app := newTestApp(t)
	_, token := app.login(t, "owner")

	// Creation is a private action.
	rec := app.do(t, http.MethodPost, "/bounties", map[string]string{
		"title": "Translate the docs", "reward": "25.5",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/bounties", map[string]string{
		"title": "Translate the docs", "reward": "25.5",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bountyID := decodeBody(t, rec)["id"].(string)

	rec = app.do(t, http.MethodGet, "/bounties/"+bountyID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "open", decodeBody(t, rec)["status"])

	rec = app.do(t, http.MethodGet, "/bounties/unknown-id", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "bounty not found", decodeBody(t, rec)["error"])
}

func TestBountyCloseAuthorization(t *testing.T) {
	app := newTestApp(t)
	_, creatorToken := app.login(t, "creator")

	rec := app.do(t, http.MethodPost, "/bounties", map[string]string{
		"title": "Fix the parser", "reward": "100",
	}, creatorToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	bountyID := decodeBody(t, rec)["id"].(string)

	// A different authenticated user is forbidden, not unauthenticated.
	_, strangerToken := app.login(t, "stranger")
	rec = app.do(t, http.MethodPost, "/bounties/"+bountyID+"/close", nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/bounties/"+bountyID+"/close", nil, creatorToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "closed", decodeBody(t, rec)["status"])

	// Closing twice is a state conflict.
	rec = app.do(t, http.MethodPost, "/bounties/"+bountyID+"/close", nil, creatorToken)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBountyRejectsNegativeReward(t *testing.T) {
	app := newTestApp(t)
	_, token := app.login(t, "owner")

	rec := app.do(t, http.MethodPost, "/bounties", map[string]string{
		"title": "Underhanded work", "reward": "-5",
	}, token)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decodeBody(t, rec)["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "reward", details[0].(map[string]any)["field"])
}

func TestMeReturnsCurrentUser(t *testing.T) {
	app := newTestApp(t)
	address, token := app.login(t, "me")

	rec := app.do(t, http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, address, user["id"])
}
