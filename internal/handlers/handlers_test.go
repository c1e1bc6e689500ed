package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	slackinerrors "slackin/internal/errors"
	"slackin/internal/lang"
	"slackin/internal/metrics"
	"slackin/internal/slack"
)

func newTestResolver(t *testing.T) *lang.Resolver {
	t.Helper()
	catalog, err := lang.DefaultCatalog()
	require.NoError(t, err)
	resolver := lang.New("en")
	resolver.SetMessages(catalog)
	return resolver
}

func TestResolveLocale(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name           string
		query          string
		acceptLanguage string
		expected       string
	}{
		{"default", "", "", "en"},
		{"query wins", "pt-br", "", "pt-br"},
		{"query underscore form", "pt_BR", "", "pt-br"},
		{"query primary subtag", "pt", "", "pt-br"},
		{"unknown query falls back", "fr", "", "en"},
		{"malformed query falls back", "../../etc", "", "en"},
		{"accept-language", "", "pt-BR,pt;q=0.9,en;q=0.8", "pt-br"},
		{"accept-language skips unknown", "", "fr-FR,fr;q=0.9", "en"},
		{"query beats accept-language", "en", "pt-BR", "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			target := "/"
			if tc.query != "" {
				target = "/?lang=" + tc.query
			}
			req := httptest.NewRequest("GET", target, nil)
			if tc.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tc.acceptLanguage)
			}
			assert.Equal(t, tc.expected, resolveLocale(req, resolver))
		})
	}
}

func TestI18nEndpoint(t *testing.T) {
	router := chi.NewRouter()
	RegisterI18nRoutes(router, newTestResolver(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/i18n?lang=pt-br", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload i18nResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "pt-br", payload.Locale)
	assert.Equal(t, []string{"en", "pt-br"}, payload.Locales)
	require.Contains(t, payload.Messages, "slackin")
	assert.Contains(t, payload.Messages["slackin"], "join")
}

func inviteBody(email string, coc bool) *strings.Reader {
	payload, _ := json.Marshal(inviteRequest{Email: email, CoC: coc})
	return strings.NewReader(string(payload))
}

func postInvite(t *testing.T, opts InviteOptions, body *strings.Reader, contentType string) (*httptest.ResponseRecorder, inviteResponse) {
	t.Helper()
	router := chi.NewRouter()
	RegisterInviteRoutes(router, opts)

	req := httptest.NewRequest("POST", "/invite", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload inviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func TestInviteSuccessJSON(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("Invite", mock.Anything, "gopher@example.com").Return(nil)
	counter := metrics.NewInviteCounter()
	opts := InviteOptions{Slack: mockSlack, Resolver: newTestResolver(t), Invites: counter}

	rec, payload := postInvite(t, opts, inviteBody("gopher@example.com", false), "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, payload.OK)
	assert.Contains(t, payload.Message, "gopher@example.com")
	assert.InDelta(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("sent")), 0.0001)
	mockSlack.AssertExpectations(t)
}

func TestInviteSuccessForm(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("Invite", mock.Anything, "gopher@example.com").Return(nil)
	opts := InviteOptions{Slack: mockSlack, Resolver: newTestResolver(t), RequireCoC: true}

	body := strings.NewReader("email=gopher%40example.com&coc=on")
	rec, payload := postInvite(t, opts, body, "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, payload.OK)
	mockSlack.AssertExpectations(t)
}

func TestInviteMissingEmail(t *testing.T) {
	counter := metrics.NewInviteCounter()
	opts := InviteOptions{Slack: new(slack.MockClient), Resolver: newTestResolver(t), Invites: counter}

	rec, payload := postInvite(t, opts, inviteBody("", false), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, payload.OK)
	assert.Equal(t, "The email field is required.", payload.Error)
	assert.InDelta(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("invalid")), 0.0001)
}

func TestInviteInvalidEmail(t *testing.T) {
	opts := InviteOptions{Slack: new(slack.MockClient), Resolver: newTestResolver(t)}

	rec, payload := postInvite(t, opts, inviteBody("not-an-email", false), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The email must be a valid email address.", payload.Error)
}

func TestInviteRequiresCoC(t *testing.T) {
	opts := InviteOptions{Slack: new(slack.MockClient), Resolver: newTestResolver(t), RequireCoC: true}

	rec, payload := postInvite(t, opts, inviteBody("gopher@example.com", false), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "The coc must be accepted.", payload.Error)
}

func TestInviteLocalizedErrors(t *testing.T) {
	router := chi.NewRouter()
	RegisterInviteRoutes(router, InviteOptions{Slack: new(slack.MockClient), Resolver: newTestResolver(t)})

	req := httptest.NewRequest("POST", "/invite?lang=pt-br", inviteBody("", false))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload inviteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "O campo email é obrigatório.", payload.Error)
}

func TestInviteSlackFailures(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name           string
		inviteErr      error
		expectedStatus int
		expectedLabel  string
	}{
		{"already invited", slackinerrors.ErrAlreadyInvited, http.StatusConflict, "already_invited"},
		{"already in team", slackinerrors.ErrAlreadyInTeam, http.StatusConflict, "already_in_team"},
		{"disabled", slackinerrors.ErrInviteDisabled, http.StatusForbidden, "disabled"},
		{"unavailable", slackinerrors.ErrSlackUnavailable, http.StatusBadGateway, "unavailable"},
		{"unknown", assert.AnError, http.StatusBadGateway, "failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockSlack := new(slack.MockClient)
			mockSlack.On("Invite", mock.Anything, "gopher@example.com").Return(tc.inviteErr)
			counter := metrics.NewInviteCounter()
			opts := InviteOptions{Slack: mockSlack, Resolver: resolver, Invites: counter}

			rec, payload := postInvite(t, opts, inviteBody("gopher@example.com", false), "application/json")

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.False(t, payload.OK)
			assert.NotEmpty(t, payload.Error)
			assert.InDelta(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(tc.expectedLabel)), 0.0001)
		})
	}
}

func TestBadgeWithCounts(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{Total: 345, Active: 12}, nil)

	router := chi.NewRouter()
	RegisterBadgeRoutes(router, mockSlack, newTestResolver(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/badge.svg", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml;charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
	assert.Contains(t, rec.Body.String(), "12/345")
	assert.Contains(t, rec.Body.String(), ">slack<")
}

func TestBadgeWhenSlackDown(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{}, assert.AnError)

	router := chi.NewRouter()
	RegisterBadgeRoutes(router, mockSlack, newTestResolver(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/badge.svg", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "-/-")
	assert.Contains(t, rec.Body.String(), "#9f9f9f")
}

func TestHealthEndpoint(t *testing.T) {
	router := chi.NewRouter()
	RegisterStatusRoutes(router, new(slack.MockClient))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestReadyEndpoint(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("CheckConnection", mock.Anything).Return(nil).Once()
	mockSlack.On("CheckConnection", mock.Anything).Return(assert.AnError).Once()

	router := chi.NewRouter()
	RegisterStatusRoutes(router, mockSlack)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("CheckConnection", mock.Anything).Return(nil)
	mockSlack.On("TeamInfo", mock.Anything).Return(slack.Team{Name: "Gophers"}, nil)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{Total: 345, Active: 12}, nil)

	router := chi.NewRouter()
	RegisterStatusRoutes(router, mockSlack)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.True(t, payload.Slack.Connected)
	assert.Equal(t, "Gophers", payload.Slack.Team)
	require.NotNil(t, payload.Counts)
	assert.Equal(t, 345, payload.Counts.Total)
}

func TestStatusEndpointDegraded(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("CheckConnection", mock.Anything).Return(assert.AnError)

	router := chi.NewRouter()
	RegisterStatusRoutes(router, mockSlack)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "degraded", payload.Status)
	assert.False(t, payload.Slack.Connected)
	assert.Nil(t, payload.Counts)
}

func TestVersionEndpoint(t *testing.T) {
	router := chi.NewRouter()
	RegisterStatusRoutes(router, new(slack.MockClient))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Contains(t, payload, "version")
	assert.Contains(t, payload, "commit")
}

func TestCoCPage(t *testing.T) {
	cocPath := filepath.Join(t.TempDir(), "coc.md")
	require.NoError(t, os.WriteFile(cocPath, []byte("# Be excellent\n\nTo *each other*.\n"), 0o644))

	router := chi.NewRouter()
	RegisterCoCRoutes(router, newTestResolver(t), cocPath)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/coc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Be excellent</h1>")
	assert.Contains(t, rec.Body.String(), "<em>each other</em>")
	assert.Contains(t, rec.Body.String(), "<title>Code of Conduct</title>")
}

func TestCoCPageMissing(t *testing.T) {
	router := chi.NewRouter()
	RegisterCoCRoutes(router, newTestResolver(t), "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/coc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	router = chi.NewRouter()
	RegisterCoCRoutes(router, newTestResolver(t), "/nonexistent/coc.md")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/coc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

const indexTemplate = `<!DOCTYPE html><html lang="{{.Locale}}"><body>` +
	`<h1>{{.JoinText}}</h1><p>{{.UsersOnline}} {{.UsersTotal}}</p>` +
	`<input placeholder="{{.EmailPlaceholder}}"><button>{{.ButtonText}}</button>` +
	`{{if .HasCoC}}<label>{{.CoCAgreeText}}</label>{{end}}</body></html>`

func testWebFS() fstest.MapFS {
	return fstest.MapFS{
		"web/index.html": &fstest.MapFile{Data: []byte(indexTemplate)},
		"web/style.css":  &fstest.MapFile{Data: []byte("body{}")},
	}
}

func TestIndexPage(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("TeamInfo", mock.Anything).Return(slack.Team{Name: "Gophers"}, nil)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{Total: 345, Active: 3}, nil)

	router := chi.NewRouter()
	err := RegisterIndexRoutes(router, IndexOptions{
		WebFS:    testWebFS(),
		Slack:    mockSlack,
		Resolver: newTestResolver(t),
		TeamName: "fallback",
		HasCoC:   true,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Join Gophers on Slack")
	assert.Contains(t, body, "3 users online")
	assert.Contains(t, body, "of 345 registered users")
	assert.Contains(t, body, "Get my invite")
}

func TestIndexPageLocalized(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("TeamInfo", mock.Anything).Return(slack.Team{Name: "Gophers"}, nil)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{Total: 10, Active: 1}, nil)

	router := chi.NewRouter()
	err := RegisterIndexRoutes(router, IndexOptions{
		WebFS:    testWebFS(),
		Slack:    mockSlack,
		Resolver: newTestResolver(t),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/?lang=pt-br", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lang="pt-br"`)
	assert.Contains(t, rec.Body.String(), "Junte-se a Gophers no Slack")
}

func TestIndexPageWhenSlackDown(t *testing.T) {
	mockSlack := new(slack.MockClient)
	mockSlack.On("TeamInfo", mock.Anything).Return(slack.Team{}, assert.AnError)
	mockSlack.On("UserCounts", mock.Anything).Return(slack.Counts{}, assert.AnError)

	router := chi.NewRouter()
	err := RegisterIndexRoutes(router, IndexOptions{
		WebFS:    testWebFS(),
		Slack:    mockSlack,
		Resolver: newTestResolver(t),
		TeamName: "fallback",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Join fallback on Slack")
}

func TestStaticAssets(t *testing.T) {
	router := chi.NewRouter()
	err := RegisterIndexRoutes(router, IndexOptions{
		WebFS:    testWebFS(),
		Slack:    new(slack.MockClient),
		Resolver: newTestResolver(t),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/assets/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
