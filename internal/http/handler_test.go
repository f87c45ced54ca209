package http

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/repository"
	"wanderlust/internal/repository/sqlite"
	"wanderlust/internal/service"
	"wanderlust/internal/session"
	"wanderlust/internal/web"
)

type testApp struct {
	handler http.Handler
	db      *sql.DB
	users   repository.UserRepository
}

func newTestApp(t *testing.T, oauth *GoogleOAuth) *testApp {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := t.Context()
	userRepo := sqlite.NewUserRepository(db)
	listingRepo := sqlite.NewListingRepository(db)
	reviewRepo := sqlite.NewReviewRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)
	for _, repo := range []interface {
		Init(context.Context) error
	}{userRepo, listingRepo, reviewRepo, sessionRepo} {
		require.NoError(t, repo.Init(ctx))
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())

	handler := NewHandler(
		service.NewUserService(userRepo),
		service.NewListingService(listingRepo, reviewRepo),
		service.NewReviewService(reviewRepo, listingRepo),
		session.NewManager(sessionRepo, userRepo, logger),
		nil, "", "",
		oauth,
		logger,
	)
	handler.RegisterRoutes(router)

	return &testApp{
		handler: MethodOverride(router),
		db:      db,
		users:   userRepo,
	}
}

// client replays the session cookie between requests the way a browser would.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]string
}

func newClient(t *testing.T, app *testApp) *client {
	return &client{t: t, app: app, cookies: make(map[string]string)}
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil)
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, form)
}

func (c *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	rec := httptest.NewRecorder()
	c.app.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie.Value
	}
	return rec
}

func (c *client) signup(username, email, password string) {
	c.t.Helper()
	rec := c.postForm("/signup", url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	require.Equal(c.t, http.StatusFound, rec.Code)
	require.Equal(c.t, "/listings", rec.Header().Get("Location"))
}

func (c *client) createListing(title string) string {
	c.t.Helper()
	rec := c.postForm("/listings", url.Values{
		"title":    {title},
		"price":    {"120"},
		"location": {"Goa"},
		"country":  {"India"},
	})
	require.Equal(c.t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	require.True(c.t, strings.HasPrefix(location, "/listings/"), "location = %q", location)
	return location
}

func TestHealth(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))
	rec := c.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestHealth_SurvivesStoreOutage(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	require.NoError(t, app.db.Close())

	rec := newClient(t, app).get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestRootRedirectsToListings(t *testing.T) {
	t.Parallel()

	rec := newClient(t, newTestApp(t, nil)).get("/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/listings", rec.Header().Get("Location"))
}

func TestUnmatchedRouteRenders404(t *testing.T) {
	t.Parallel()

	rec := newClient(t, newTestApp(t, nil)).get("/no/such/page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page not found")
}

func TestInvalidListingIDIs400(t *testing.T) {
	t.Parallel()

	rec := newClient(t, newTestApp(t, nil)).get("/listings/abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid listing id")
}

func TestMissingListingIs404(t *testing.T) {
	t.Parallel()

	rec := newClient(t, newTestApp(t, nil)).get("/listings/42")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Listing not found")
}

func TestFlashVisibleExactlyOnce(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))

	// request A queues the flash without rendering it
	rec := c.postForm("/login", url.Values{"username": {"ghost"}, "password": {"whatever!"}})
	require.Equal(t, http.StatusFound, rec.Code)

	// request B renders it
	rec = c.get("/login")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid username or password")

	// request C must not
	rec = c.get("/login")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "Invalid username or password")
}

func TestSignupLoginLogout(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))
	c.signup("maya", "maya@example.com", "correct horse")

	rec := c.get("/listings")
	require.Contains(t, rec.Body.String(), "Welcome to Wanderlust!")
	require.Contains(t, rec.Body.String(), "Hello, maya")

	rec = c.postForm("/logout", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = c.get("/listings")
	require.Contains(t, rec.Body.String(), "You have been logged out")
	require.NotContains(t, rec.Body.String(), "Hello, maya")

	// log back in with the registered credentials
	rec = c.postForm("/login", url.Values{"username": {"maya"}, "password": {"correct horse"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/listings", rec.Header().Get("Location"))

	rec = c.get("/listings")
	require.Contains(t, rec.Body.String(), "Welcome back!")
	require.Contains(t, rec.Body.String(), "Hello, maya")
}

func TestRequireLoginRedirectsBack(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))

	rec := c.get("/listings/new")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = c.get("/login")
	require.Contains(t, rec.Body.String(), "You must be logged in first")

	// a second browser registers the account; the first still carries the
	// saved target and lands on it after logging in
	other := newClient(t, c.app)
	other.signup("maya", "", "correct horse")

	rec = c.postForm("/login", url.Values{"username": {"maya"}, "password": {"correct horse"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/listings/new", rec.Header().Get("Location"))
}

func TestListingLifecycle(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))
	c.signup("maya", "", "correct horse")

	showPath := c.createListing("Beach Hut")

	rec := c.get("/listings")
	require.Contains(t, rec.Body.String(), "Beach Hut")

	rec = c.get(showPath)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Beach Hut")
	require.Contains(t, rec.Body.String(), "hosted by maya")

	// owner edits through the method-override form action
	rec = c.postForm(showPath+"?_method=PUT", url.Values{
		"title":    {"Beach Shack"},
		"price":    {"150"},
		"location": {"Goa"},
		"country":  {"India"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = c.get(showPath)
	require.Contains(t, rec.Body.String(), "Beach Shack")

	rec = c.postForm(showPath+"?_method=DELETE", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/listings", rec.Header().Get("Location"))

	rec = c.get(showPath)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingValidationRerendersForm(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))
	c.signup("maya", "", "correct horse")

	rec := c.postForm("/listings", url.Values{
		"title": {"   "},
		"price": {"100"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/listings/new", rec.Header().Get("Location"))

	rec = c.get("/listings/new")
	require.Contains(t, rec.Body.String(), "title is required")
}

func TestNonOwnerCannotEdit(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	owner := newClient(t, app)
	owner.signup("maya", "", "correct horse")
	showPath := owner.createListing("Beach Hut")

	intruder := newClient(t, app)
	intruder.signup("sam", "", "correct horse")

	rec := intruder.get(showPath + "/edit")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, showPath, rec.Header().Get("Location"))

	rec = intruder.get(showPath)
	require.Contains(t, rec.Body.String(), "You do not have permission to do that")
}

func TestReviewFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	owner := newClient(t, app)
	owner.signup("maya", "", "correct horse")
	showPath := owner.createListing("Beach Hut")

	reviewer := newClient(t, app)
	reviewer.signup("sam", "", "correct horse")

	// a declared 400 must surface as exactly that status
	rec := reviewer.postForm(showPath+"/reviews", url.Values{
		"rating":  {"11"},
		"comment": {"way off the scale"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "rating must be between 1 and 5")

	rec = reviewer.postForm(showPath+"/reviews", url.Values{
		"rating":  {"5"},
		"comment": {"wonderful stay"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = reviewer.get(showPath)
	require.Contains(t, rec.Body.String(), "wonderful stay")
	require.Contains(t, rec.Body.String(), "sam")

	// the author can remove it again
	body := rec.Body.String()
	require.Contains(t, body, "/reviews/")
	rec = reviewer.postForm(showPath+"/reviews/1?_method=DELETE", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = reviewer.get(showPath)
	require.NotContains(t, rec.Body.String(), "wonderful stay")
}

func TestSearchFiltersListings(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))
	c.signup("maya", "", "correct horse")
	c.createListing("Beach Hut")
	c.createListing("Mountain Cabin")

	rec := c.get("/listings?q=mountain")
	require.Contains(t, rec.Body.String(), "Mountain Cabin")
	require.NotContains(t, rec.Body.String(), "Beach Hut")
}

func TestSearchBarHiddenOnAuthPages(t *testing.T) {
	t.Parallel()

	c := newClient(t, newTestApp(t, nil))

	rec := c.get("/listings")
	require.Contains(t, rec.Body.String(), `role="search"`)

	rec = c.get("/login")
	require.NotContains(t, rec.Body.String(), `role="search"`)
}

func TestUndeclaredFailureIs500(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	// a closed store makes listing queries fail with an undeclared error
	require.NoError(t, app.db.Close())

	rec := newClient(t, app).get("/listings")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Something went wrong!")
	require.NotContains(t, rec.Body.String(), "database is closed", "internal detail must not leak")
}
