package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wanderlust/internal/service"
	"wanderlust/internal/session"
	"wanderlust/internal/storage"
)

// context keys set by the middleware pipeline for downstream handlers
// and the rendering layer.
const (
	ctxSession      = "session"
	ctxCurrentUser  = "currentUser"
	ctxFlashSuccess = "flashSuccess"
	ctxFlashError   = "flashError"
	ctxHideSearch   = "hideSearch"
	ctxListing      = "listing"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	listings  service.ListingService
	reviews   service.ReviewService
	sessions  *session.Manager
	storage   storage.Service
	bucket    string
	keyPrefix string
	oauth     *GoogleOAuth
	logger    *logrus.Logger
}

func NewHandler(
	users service.UserService,
	listings service.ListingService,
	reviews service.ReviewService,
	sessions *session.Manager,
	store storage.Service,
	bucket string,
	keyPrefix string,
	oauth *GoogleOAuth,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:     users,
		listings:  listings,
		reviews:   reviews,
		sessions:  sessions,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		oauth:     oauth,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.sessionMiddleware(), h.contextMiddleware(), h.errorBoundary())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/listings")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	listings := router.Group("/listings")
	{
		listings.GET("", h.indexListings)
		listings.GET("/new", h.requireLogin, h.newListingForm)
		listings.POST("", h.requireLogin, h.createListing)
		listings.GET("/:id", h.showListing)
		listings.GET("/:id/edit", h.requireLogin, h.requireListingOwner, h.editListingForm)
		listings.PUT("/:id", h.requireLogin, h.requireListingOwner, h.updateListing)
		listings.DELETE("/:id", h.requireLogin, h.requireListingOwner, h.deleteListing)

		listings.POST("/:id/reviews", h.requireLogin, h.createReview)
		listings.DELETE("/:id/reviews/:reviewId", h.requireLogin, h.deleteReview)
	}

	router.GET("/signup", h.signupForm)
	router.POST("/signup", h.signup)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)

	router.GET("/auth/google", h.oauthRedirect)
	router.GET("/auth/google/callback", h.oauthCallback)

	router.NoRoute(h.notFound)
}

// MethodOverride rewrites POST requests carrying a _method query
// parameter so plain HTML forms can issue PUT and DELETE. It must wrap
// the router because the method has to change before route matching.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch strings.ToUpper(r.URL.Query().Get("_method")) {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}

// render merges the per-request presentation locals into the page data
// and writes the view.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["currentUser"]; !ok {
		data["currentUser"], _ = c.Get(ctxCurrentUser)
	}
	data["success"] = c.GetStringSlice(ctxFlashSuccess)
	data["error"] = c.GetStringSlice(ctxFlashError)
	data["hideSearch"] = c.GetBool(ctxHideSearch)
	c.HTML(status, name, data)
}

// fail hands a failure to the error boundary and stops route logic.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
