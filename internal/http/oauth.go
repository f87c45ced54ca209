package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"wanderlust/internal/domain"
	"wanderlust/internal/httperr"
	"wanderlust/internal/service"
)

const (
	defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateTTL           = 10 * time.Minute
)

// GoogleOAuth drives the Google authorization-code flow. The state
// parameter is a short-lived signed token, so the callback verifies it
// without server-side state.
type GoogleOAuth struct {
	Config      *oauth2.Config
	UserinfoURL string

	stateSecret []byte
}

func NewGoogleOAuth(clientID, clientSecret, callbackURL string, stateSecret []byte) *GoogleOAuth {
	return &GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		UserinfoURL: defaultUserinfoURL,
		stateSecret: stateSecret,
	}
}

// NewState issues a signed state token for one authorization round trip.
func (g *GoogleOAuth) NewState() (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateTTL)),
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.stateSecret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return state, nil
}

// CheckState verifies the signature and expiry of a returned state token.
func (g *GoogleOAuth) CheckState(state string) error {
	_, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		return g.stateSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("verify oauth state: %w", err)
	}
	return nil
}

// FetchProfile exchanges the authorization code and retrieves the
// visitor's Google profile.
func (g *GoogleOAuth) FetchProfile(ctx context.Context, code string) (service.ExternalProfile, error) {
	var profile service.ExternalProfile

	token, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return profile, fmt.Errorf("exchange authorization code: %w", err)
	}

	resp, err := g.Config.Client(ctx, token).Get(g.UserinfoURL)
	if err != nil {
		return profile, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return profile, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" {
		return profile, fmt.Errorf("userinfo response missing subject id")
	}

	return service.ExternalProfile{
		Provider:    "google",
		ID:          info.ID,
		DisplayName: info.Name,
		Email:       info.Email,
	}, nil
}

func (h *Handler) oauthRedirect(c *gin.Context) {
	if h.oauth == nil {
		h.fail(c, httperr.New(http.StatusNotFound, "Page not found"))
		return
	}

	state, err := h.oauth.NewState()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.oauth.Config.AuthCodeURL(state))
}

func (h *Handler) oauthCallback(c *gin.Context) {
	if h.oauth == nil {
		h.fail(c, httperr.New(http.StatusNotFound, "Page not found"))
		return
	}

	if err := h.oauth.CheckState(c.Query("state")); err != nil {
		h.fail(c, httperr.Wrap(http.StatusBadRequest, "Invalid authentication state", err))
		return
	}
	code := c.Query("code")
	if code == "" {
		h.fail(c, httperr.New(http.StatusBadRequest, "Authorization was denied"))
		return
	}

	profile, err := h.oauth.FetchProfile(c.Request.Context(), code)
	if err != nil {
		h.fail(c, httperr.Wrap(http.StatusInternalServerError, "Google login failed", err))
		return
	}

	user, err := h.users.ResolveExternal(c.Request.Context(), profile)
	if err != nil {
		h.fail(c, httperr.Wrap(http.StatusInternalServerError, "Google login failed", err))
		return
	}

	sess := currentSession(c)
	sess.SetUserID(user.ID)
	sess.Flash(domain.FlashSuccess, fmt.Sprintf("Welcome, %s!", user.Username))
	c.Redirect(http.StatusFound, "/listings")
}
