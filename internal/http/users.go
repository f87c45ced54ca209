package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wanderlust/internal/domain"
	"wanderlust/internal/service"
)

func (h *Handler) signupForm(c *gin.Context) {
	c.Set(ctxHideSearch, true)
	h.render(c, http.StatusOK, "users/signup.html", nil)
}

func (h *Handler) signup(c *gin.Context) {
	sess := currentSession(c)

	user, err := h.users.Register(
		c.Request.Context(),
		c.PostForm("username"),
		c.PostForm("email"),
		c.PostForm("password"),
	)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			sess.Flash(domain.FlashError, "A user with that username or email already exists")
		case errors.As(err, &verr):
			sess.Flash(domain.FlashError, verr.Error())
		default:
			h.fail(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	sess.SetUserID(user.ID)
	sess.Flash(domain.FlashSuccess, "Welcome to Wanderlust!")
	c.Redirect(http.StatusFound, "/listings")
}

func (h *Handler) loginForm(c *gin.Context) {
	c.Set(ctxHideSearch, true)
	h.render(c, http.StatusOK, "users/login.html", nil)
}

func (h *Handler) login(c *gin.Context) {
	sess := currentSession(c)

	user, err := h.users.Authenticate(
		c.Request.Context(),
		c.PostForm("username"),
		c.PostForm("password"),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			sess.Flash(domain.FlashError, "Invalid username or password")
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.fail(c, err)
		return
	}

	sess.SetUserID(user.ID)
	sess.Flash(domain.FlashSuccess, "Welcome back!")

	target := sess.TakeRedirect()
	if target == "" {
		target = "/listings"
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) logout(c *gin.Context) {
	sess := currentSession(c)

	// the persisted record is destroyed; the renewed session carries the
	// goodbye flash under a fresh token
	h.sessions.Destroy(context.WithoutCancel(c.Request.Context()), sess)
	h.setSessionCookie(c, sess.Token())

	sess.Flash(domain.FlashSuccess, "You have been logged out")
	c.Redirect(http.StatusFound, "/listings")
}
