package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wanderlust/internal/domain"
	"wanderlust/internal/httperr"
	"wanderlust/internal/session"
)

// sessionMiddleware restores the request's session from the cookie,
// issuing a fresh one when absent or expired, and writes the record back
// once the rest of the pipeline has run.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(session.CookieName)
		sess := h.sessions.Load(c.Request.Context(), token)
		if sess.Token() != token {
			h.setSessionCookie(c, sess.Token())
		}
		c.Set(ctxSession, sess)

		c.Next()

		// a disconnecting client must not lose queued flashes
		h.sessions.Save(context.WithoutCancel(c.Request.Context()), sess)
	}
}

// contextMiddleware sets the presentation locals every view depends on:
// drained flash messages, the current user and default UI flags. It runs
// for every route, including unmatched ones, so the error view always
// has its locals.
func (h *Handler) contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)

		var success, failures []string
		for _, flash := range sess.DrainFlashes() {
			switch flash.Kind {
			case domain.FlashSuccess:
				success = append(success, flash.Message)
			case domain.FlashError:
				failures = append(failures, flash.Message)
			}
		}
		c.Set(ctxFlashSuccess, success)
		c.Set(ctxFlashError, failures)

		if user := h.sessions.CurrentUser(c.Request.Context(), sess); user != nil {
			c.Set(ctxCurrentUser, user)
		}
		c.Set(ctxHideSearch, false)

		c.Next()
	}
}

// errorBoundary is the terminal failure handler: any error propagated by
// a route or middleware is normalized to a status and message, logged in
// full, and rendered as the error view without leaking internals.
func (h *Handler) errorBoundary() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, message := httperr.Resolve(err)

		h.logger.WithFields(logrus.Fields{
			"status": status,
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("request failed")

		if c.Writer.Written() {
			return
		}
		c.Set(ctxHideSearch, true)
		h.render(c, status, "error.html", gin.H{"message": message})
	}
}

// notFound synthesizes the failure for unmatched routes.
func (h *Handler) notFound(c *gin.Context) {
	h.fail(c, httperr.New(http.StatusNotFound, "Page not found"))
}

// requireLogin redirects anonymous visitors to the login page,
// remembering where they were headed.
func (h *Handler) requireLogin(c *gin.Context) {
	if _, ok := c.Get(ctxCurrentUser); ok {
		c.Next()
		return
	}

	sess := currentSession(c)
	if c.Request.Method == http.MethodGet {
		sess.SetRedirect(c.Request.URL.RequestURI())
	}
	sess.Flash(domain.FlashError, "You must be logged in first")
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

// requireListingOwner loads the listing from the :id parameter and only
// lets its owner continue. The loaded listing is stashed for the handler.
func (h *Handler) requireListingOwner(c *gin.Context) {
	listing, err := h.listingFromParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := currentUser(c)
	if user == nil || user.ID != listing.OwnerID {
		currentSession(c).Flash(domain.FlashError, "You do not have permission to do that")
		c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", listing.ID))
		c.Abort()
		return
	}

	c.Set(ctxListing, listing)
	c.Next()
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(session.CookieName, token, int(session.TTL.Seconds()), "/", "", false, true)
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func currentUser(c *gin.Context) *domain.User {
	if user, ok := c.Get(ctxCurrentUser); ok {
		return user.(*domain.User)
	}
	return nil
}
