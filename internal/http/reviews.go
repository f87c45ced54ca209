package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wanderlust/internal/domain"
	"wanderlust/internal/httperr"
	"wanderlust/internal/repository"
	"wanderlust/internal/service"
)

func (h *Handler) createReview(c *gin.Context) {
	user := currentUser(c)

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || listingID <= 0 {
		h.fail(c, httperr.New(http.StatusBadRequest, "Invalid listing id"))
		return
	}

	// a non-numeric rating becomes zero and fails validation below
	rating, _ := strconv.Atoi(c.PostForm("rating"))
	review := &domain.Review{
		ListingID: listingID,
		AuthorID:  user.ID,
		Rating:    rating,
		Comment:   c.PostForm("comment"),
	}

	if _, err := h.reviews.Create(c.Request.Context(), review); err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			h.fail(c, httperr.New(http.StatusBadRequest, verr.Error()))
		case errors.Is(err, repository.ErrNotFound):
			h.fail(c, httperr.Wrap(http.StatusNotFound, "Listing not found", err))
		default:
			h.fail(c, err)
		}
		return
	}

	currentSession(c).Flash(domain.FlashSuccess, "Review added!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", listingID))
}

func (h *Handler) deleteReview(c *gin.Context) {
	user := currentUser(c)

	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || listingID <= 0 {
		h.fail(c, httperr.New(http.StatusBadRequest, "Invalid listing id"))
		return
	}
	reviewID, err := strconv.ParseInt(c.Param("reviewId"), 10, 64)
	if err != nil || reviewID <= 0 {
		h.fail(c, httperr.New(http.StatusBadRequest, "Invalid review id"))
		return
	}

	showPath := fmt.Sprintf("/listings/%d", listingID)

	review, err := h.reviews.Get(c.Request.Context(), reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.fail(c, httperr.Wrap(http.StatusNotFound, "Review not found", err))
			return
		}
		h.fail(c, err)
		return
	}
	if review.AuthorID != user.ID {
		currentSession(c).Flash(domain.FlashError, "You do not have permission to do that")
		c.Redirect(http.StatusFound, showPath)
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), reviewID); err != nil {
		h.fail(c, err)
		return
	}

	currentSession(c).Flash(domain.FlashSuccess, "Review deleted!")
	c.Redirect(http.StatusFound, showPath)
}
