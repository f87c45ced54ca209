package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wanderlust/internal/domain"
	"wanderlust/internal/httperr"
	"wanderlust/internal/repository"
	"wanderlust/internal/service"
	"wanderlust/internal/storage"
)

func (h *Handler) indexListings(c *gin.Context) {
	listings, err := h.listings.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		listings = filterListings(listings, query)
	}

	h.render(c, http.StatusOK, "listings/index.html", gin.H{"listings": listings})
}

func (h *Handler) newListingForm(c *gin.Context) {
	h.render(c, http.StatusOK, "listings/new.html", nil)
}

func (h *Handler) createListing(c *gin.Context) {
	user := currentUser(c)
	sess := currentSession(c)

	listing := &domain.Listing{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
		ImageURL:    strings.TrimSpace(c.PostForm("image_url")),
		Location:    strings.TrimSpace(c.PostForm("location")),
		Country:     strings.TrimSpace(c.PostForm("country")),
		OwnerID:     user.ID,
	}

	price, err := strconv.ParseInt(c.DefaultPostForm("price", "0"), 10, 64)
	if err != nil {
		sess.Flash(domain.FlashError, "Price must be a number")
		c.Redirect(http.StatusFound, "/listings/new")
		return
	}
	listing.Price = price

	url, key, err := h.storeImage(c)
	if err != nil {
		h.fail(c, httperr.Wrap(http.StatusInternalServerError, "Image upload failed", err))
		return
	}
	if url != "" {
		listing.ImageURL, listing.ImageKey = url, key
	}

	if _, err := h.listings.Create(c.Request.Context(), listing); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			sess.Flash(domain.FlashError, verr.Error())
			c.Redirect(http.StatusFound, "/listings/new")
			return
		}
		h.fail(c, err)
		return
	}

	sess.Flash(domain.FlashSuccess, "New listing created!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", listing.ID))
}

func (h *Handler) showListing(c *gin.Context) {
	listing, err := h.listingFromParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := currentUser(c)
	isOwner := user != nil && user.ID == listing.OwnerID
	h.render(c, http.StatusOK, "listings/show.html", gin.H{
		"listing": listing,
		"isOwner": isOwner,
	})
}

func (h *Handler) editListingForm(c *gin.Context) {
	listing := c.MustGet(ctxListing).(*domain.Listing)
	h.render(c, http.StatusOK, "listings/edit.html", gin.H{"listing": listing})
}

func (h *Handler) updateListing(c *gin.Context) {
	listing := c.MustGet(ctxListing).(*domain.Listing)
	sess := currentSession(c)
	editPath := fmt.Sprintf("/listings/%d/edit", listing.ID)

	listing.Title = strings.TrimSpace(c.PostForm("title"))
	listing.Description = strings.TrimSpace(c.PostForm("description"))
	listing.Location = strings.TrimSpace(c.PostForm("location"))
	listing.Country = strings.TrimSpace(c.PostForm("country"))

	price, err := strconv.ParseInt(c.DefaultPostForm("price", "0"), 10, 64)
	if err != nil {
		sess.Flash(domain.FlashError, "Price must be a number")
		c.Redirect(http.StatusFound, editPath)
		return
	}
	listing.Price = price

	oldKey := listing.ImageKey
	url, key, err := h.storeImage(c)
	switch {
	case err != nil:
		h.fail(c, httperr.Wrap(http.StatusInternalServerError, "Image upload failed", err))
		return
	case url != "":
		listing.ImageURL, listing.ImageKey = url, key
	default:
		if formURL := strings.TrimSpace(c.PostForm("image_url")); formURL != listing.ImageURL {
			listing.ImageURL, listing.ImageKey = formURL, ""
		}
	}

	if err := h.listings.Update(c.Request.Context(), listing); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			sess.Flash(domain.FlashError, verr.Error())
			c.Redirect(http.StatusFound, editPath)
			return
		}
		h.fail(c, err)
		return
	}

	if oldKey != "" && oldKey != listing.ImageKey {
		h.deleteImage(c, oldKey)
	}

	sess.Flash(domain.FlashSuccess, "Listing updated!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/listings/%d", listing.ID))
}

func (h *Handler) deleteListing(c *gin.Context) {
	listing := c.MustGet(ctxListing).(*domain.Listing)

	if err := h.listings.Delete(c.Request.Context(), listing.ID); err != nil {
		h.fail(c, err)
		return
	}
	if listing.ImageKey != "" {
		h.deleteImage(c, listing.ImageKey)
	}

	currentSession(c).Flash(domain.FlashSuccess, "Listing deleted!")
	c.Redirect(http.StatusFound, "/listings")
}

// listingFromParam parses the :id parameter and loads the listing with
// its reviews.
func (h *Handler) listingFromParam(c *gin.Context) (*domain.Listing, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, httperr.New(http.StatusBadRequest, "Invalid listing id")
	}

	listing, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, httperr.Wrap(http.StatusNotFound, "Listing not found", err)
		}
		return nil, err
	}
	return listing, nil
}

// storeImage uploads a submitted image file, if any, returning its public
// URL and object key. Without configured storage the file input is
// ignored and the form's URL field is used as-is.
func (h *Handler) storeImage(c *gin.Context) (url, key string, err error) {
	if h.storage == nil || h.bucket == "" {
		return "", "", nil
	}

	file, ferr := c.FormFile("image")
	if ferr != nil {
		// no file submitted
		return "", "", nil
	}

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("open uploaded image: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(src)

	key = strings.Trim(h.keyPrefix, "/")
	if key != "" {
		key += "/"
	}
	key += uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))

	if err := h.storage.Upload(c.Request.Context(), storage.UploadInput{
		Bucket:      h.bucket,
		Key:         key,
		Body:        src,
		ContentType: file.Header.Get("Content-Type"),
	}); err != nil {
		return "", "", err
	}

	return h.storage.PublicURL(h.bucket, key), key, nil
}

// deleteImage removes a stored image object; failures degrade to a
// warning since the listing change has already been persisted.
func (h *Handler) deleteImage(c *gin.Context, key string) {
	if h.storage == nil || h.bucket == "" {
		return
	}
	if err := h.storage.Delete(c.Request.Context(), h.bucket, key); err != nil {
		h.logger.WithError(err).Warnf("delete image %s", key)
	}
}

func filterListings(listings []domain.Listing, query string) []domain.Listing {
	query = strings.ToLower(query)
	var matched []domain.Listing
	for _, listing := range listings {
		haystack := strings.ToLower(listing.Title + " " + listing.Location + " " + listing.Country)
		if strings.Contains(haystack, query) {
			matched = append(matched, listing)
		}
	}
	return matched
}
