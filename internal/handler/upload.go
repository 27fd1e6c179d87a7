package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/seatgrid/venue-reservation/internal/repository"
)

// UploadVenueImage accepts a multipart "image" file, stores it under the
// configured upload directory with a random name and records its URL on the
// venue. Only image/* content up to the configured size limit is accepted.
func (h *AdminHandler) UploadVenueImage(c echo.Context) error {
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid venue id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Venues.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Venue not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load venue"})
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "An image file is required"})
	}
	if fh.Size > h.MaxUploadBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File too large. Maximum size is 5MB."})
	}
	if ct := fh.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Only image files are allowed"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not read upload"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not store upload"})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext
	dstPath := filepath.Join(h.UploadDir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not store upload"})
	}
	defer dst.Close()
	// LimitReader guards against a forged Content-Length.
	if _, err := io.Copy(dst, io.LimitReader(src, h.MaxUploadBytes+1)); err != nil {
		_ = os.Remove(dstPath)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not store upload"})
	}
	if fi, err := dst.Stat(); err == nil && fi.Size() > h.MaxUploadBytes {
		_ = os.Remove(dstPath)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "File too large. Maximum size is 5MB."})
	}

	imageURL := "/uploads/" + name
	if err := h.Venues.SetImageURL(ctx, venueID, imageURL); err != nil {
		_ = os.Remove(dstPath)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update venue"})
	}
	return c.JSON(http.StatusOK, echo.Map{"imageUrl": imageURL})
}
