package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/server/services"
)

// listPhotos returns photos newest-first, optionally filtered by owner.
// The map view is public, so no token is required here.
func (s *Server) listPhotos(c *gin.Context) {
	photos, err := s.photos.List(c.Request.Context(), c.Query("userId"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(photos),
		"photos":  photos,
	})
}

// uploadPhoto accepts a multipart form with the image in the "photo" field
// and runs it through the upload pipeline.
func (s *Server) uploadPhoto(c *gin.Context) {
	// Reject oversized requests before buffering the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadRequestBytes)

	file, err := c.FormFile("photo")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"message": fmt.Sprintf("request exceeds the %d byte upload limit", s.maxUploadRequestBytes),
			})
			return
		}
		abortWithError(c, fmt.Errorf("%w: photo file is required", common.ErrInvalidRequest))
		return
	}

	latitude, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	longitude, lngErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lngErr != nil {
		abortWithError(c, fmt.Errorf("%w: latitude and longitude are required", common.ErrInvalidRequest))
		return
	}

	src, err := file.Open()
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}

	photo, err := s.photos.Upload(c.Request.Context(), &services.UploadRequest{
		OwnerID:   requesterID(c),
		Title:     c.PostForm("title"),
		Latitude:  latitude,
		Longitude: longitude,
		Data:      data,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"photo":   photo,
	})
}

func (s *Server) deletePhoto(c *gin.Context) {
	if err := s.photos.Delete(c.Request.Context(), c.Param("id"), requesterID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Photo deleted successfully",
	})
}
