package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salonspa-backend/services"
	"salonspa-backend/utils"
)

// respondServiceError maps service error kinds to HTTP statuses, keeping the
// original message.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidArgument), errors.Is(err, services.ErrInsufficientStock):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Any("request_id", c.Value("requestId")),
			zap.Error(err),
		)
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// storeFromContext returns the store id carried by the bearer token, or 0.
func storeFromContext(c *gin.Context) uint {
	if v, ok := c.Get("storeId"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
