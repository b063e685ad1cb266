package api

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/utils"
)

// presentError maps domain errors to HTTP statuses and reports the rest as
// internal errors. It returns true when the request was answered.
func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, models.BadParameterError):
		c.JSON(http.StatusBadRequest, gin.H{
			"message":    "bad parameter",
			"error_code": "bad_parameter",
			"details":    err.Error(),
		})
	case errors.Is(err, models.UnAuthorizedError):
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":    "unauthorized",
			"error_code": "unauthorized",
		})
	case errors.Is(err, models.ForbiddenError):
		c.JSON(http.StatusForbidden, gin.H{
			"message":    "forbidden",
			"error_code": "forbidden",
		})
	case errors.Is(err, models.NotFoundError):
		c.JSON(http.StatusNotFound, gin.H{
			"message":    "not found",
			"error_code": "not_found",
		})
	case errors.Is(err, models.ConflictError):
		// append races land here: the write did not happen and is safe to retry
		c.JSON(http.StatusConflict, gin.H{
			"message":    "duplicate value or concurrent write",
			"error_code": "conflict",
			"details":    err.Error(),
		})
	default:
		utils.LogAndReportSentryError(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":    "internal error",
			"error_code": "internal_error",
		})
	}
	return true
}
