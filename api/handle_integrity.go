package api

import (
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/peerhaven/audit-backend/dto"
	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/pure_utils"
	"github.com/peerhaven/audit-backend/usecases"
)

func handleGetLastIntegrityCheck(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		integrityUsecase := uc.NewIntegrityUsecase()
		check, err := integrityUsecase.GetLastCheck(ctx)
		if presentError(ctx, c, err) {
			return
		}
		if check == nil {
			// the ledger has never been verified
			c.JSON(http.StatusOK, gin.H{"last_check": nil})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"last_check":  dto.AdaptIntegrityCheck(*check),
			"age_seconds": int64(time.Since(check.CheckDate).Seconds()),
		})
	}
}

func handleListIntegrityChecks(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var filters dto.IntegrityCheckFilters
		if err := c.ShouldBindQuery(&filters); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		integrityUsecase := uc.NewIntegrityUsecase()
		checks, err := integrityUsecase.ListChecks(ctx, models.IntegrityCheckFilters{
			Limit:   filters.Limit,
			AfterId: filters.AfterId,
		})
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, pure_utils.Map(checks, dto.AdaptIntegrityCheck))
	}
}

func handleTriggerIntegrityCheck(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// the body is optional: an empty trigger runs a full scan
		var body dto.TriggerIntegrityCheckBody
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			c.Status(http.StatusBadRequest)
			return
		}

		integrityUsecase := uc.NewIntegrityUsecase()
		if err := integrityUsecase.TriggerCheck(ctx, body.Limit); presentError(ctx, c, err) {
			return
		}

		c.Status(http.StatusAccepted)
	}
}
