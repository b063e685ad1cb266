package api

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/peerhaven/audit-backend/dto"
	"github.com/peerhaven/audit-backend/models"
	"github.com/peerhaven/audit-backend/pure_utils"
	"github.com/peerhaven/audit-backend/usecases"
)

func handleCreateAuditEntry(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.CreateAuditEntryBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		ledgerUsecase := uc.NewLedgerUsecase()
		entry, err := ledgerUsecase.AppendEntry(ctx, dto.AdaptCreateAuditEntryAttributes(body))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, dto.AdaptAuditEntry(entry))
	}
}

func handleListAuditEntries(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var filters dto.AuditEntryFilters
		if err := c.ShouldBindQuery(&filters); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		ledgerUsecase := uc.NewLedgerUsecase()
		entries, err := ledgerUsecase.ListEntries(ctx, dto.AdaptAuditEntryFilters(filters))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, pure_utils.Map(entries, dto.AdaptAuditEntry))
	}
}

func handleGetAuditEntry(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		sequenceId, err := strconv.ParseInt(c.Param("sequence_id"), 10, 64)
		if err != nil || sequenceId < 1 {
			presentError(ctx, c, errors.Wrap(models.BadParameterError, "sequence_id must be a positive integer"))
			return
		}

		ledgerUsecase := uc.NewLedgerUsecase()
		entry, err := ledgerUsecase.GetEntryBySequence(ctx, sequenceId)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptAuditEntry(entry))
	}
}

func handleGetAuditEntryByHash(uc usecases.Usecases) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		entryHash := c.Param("entry_hash")
		if len(entryHash) != 64 {
			presentError(ctx, c, errors.Wrap(models.BadParameterError,
				"entry_hash must be a 64 character hex digest"))
			return
		}

		ledgerUsecase := uc.NewLedgerUsecase()
		entry, err := ledgerUsecase.GetEntryByHash(ctx, entryHash)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptAuditEntry(entry))
	}
}
