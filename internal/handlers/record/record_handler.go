// internal/handlers/record/record_handler.go
package record

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"leaddist-service/internal/domain/record"
	"leaddist-service/internal/middleware"
	xerrors "leaddist-service/internal/pkg/errors"
	"leaddist-service/internal/pkg/response"
	recordUsecase "leaddist-service/internal/service/record"
	"leaddist-service/internal/service/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 1 << 20

type RecordHandler struct {
	recordService *recordUsecase.RecordService
	uploadService *upload.UploadService
	logger        *zap.Logger
}

func NewRecordHandler(recordService *recordUsecase.RecordService, uploadService *upload.UploadService, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		uploadService: uploadService,
		logger:        logger,
	}
}

// ========== Upload ==========

// Upload parses a CSV/XLSX/XLS file and distributes its rows to agents
func (h *RecordHandler) Upload(c *gin.Context) {
	maxSize := h.uploadService.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.FromError(c, "upload rejected", xerrors.ErrFileTooLarge)
			return
		}
		response.BadRequest(c, "No file uploaded. Please upload a CSV or XLSX file.", nil)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		response.FromError(c, "upload rejected", xerrors.ErrFileTooLarge)
		return
	}

	adminID := middleware.MustGetAdminID(c)
	plan, err := h.uploadService.Process(c.Request.Context(), header.Filename, file, adminID)
	if err != nil {
		h.logger.Warn("upload failed",
			zap.String("file", header.Filename),
			zap.Int64("admin_id", adminID),
			zap.Error(err),
		)
		response.FromError(c, "File validation failed", err)
		return
	}

	response.Success(c, http.StatusOK,
		fmt.Sprintf("Successfully uploaded and distributed %d records", plan.TotalRecords), plan)
}

// ========== Queries ==========

// Stats returns totals per agent and status
func (h *RecordHandler) Stats(c *gin.Context) {
	stats, err := h.recordService.GetStats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load stats", err)
		return
	}
	response.Success(c, http.StatusOK, "stats retrieved", stats)
}

// Batch returns all records of one upload
func (h *RecordHandler) Batch(c *gin.Context) {
	res, err := h.recordService.GetBatch(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.FromError(c, "Batch not found", err)
		return
	}
	response.Success(c, http.StatusOK, "batch retrieved", res)
}

// ByAgent returns the records assigned to an agent
func (h *RecordHandler) ByAgent(c *gin.Context) {
	agentID, err := strconv.ParseInt(c.Param("agentId"), 10, 64)
	if err != nil || agentID <= 0 {
		response.BadRequest(c, "invalid agentId", err)
		return
	}

	res, err := h.recordService.GetAgentRecords(c.Request.Context(), agentID, record.Status(c.Query("status")))
	if err != nil {
		response.FromError(c, "failed to load agent records", err)
		return
	}
	response.Success(c, http.StatusOK, "records retrieved", res)
}

// List returns a filtered page of records
func (h *RecordHandler) List(c *gin.Context) {
	var filters record.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	res, err := h.recordService.ListRecords(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list records", err)
		return
	}
	response.Success(c, http.StatusOK, "records retrieved", res)
}

// ========== Workflow ==========

// UpdateStatus moves a record to a new status
func (h *RecordHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid id", err)
		return
	}

	var req record.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	rec, err := h.recordService.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, "failed to update record", err)
		return
	}
	response.Success(c, http.StatusOK, "Record status updated successfully", rec)
}
