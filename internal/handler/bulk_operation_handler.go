package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ankish8/College-Management-sub001/internal/dto"
	"github.com/Ankish8/College-Management-sub001/internal/middleware"
	"github.com/Ankish8/College-Management-sub001/internal/models"
	appErrors "github.com/Ankish8/College-Management-sub001/pkg/errors"
	"github.com/Ankish8/College-Management-sub001/pkg/export"
	"github.com/Ankish8/College-Management-sub001/pkg/response"
)

type bulkOperationService interface {
	Validate(ctx context.Context, req dto.BulkOperationRequest) (*dto.ValidationResult, error)
	Preview(ctx context.Context, req dto.BulkOperationRequest) (*dto.PreviewResponse, error)
	Execute(ctx context.Context, req dto.BulkOperationRequest, actorID string) (*dto.OperationResult, error)
}

type operationTracker interface {
	GetProgress(ctx context.Context, id string) (*dto.ProgressResponse, bool, error)
	History(ctx context.Context, query dto.HistoryQuery) ([]dto.HistoryItem, int, error)
	Detail(ctx context.Context, id string) (*dto.OperationDetail, error)
	Cancel(ctx context.Context, id string) error
}

// BulkOperationHandler exposes the bulk timetable mutation endpoints.
type BulkOperationHandler struct {
	service  bulkOperationService
	tracker  operationTracker
	exporter *export.ConflictReportExporter
}

// NewBulkOperationHandler constructs the handler.
func NewBulkOperationHandler(service bulkOperationService, tracker operationTracker, exporter *export.ConflictReportExporter) *BulkOperationHandler {
	return &BulkOperationHandler{service: service, tracker: tracker, exporter: exporter}
}

// Execute godoc
// @Summary Run a bulk timetable operation
// @Description Dispatches clone, faculty replace, or bulk reschedule. validateOnly and dryRun short-circuit into their read-only variants.
// @Tags BulkOperations
// @Accept json
// @Produce json
// @Param payload body dto.BulkOperationRequest true "Operation payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/bulk-operations [post]
func (h *BulkOperationHandler) Execute(c *gin.Context) {
	var req dto.BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bulk operation payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	switch {
	case req.Options.ValidateOnly:
		result, err := h.service.Validate(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	case req.Options.DryRun:
		preview, err := h.service.Preview(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, dto.OperationResult{
			Success:        preview.Validation.IsValid,
			Affected:       preview.Validation.AffectedCount,
			Errors:         preview.Validation.Conflicts,
			Warnings:       preview.Validation.Warnings,
			Summary:        "dry run: no changes were made",
			DryRun:         true,
			PreviewResults: preview,
		}, nil)
	default:
		result, err := h.service.Execute(c.Request.Context(), req, claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		status := http.StatusOK
		if req.Options.Async {
			status = http.StatusAccepted
		}
		response.JSON(c, status, result, nil)
	}
}

// Progress godoc
// @Summary Poll bulk operation progress
// @Description Admins may poll any operation; other callers only their own.
// @Tags BulkOperations
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/bulk-operations/{id}/progress [get]
func (h *BulkOperationHandler) Progress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	progress, cacheHit, err := h.tracker.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canViewOperation(claims, progress.StartedBy) {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, progress, nil, middleware.ExtractMeta(c))
}

// History godoc
// @Summary List past bulk operations
// @Description Admins see the full history; other callers only operations they started.
// @Tags BulkOperations
// @Produce json
// @Param type query string false "Operation type"
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetable/bulk-operations [get]
func (h *BulkOperationHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.HistoryQuery{
		Type:     strings.TrimSpace(c.Query("type")),
		Page:     parsePositiveInt(c.Query("page"), 1),
		PageSize: parsePositiveInt(c.Query("pageSize"), 20),
	}
	if claims.Role != models.RoleAdmin {
		query.StartedBy = claims.UserID
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		for _, part := range strings.Split(rawStatus, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Status = append(query.Status, part)
			}
		}
	}

	items, total, err := h.tracker.History(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Detail godoc
// @Summary Get one bulk operation with its log trail
// @Description Admins may inspect any operation; other callers only their own.
// @Tags BulkOperations
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/bulk-operations/{id} [get]
func (h *BulkOperationHandler) Detail(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.tracker.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canViewOperation(claims, detail.Operation.StartedBy) {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Cancel godoc
// @Summary Cancel a pending or running bulk operation
// @Description Cancellation is cooperative: entries already committed stay committed.
// @Tags BulkOperations
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/bulk-operations/{id}/cancel [post]
func (h *BulkOperationHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if err := h.tracker.Cancel(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"operationId": id, "status": models.OperationStatusCancelled}, nil)
}

// Preview godoc
// @Summary Dry-run a bulk operation
// @Description Simulates the operation without writing. format=pdf or format=csv returns the conflict report as a file instead of JSON.
// @Tags BulkOperations
// @Accept json
// @Produce json
// @Param format query string false "json, pdf, or csv" default(json)
// @Param payload body dto.BulkOperationRequest true "Operation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetable/bulk-operations/preview [post]
func (h *BulkOperationHandler) Preview(c *gin.Context) {
	var req dto.BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bulk operation payload"))
		return
	}
	preview, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format == "json" {
		response.JSON(c, http.StatusOK, preview, nil)
		return
	}

	report := export.ConflictReport{
		Title:         "Bulk Operation Conflict Report",
		Operation:     req.Operation,
		AffectedCount: preview.Validation.AffectedCount,
		Warnings:      preview.Validation.Warnings,
	}
	if viz := preview.ConflictVisualization; viz != nil {
		report.TotalCount = viz.TotalCount
		report.CriticalCount = viz.CriticalCount
		for _, conflict := range viz.Conflicts {
			report.Rows = append(report.Rows, export.ConflictRow{
				EventA:    conflict.EventAID,
				EventB:    conflict.EventBID,
				Dimension: string(conflict.Dimension),
				Severity:  string(conflict.Severity),
				Detail:    conflict.Description,
			})
		}
	}

	switch format {
	case "pdf":
		data, err := h.exporter.RenderPDF(report)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="conflict-report.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)
	case "csv":
		data, err := h.exporter.RenderCSV(report)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="conflict-report.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported preview format: %s", format)))
	}
}

// canViewOperation gates the read endpoints: admins see every operation,
// other roles only the ones they started. Foreign operations read as absent
// rather than forbidden so their ids are not confirmed to other callers.
func canViewOperation(claims *models.JWTClaims, startedBy string) bool {
	return claims.Role == models.RoleAdmin || claims.UserID == startedBy
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
