package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/middleware"
)

// AdminController serves application review for administrators
type AdminController struct {
	adminService    AdminService
	statusService   StatusService
	documentService DocumentService
	logger          zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService AdminService, statusService StatusService, documentService DocumentService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService:    adminService,
		statusService:   statusService,
		documentService: documentService,
		logger:          logger,
	}
}

// ListApplications pages applications, newest first
// @Summary List applications
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/applications [get]
func (c *AdminController) ListApplications(ctx *gin.Context) {
	var filter dto.ApplicationFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.adminService.ListApplications(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// GetApplication returns one application
// @Summary Get application
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/applications/{id} [get]
func (c *AdminController) GetApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	app, err := c.adminService.GetApplication(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, ""))
}

// ChangeStatus sets the review status and reports whether the applicant was emailed
// @Summary Change application status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.StatusChangeRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.StatusChangeResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/applications/{id} [put]
func (c *AdminController) ChangeStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.StatusChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.statusService.ChangeStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Status updated and applicant notified"
	if !resp.Email.Sent {
		message = "Status updated, but the notification email could not be sent"
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, message))
}

// ViewDocument streams one of the application's documents from the store
// @Summary Document viewer proxy
// @Tags admin
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param url query string true "Stored document url"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse "Missing or untrusted url"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse "Document store failure"
// @Router /admin/applications/{id}/documents/view-proxy [get]
func (c *AdminController) ViewDocument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	stream, err := c.documentService.Open(ctx.Request.Context(), id, ctx.Query("url"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to close document stream")
		}
	}(stream.Body)

	ctx.DataFromReader(http.StatusOK, stream.ContentLength, stream.ContentType, stream.Body, map[string]string{
		"Content-Disposition": "inline",
		"Cache-Control":       "private, no-store",
	})
}

// CountByStatus groups applications by status
// @Summary Count by status
// @Tags stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CountResult}
// @Router /admin/count-by-status [get]
func (c *AdminController) CountByStatus(ctx *gin.Context) {
	counts, err := c.adminService.CountByStatus(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts, ""))
}

// CountByCourse groups applications by course
// @Summary Count by course
// @Tags stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CountResult}
// @Router /admin/count-by-course [get]
func (c *AdminController) CountByCourse(ctx *gin.Context) {
	counts, err := c.adminService.CountByCourse(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts, ""))
}

// DashboardStats returns the dashboard aggregations
// @Summary Dashboard statistics
// @Tags stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStats}
// @Router /status/dashboard-stats [get]
func (c *AdminController) DashboardStats(ctx *gin.Context) {
	stats, err := c.adminService.DashboardStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}
