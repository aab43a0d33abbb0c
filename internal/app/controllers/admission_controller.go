package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/services"
	"github.com/yigit/admission/internal/middleware"
)

// AdmissionController serves the applicant's multi-step form
type AdmissionController struct {
	admissionService AdmissionService
	logger           zerolog.Logger
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService AdmissionService, logger zerolog.Logger) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
		logger:           logger,
	}
}

// SubmitCourse selects the course, creating the application on first use
// @Summary Select course
// @Tags admission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Application} "Application created"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Course updated"
// @Failure 400 {object} dto.ErrorResponse
// @Router /admission/course [post]
func (c *AdmissionController) SubmitCourse(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	var req dto.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	app, created, err := c.admissionService.SubmitCourse(ctx.Request.Context(), userID, req.Course)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(createdOrOK(created), dto.NewSuccessResponse(app, "Course saved"))
}

// SubmitPersonalDetails accepts the personal fields and the counseling letter as multipart form data
// @Summary Submit personal details
// @Tags admission
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Full name"
// @Param email formData string true "Email"
// @Param mobile formData string true "Mobile"
// @Param address formData string true "Address"
// @Param counselingLetter formData file true "Counseling letter"
// @Success 201 {object} dto.APIResponse{data=dto.PersonalDetailsResponse}
// @Success 200 {object} dto.APIResponse{data=dto.PersonalDetailsResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Application already decided"
// @Failure 502 {object} dto.ErrorResponse "Upload failed"
// @Router /admission/personal-details [post]
func (c *AdmissionController) SubmitPersonalDetails(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	var form dto.PersonalDetailsForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	letter, err := ctx.FormFile(services.FieldCounselingLetter)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.admissionService.SubmitPersonalDetails(ctx.Request.Context(), userID, form, letter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(createdOrOK(!resp.IsUpdate), dto.NewSuccessResponse(resp, "Personal details saved"))
}

// SubmitAcademicDetails uploads academic documents; each recognised file field is stored
// @Summary Upload academic documents
// @Tags admission
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AcademicDetailsResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No application yet"
// @Failure 502 {object} dto.ErrorResponse "Upload failed"
// @Router /admission/academic-details [post]
func (c *AdmissionController) SubmitAcademicDetails(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	files := make(map[string]*multipart.FileHeader, len(form.File))
	for field, headers := range form.File {
		if len(headers) > 0 {
			files[field] = headers[0]
		}
	}

	resp, err := c.admissionService.SubmitAcademicDetails(ctx.Request.Context(), userID, files)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Academic documents saved"))
}

// GetFormProgress reports the next step of the caller's form
// @Summary Form progress
// @Tags admission
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FormProgressResponse}
// @Router /admission/form/progress [post]
func (c *AdmissionController) GetFormProgress(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	progress, err := c.admissionService.GetFormProgress(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(progress, ""))
}

// GetMyApplication returns the caller's application
// @Summary My application
// @Tags admission
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Application}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admission/me [get]
func (c *AdmissionController) GetMyApplication(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	app, err := c.admissionService.GetMyApplication(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(app, ""))
}
