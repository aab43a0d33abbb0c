package dto

import "github.com/yigit/admission/internal/app/models"

// CourseRequest selects the course for the caller's application
type CourseRequest struct {
	Course string `json:"course" binding:"required"`
}

// PersonalDetailsForm is bound from the multipart personal-details form.
// The counseling letter arrives separately as a file field.
type PersonalDetailsForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Mobile  string `form:"mobile"`
	Address string `form:"address"`
}

// PersonalDetailsResponse is returned after the personal-details step
type PersonalDetailsResponse struct {
	ApplicationID    int64  `json:"applicationId"`
	IsUpdate         bool   `json:"isUpdate"`
	CounselingLetter string `json:"counselingLetter"`
}

// AcademicDetailsResponse maps each uploaded document type to its stored url
type AcademicDetailsResponse struct {
	Documents map[string]string `json:"documents"`
}

// FormProgressResponse reports the next form step (1-4) with the raw flags
type FormProgressResponse struct {
	Step     int             `json:"step"`
	Progress models.Progress `json:"progress"`
}
