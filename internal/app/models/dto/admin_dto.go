package dto

import "github.com/yigit/admission/internal/app/models"

// ApplicationFilterRequest holds query parameters for the admin list
type ApplicationFilterRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// ApplicationListResponse is a page of applications
type ApplicationListResponse struct {
	Applications []*models.Application `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// StatusChangeRequest is the body of PUT /admin/applications/:id.
// Status is checked by the service so that an unknown value never reaches storage.
type StatusChangeRequest struct {
	Status string `json:"status" binding:"required"`
}

// EmailStatus reports the outcome of the best-effort notification
type EmailStatus struct {
	Sent  bool    `json:"sent"`
	Error *string `json:"error"`
}

// StatusChangeResponse carries the persisted application and the mail outcome
type StatusChangeResponse struct {
	Application *models.Application `json:"application"`
	Email       EmailStatus         `json:"email"`
}

// CountResult is one group of a group-and-count aggregation
type CountResult struct {
	Key   string `json:"_id"`
	Count int64  `json:"count"`
}

// DailyCount is the number of applications created on one calendar day
type DailyCount struct {
	Date  string `json:"date" example:"2025-06-01"`
	Count int64  `json:"count"`
}

// RecentApplication is the dashboard projection of a new application
type RecentApplication struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Course string `json:"course"`
	Status string `json:"status" example:"Pending"`
	Date   string `json:"date" example:"01 Jun 2025"`
}

// DashboardStats is the admin dashboard payload
type DashboardStats struct {
	Total              int64               `json:"total"`
	Pending            int64               `json:"pending"`
	Approved           int64               `json:"approved"`
	Rejected           int64               `json:"rejected"`
	DailyApplications  []DailyCount        `json:"dailyApplications"`
	RecentApplications []RecentApplication `json:"recentApplications"`
	Revenue            string              `json:"revenue" example:"₹12,34,500"`
}
