package dto

import "time"

// RecordPaymentRequest is the applicant's payment claim
type RecordPaymentRequest struct {
	TransactionID string  `json:"transactionId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Status        string  `json:"status" binding:"required"`
}

// ApprovePaymentRequest sets the admin approval bit.
// A pointer keeps an explicit false distinguishable from a missing field.
type ApprovePaymentRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// PaymentResponse is the five-field payment projection
type PaymentResponse struct {
	PaymentStatus     string     `json:"paymentStatus"`
	TransactionID     string     `json:"transactionId"`
	Amount            float64    `json:"amount"`
	PaymentDate       *time.Time `json:"paymentDate"`
	IsPaymentApproved bool       `json:"isPaymentApproved"`
}

// PaymentListItem joins payment fields with the owning user
type PaymentListItem struct {
	ApplicationID     int64      `json:"applicationId"`
	UserID            int64      `json:"userId"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Course            string     `json:"course"`
	PaymentStatus     string     `json:"paymentStatus"`
	TransactionID     string     `json:"transactionId"`
	Amount            float64    `json:"amount"`
	PaymentDate       *time.Time `json:"paymentDate"`
	IsPaymentApproved bool       `json:"isPaymentApproved"`
}

// PaymentListResponse is a page of payment records
type PaymentListResponse struct {
	Payments   []PaymentListItem `json:"payments"`
	Pagination PaginationInfo    `json:"pagination"`
}
