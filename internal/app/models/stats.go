package models

import "time"

// GroupCount is one bucket of a group-and-count query
type GroupCount struct {
	Key   string
	Count int64
}

// DayCount is the number of applications created on one UTC calendar day (YYYY-MM-DD)
type DayCount struct {
	Day   string
	Count int64
}

// ApplicationSummary is the projection used for the recent-applications list
type ApplicationSummary struct {
	ID        int64
	Name      string
	Email     string
	Course    string
	Status    ApplicationStatus
	CreatedAt time.Time
}

// PaymentRecord joins an application's payment fields with its owner
type PaymentRecord struct {
	ApplicationID int64
	UserID        int64
	UserName      string
	UserEmail     string
	Course        string
	Payment       Payment
}
