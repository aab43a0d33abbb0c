package models

import "time"

// Application is the single evolving admission record owned by one user
type Application struct {
	ID                int64              `json:"id" db:"id"`
	UserID            int64              `json:"userId" db:"user_id"`
	Course            string             `json:"course" db:"course"`
	Name              string             `json:"name" db:"name"`
	Email             string             `json:"email" db:"email"`
	Mobile            string             `json:"mobile" db:"mobile"`
	Address           string             `json:"address" db:"address"`
	CounselingLetter  string             `json:"counselingLetter" db:"counseling_letter"`
	AcademicDocuments []AcademicDocument `json:"academicDocuments" db:"academic_documents"`
	Status            ApplicationStatus  `json:"status" db:"status"`
	Progress          Progress           `json:"progress"`
	Payment           Payment            `json:"payment"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" db:"updated_at"`
}

// AcademicDocument is one uploaded academic file
type AcademicDocument struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Progress tracks which workflow steps have been completed
type Progress struct {
	Course   bool `json:"course" db:"progress_course"`
	Personal bool `json:"personal" db:"progress_personal"`
	Academic bool `json:"academic" db:"progress_academic"`
}

// Step maps the progress flags to the next form step (1-4). First match wins.
func (p Progress) Step() int {
	switch {
	case p.Course && !p.Personal:
		return 2
	case p.Course && p.Personal && !p.Academic:
		return 3
	case p.Course && p.Personal && p.Academic:
		return 4
	default:
		return 1
	}
}

// Payment holds the client-asserted payment facts plus the admin approval bit
type Payment struct {
	Status        string     `json:"paymentStatus" db:"payment_status"`
	TransactionID string     `json:"transactionId" db:"transaction_id"`
	Amount        float64    `json:"amount" db:"amount"`
	Date          *time.Time `json:"paymentDate" db:"payment_date"`
	IsApproved    bool       `json:"isPaymentApproved" db:"is_payment_approved"`
}

// DocumentURLs returns every stored document url of the application.
func (a *Application) DocumentURLs() []string {
	urls := make([]string, 0, len(a.AcademicDocuments)+1)
	if a.CounselingLetter != "" {
		urls = append(urls, a.CounselingLetter)
	}
	for _, d := range a.AcademicDocuments {
		urls = append(urls, d.Path)
	}
	return urls
}

// HasDocument reports whether url is one of the application's stored documents.
func (a *Application) HasDocument(url string) bool {
	for _, u := range a.DocumentURLs() {
		if u == url {
			return true
		}
	}
	return false
}
