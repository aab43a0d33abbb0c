package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

// ApplicationStatus is the review state of an admission application
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every status an administrator may assign.
var ApplicationStatuses = []ApplicationStatus{StatusPending, StatusApproved, StatusRejected}

// ParseApplicationStatus reports whether s is one of the three status literals.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	for _, st := range ApplicationStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether the application has been decided.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AcademicDocumentType names one of the fixed upload slots of the academic step.
type AcademicDocumentType string

const (
	DocTenthMarksheet        AcademicDocumentType = "tenthMarksheet"
	DocTwelfthMarksheet      AcademicDocumentType = "twelfthMarksheet"
	DocTransferCertificate   AcademicDocumentType = "transferCertificate"
	DocMigrationCertificate  AcademicDocumentType = "migrationCertificate"
	DocCharacterCertificate  AcademicDocumentType = "characterCertificate"
	DocCasteCertificate      AcademicDocumentType = "casteCertificate"
	DocIncomeCertificate     AcademicDocumentType = "incomeCertificate"
	DocIdentityProof         AcademicDocumentType = "identityProof"
	DocPassportPhoto         AcademicDocumentType = "passportPhoto"
	DocSignature             AcademicDocumentType = "signature"
)

// AcademicDocumentTypes is the ordered list of accepted multipart field names.
var AcademicDocumentTypes = []AcademicDocumentType{
	DocTenthMarksheet,
	DocTwelfthMarksheet,
	DocTransferCertificate,
	DocMigrationCertificate,
	DocCharacterCertificate,
	DocCasteCertificate,
	DocIncomeCertificate,
	DocIdentityProof,
	DocPassportPhoto,
	DocSignature,
}

// IsAcademicDocumentType reports whether key is an accepted academic field name.
func IsAcademicDocumentType(key string) bool {
	for _, t := range AcademicDocumentTypes {
		if string(t) == key {
			return true
		}
	}
	return false
}
