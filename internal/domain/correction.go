package domain

import (
	"crypto/subtle"
	"time"

	"mutuelle-membership/internal/security"
)

// CodeCheck is the outcome of checking a security code against a request.
type CodeCheck string

const (
	CodeCheckOK              CodeCheck = "OK"
	CodeCheckFormatInvalid   CodeCheck = "FORMAT_INVALID"
	CodeCheckRequestNotFound CodeCheck = "REQUEST_NOT_FOUND"
	CodeCheckInvalidStatus   CodeCheck = "INVALID_STATUS"
	CodeCheckAlreadyUsed     CodeCheck = "CODE_ALREADY_USED"
	CodeCheckExpired         CodeCheck = "CODE_EXPIRED"
	CodeCheckIncorrect       CodeCheck = "CODE_INCORRECT"
)

// CheckCode runs the correction-code guards in their fixed order: status,
// used flag, expiry, then code content. A missing expiry counts as expired and
// a missing stored code counts as incorrect. A request sent back to pending by
// a correction submission reports the consumed code rather than its status.
func CheckCode(r *MembershipRequest, code string, now time.Time) CodeCheck {
	if r.Status != RequestStatusUnderReview {
		if r.Status == RequestStatusPending && r.SecurityCodeUsed {
			return CodeCheckAlreadyUsed
		}
		return CodeCheckInvalidStatus
	}
	if r.SecurityCodeUsed {
		return CodeCheckAlreadyUsed
	}
	if security.ExpiredAt(r.SecurityCodeExpiry, now) {
		return CodeCheckExpired
	}
	if !security.IsValidAt(r.SecurityCode, r.SecurityCodeUsed, r.SecurityCodeExpiry, now) {
		return CodeCheckIncorrect
	}
	if subtle.ConstantTimeCompare([]byte(*r.SecurityCode), []byte(code)) != 1 {
		return CodeCheckIncorrect
	}
	return CodeCheckOK
}

// IdentityPatch carries corrected identity fields. Nil fields keep their
// stored value.
type IdentityPatch struct {
	Civility     *string `json:"civility,omitempty"`
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	DateOfBirth  *string `json:"dateOfBirth,omitempty"`
	PlaceOfBirth *string `json:"placeOfBirth,omitempty"`
	Nationality  *string `json:"nationality,omitempty"`
	Gender       *string `json:"gender,omitempty"`
	IDNumber     *string `json:"idNumber,omitempty"`
}

type ContactsPatch struct {
	Phones []string `json:"phones,omitempty"`
	Email  *string  `json:"email,omitempty"`
}

type AddressPatch struct {
	Street     *string `json:"street,omitempty"`
	District   *string `json:"district,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    *string `json:"country,omitempty"`
}

type EmploymentPatch struct {
	CompanyName   *string `json:"companyName,omitempty"`
	CompanyRef    *string `json:"companyRef,omitempty"`
	Profession    *string `json:"profession,omitempty"`
	ProfessionRef *string `json:"professionRef,omitempty"`
	Position      *string `json:"position,omitempty"`
	Employer      *string `json:"employer,omitempty"`
}

type DocumentsPatch struct {
	Photo           *string `json:"photo,omitempty"`
	IDCardFront     *string `json:"idCardFront,omitempty"`
	IDCardBack      *string `json:"idCardBack,omitempty"`
	ProofOfAddress  *string `json:"proofOfAddress,omitempty"`
	AdhesionForm    *string `json:"adhesionForm,omitempty"`
	OtherAttachment *string `json:"otherAttachment,omitempty"`
}

// CorrectionSubmission is the corrected form sent back by an applicant.
type CorrectionSubmission struct {
	Identity   *IdentityPatch   `json:"identity,omitempty"`
	Contacts   *ContactsPatch   `json:"contacts,omitempty"`
	Address    *AddressPatch    `json:"address,omitempty"`
	Employment *EmploymentPatch `json:"employment,omitempty"`
	Documents  *DocumentsPatch  `json:"documents,omitempty"`
}

// CorrectionRequestResult describes a freshly requested correction cycle.
type CorrectionRequestResult struct {
	RequestID     string    `json:"requestId"`
	Code          string    `json:"code"`
	FormattedCode string    `json:"formattedCode"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Message       string    `json:"message,omitempty"`
	DeliveryLink  string    `json:"deliveryLink,omitempty"`
}

// CodeVerification is returned by code verification and correction submission.
type CodeVerification struct {
	Result     CodeCheck  `json:"result"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

func (v CodeVerification) OK() bool {
	return v.Result == CodeCheckOK
}
