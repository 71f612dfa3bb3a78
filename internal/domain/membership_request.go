package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending     RequestStatus = "pending"
	RequestStatusUnderReview RequestStatus = "under_review"
	RequestStatusApproved    RequestStatus = "approved"
	RequestStatusRejected    RequestStatus = "rejected"
)

var (
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidPhone      = errors.New("invalid phone number")
)

// allowedTransitions lists the statuses reachable from each status. Approved
// and rejected are terminal.
var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:     {RequestStatusUnderReview, RequestStatusApproved, RequestStatusRejected},
	RequestStatusUnderReview: {RequestStatusUnderReview, RequestStatusPending, RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved:    {},
	RequestStatusRejected:    {},
}

func (s RequestStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to RequestStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from RequestStatus) []RequestStatus {
	return append([]RequestStatus(nil), allowedTransitions[from]...)
}

// CheckTransition returns an error wrapping ErrInvalidTransition, naming the
// reachable statuses, when from cannot move to to.
func CheckTransition(from, to RequestStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	allowed := AllowedTransitions(from)
	if len(allowed) == 0 {
		return fmt.Errorf("%w: %s -> %s (%s is final)", ErrInvalidTransition, from, to, from)
	}
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return fmt.Errorf("%w: %s -> %s (allowed: %s)", ErrInvalidTransition, from, to, strings.Join(names, ", "))
}

type Identity struct {
	Civility     string `json:"civility,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	PlaceOfBirth string `json:"placeOfBirth,omitempty"`
	Nationality  string `json:"nationality,omitempty"`
	Gender       string `json:"gender,omitempty"`
	IDNumber     string `json:"idNumber,omitempty"`
}

type Contacts struct {
	Phones []string `json:"phones,omitempty"`
	Email  string   `json:"email,omitempty"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type Employment struct {
	CompanyName   string `json:"companyName,omitempty"`
	CompanyRef    string `json:"companyRef,omitempty"`
	Profession    string `json:"profession,omitempty"`
	ProfessionRef string `json:"professionRef,omitempty"`
	Position      string `json:"position,omitempty"`
	Employer      string `json:"employer,omitempty"`
}

// Documents holds storage references of files uploaded for the request.
type Documents struct {
	Photo           string `json:"photo,omitempty"`
	IDCardFront     string `json:"idCardFront,omitempty"`
	IDCardBack      string `json:"idCardBack,omitempty"`
	ProofOfAddress  string `json:"proofOfAddress,omitempty"`
	AdhesionForm    string `json:"adhesionForm,omitempty"`
	OtherAttachment string `json:"otherAttachment,omitempty"`
}

type MembershipRequest struct {
	ID         string        `json:"id"`
	Status     RequestStatus `json:"status"`
	IsPaid     bool          `json:"isPaid"`
	Payments   []Payment     `json:"payments"`
	Identity   Identity      `json:"identity"`
	Contacts   Contacts      `json:"contacts"`
	Address    Address       `json:"address"`
	Employment Employment    `json:"employment"`
	Documents  Documents     `json:"documents"`

	SecurityCode           *string    `json:"securityCode,omitempty"`
	SecurityCodeExpiry     *time.Time `json:"securityCodeExpiry,omitempty"`
	SecurityCodeUsed       bool       `json:"securityCodeUsed"`
	SecurityCodeVerifiedAt *time.Time `json:"securityCodeVerifiedAt,omitempty"`
	ReviewNote             *string    `json:"reviewNote,omitempty"`

	MotifReject *string    `json:"motifReject,omitempty"`
	ProcessedBy *string    `json:"processedBy,omitempty"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`

	Matricule *string `json:"matricule,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName returns "FirstName LastName" with surrounding blanks removed.
func (r *MembershipRequest) FullName() string {
	name := r.Identity.FirstName
	if r.Identity.LastName != "" {
		if name != "" {
			name += " "
		}
		name += r.Identity.LastName
	}
	return name
}

// PrimaryPhone returns the first phone contact on file, if any.
func (r *MembershipRequest) PrimaryPhone() (string, bool) {
	for _, p := range r.Contacts.Phones {
		if p != "" {
			return p, true
		}
	}
	return "", false
}

// ClearCorrection removes the correction-cycle fields.
func (r *MembershipRequest) ClearCorrection() {
	r.SecurityCode = nil
	r.SecurityCodeExpiry = nil
	r.SecurityCodeVerifiedAt = nil
	r.ReviewNote = nil
}

// RequestPatch lists the top-level fields UpdateStatus may merge. Nil fields
// are left untouched.
type RequestPatch struct {
	ReviewNote      *string
	MotifReject     *string
	ProcessedBy     *string
	ProcessedAt     *time.Time
	Matricule       *string
	Correction      *CorrectionCode
	ClearCorrection bool
}

// CorrectionCode is a freshly issued security code.
type CorrectionCode struct {
	Code   string
	Expiry time.Time
}

// Apply merges the patch into the request.
func (p *RequestPatch) Apply(r *MembershipRequest) {
	if p == nil {
		return
	}
	if p.ClearCorrection {
		r.ClearCorrection()
	}
	if p.Correction != nil {
		code := p.Correction.Code
		expiry := p.Correction.Expiry
		r.SecurityCode = &code
		r.SecurityCodeExpiry = &expiry
		r.SecurityCodeUsed = false
		r.SecurityCodeVerifiedAt = nil
	}
	if p.ReviewNote != nil {
		r.ReviewNote = p.ReviewNote
	}
	if p.MotifReject != nil {
		r.MotifReject = p.MotifReject
	}
	if p.ProcessedBy != nil {
		r.ProcessedBy = p.ProcessedBy
	}
	if p.ProcessedAt != nil {
		r.ProcessedAt = p.ProcessedAt
	}
	if p.Matricule != nil {
		r.Matricule = p.Matricule
	}
}
