package domain

type MembershipType string

const (
	MembershipTypeActive    MembershipType = "active"
	MembershipTypeAssociate MembershipType = "associate"
	MembershipTypeHonorary  MembershipType = "honorary"
)

func (t MembershipType) Valid() bool {
	switch t {
	case MembershipTypeActive, MembershipTypeAssociate, MembershipTypeHonorary:
		return true
	}
	return false
}

// AccountCreationRequest is passed to the account-creation operation on approval.
type AccountCreationRequest struct {
	RequestID           string
	AdminID             string
	MembershipType      MembershipType
	AdhesionDocumentRef string
	CompanyRef          *string
	ProfessionRef       *string
}

// AccountCreationResult is what the account-creation operation reports back.
// Success is false when the operation refused the approval.
type AccountCreationResult struct {
	Success        bool    `json:"success"`
	Reason         string  `json:"reason,omitempty"`
	Matricule      string  `json:"matricule,omitempty"`
	Email          string  `json:"email,omitempty"`
	Password       string  `json:"-"`
	SubscriptionID string  `json:"subscriptionId,omitempty"`
	CompanyID      *string `json:"companyId,omitempty"`
	ProfessionID   *string `json:"professionId,omitempty"`
}

// CredentialDocument is the content of the credentials sheet sent to a new member.
type CredentialDocument struct {
	Name      string
	Matricule string
	Email     string
	Password  string
}

// ApprovalResult is returned to the approving admin.
type ApprovalResult struct {
	RequestID            string  `json:"requestId"`
	Matricule            string  `json:"matricule"`
	Email                string  `json:"email"`
	SubscriptionID       string  `json:"subscriptionId"`
	CompanyID            *string `json:"companyId,omitempty"`
	ProfessionID         *string `json:"professionId,omitempty"`
	CredentialsDelivered bool    `json:"credentialsDelivered"`
	// TemporaryPassword is only returned when the credentials could not be
	// delivered, so the admin can hand them over.
	TemporaryPassword string `json:"temporaryPassword,omitempty"`
}
