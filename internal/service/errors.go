package service

import (
	"errors"
	"fmt"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository"
)

var (
	ErrNotFound        = repository.ErrNotFound
	ErrInvalidArgument = repository.ErrInvalidArgument
	ErrAlreadyPaid     = repository.ErrAlreadyPaid

	ErrInvalidStatus           = errors.New("request status does not allow this operation")
	ErrNotPaid                 = errors.New("request is not paid")
	ErrUnknownAdmin            = errors.New("admin not found")
	ErrUnresolvedAdminIdentity = errors.New("admin identity could not be resolved")
	ErrApprovalFailed          = errors.New("approval failed")
	ErrInvalidReason           = errors.New("rejection reason must be between 10 and 2000 characters")
	ErrInvalidMembershipType   = errors.New("invalid membership type")
	ErrMissingAdhesionDocument = errors.New("adhesion document is required")
)

// Validation errors. Each wraps ErrInvalidArgument.
var (
	ErrInvalidAmount           = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidArgument)
	ErrInvalidPaymentMode      = fmt.Errorf("%w: payment mode is not accepted", ErrInvalidArgument)
	ErrMissingTime             = fmt.Errorf("%w: payment time is required", ErrInvalidArgument)
	ErrMissingOtherMethodLabel = fmt.Errorf("%w: payment method label is required for mode other", ErrInvalidArgument)
	ErrMissingFeesFlag         = fmt.Errorf("%w: fees flag is required for mobile money", ErrInvalidArgument)
	ErrNoCorrections           = fmt.Errorf("%w: at least one correction is required", ErrInvalidArgument)
	ErrBlankCorrection         = fmt.Errorf("%w: corrections must not be blank", ErrInvalidArgument)
	ErrMissingAdmin            = fmt.Errorf("%w: admin id is required", ErrInvalidArgument)
)

// statusError turns a refused transition into ErrInvalidStatus.
func statusError(err error) error {
	if errors.Is(err, domain.ErrInvalidTransition) {
		return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	return err
}
