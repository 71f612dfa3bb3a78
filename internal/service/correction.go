package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/repository"
	"mutuelle-membership/internal/security"
)

// LinkBuilder turns a phone contact and a message into a chat deep link.
type LinkBuilder interface {
	Build(phone, text string) (string, error)
}

// CorrectionSettings tunes the messages and codes of the correction cycle.
type CorrectionSettings struct {
	CodeExpiry       time.Duration
	FormURL          string
	OrganizationName string
}

type correctionWorkflow struct {
	reqRepo  repository.RequestRepository
	links    LinkBuilder
	emailSvc EmailService
	notifier NotificationService
	settings CorrectionSettings

	now      func() time.Time
	generate func() (string, error)
}

// NewCorrectionWorkflow wires the correction cycle. links, emailSvc and
// notifier may be nil; the matching delivery step is then skipped.
func NewCorrectionWorkflow(reqRepo repository.RequestRepository, links LinkBuilder, emailSvc EmailService, notifier NotificationService, settings CorrectionSettings) CorrectionWorkflow {
	if settings.CodeExpiry <= 0 {
		settings.CodeExpiry = security.DefaultCodeExpiry
	}
	return &correctionWorkflow{
		reqRepo:  reqRepo,
		links:    links,
		emailSvc: emailSvc,
		notifier: notifier,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
		generate: security.GenerateCode,
	}
}

func (w *correctionWorkflow) RequestCorrections(ctx context.Context, requestID, adminID string, corrections []string) (*domain.CorrectionRequestResult, error) {
	logger.EnterMethod("correctionWorkflow.RequestCorrections", "requestID", requestID, "adminID", adminID, "count", len(corrections))

	items, err := cleanCorrections(corrections)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(adminID) == "" {
		return nil, ErrMissingAdmin
	}

	req, err := w.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	code, err := w.generate()
	if err != nil {
		return nil, err
	}
	expiry := security.ExpiryFrom(w.now(), w.settings.CodeExpiry)
	note := strings.Join(items, "\n")
	admin := adminID

	err = w.reqRepo.UpdateStatus(ctx, requestID, domain.RequestStatusUnderReview, &domain.RequestPatch{
		ReviewNote:  &note,
		ProcessedBy: &admin,
		Correction:  &domain.CorrectionCode{Code: code, Expiry: expiry},
	})
	if err != nil {
		err = statusError(err)
		logger.ExitMethodWithError("correctionWorkflow.RequestCorrections", err, "requestID", requestID)
		return nil, err
	}

	result := w.deliverCode(ctx, req, code, expiry, items)
	notify(ctx, w.notifier, requestID, domain.NotificationTypeCorrectionRequested,
		"Corrections requested",
		fmt.Sprintf("%d correction(s) requested for %s", len(items), req.FullName()),
		map[string]string{"processedBy": adminID, "expiresAt": expiry.Format(time.RFC3339)})

	logger.ExitMethod("correctionWorkflow.RequestCorrections", "requestID", requestID, "linked", result.DeliveryLink != "")
	return result, nil
}

func (w *correctionWorkflow) VerifyCode(ctx context.Context, requestID, code string) (*domain.CodeVerification, error) {
	code = strings.TrimSpace(code)
	if !security.WellFormedCode(code) {
		return &domain.CodeVerification{Result: domain.CodeCheckFormatInvalid}, nil
	}
	if strings.TrimSpace(requestID) == "" {
		return &domain.CodeVerification{Result: domain.CodeCheckRequestNotFound}, nil
	}

	out := &domain.CodeVerification{}
	err := w.reqRepo.Update(ctx, requestID, func(req *domain.MembershipRequest) (bool, error) {
		now := w.now()
		out.Result = domain.CheckCode(req, code, now)
		if !out.OK() {
			return false, nil
		}
		req.SecurityCodeVerifiedAt = &now
		out.VerifiedAt = &now
		return true, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.CodeVerification{Result: domain.CodeCheckRequestNotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	logger.WithRequest(requestID).Info("Security code verified", "result", out.Result)
	return out, nil
}

// SubmitCorrections re-checks the code and consumes it in the same atomic
// unit that merges the corrected fields.
func (w *correctionWorkflow) SubmitCorrections(ctx context.Context, requestID, code string, sub *domain.CorrectionSubmission) (*domain.CodeVerification, error) {
	logger.EnterMethod("correctionWorkflow.SubmitCorrections", "requestID", requestID)

	code = strings.TrimSpace(code)
	if !security.WellFormedCode(code) {
		return &domain.CodeVerification{Result: domain.CodeCheckFormatInvalid}, nil
	}
	if strings.TrimSpace(requestID) == "" {
		return &domain.CodeVerification{Result: domain.CodeCheckRequestNotFound}, nil
	}

	out := &domain.CodeVerification{}
	var name string
	err := w.reqRepo.Update(ctx, requestID, func(req *domain.MembershipRequest) (bool, error) {
		out.Result = domain.CheckCode(req, code, w.now())
		if !out.OK() {
			return false, nil
		}
		sub.ApplyTo(req)
		req.Status = domain.RequestStatusPending
		req.SecurityCodeUsed = true
		req.ClearCorrection()
		name = req.FullName()
		return true, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.CodeVerification{Result: domain.CodeCheckRequestNotFound}, nil
	}
	if err != nil {
		logger.ExitMethodWithError("correctionWorkflow.SubmitCorrections", err, "requestID", requestID)
		return nil, err
	}
	if !out.OK() {
		logger.ExitMethod("correctionWorkflow.SubmitCorrections", "requestID", requestID, "result", out.Result)
		return out, nil
	}

	notify(ctx, w.notifier, requestID, domain.NotificationTypeCorrectionSubmitted,
		"Corrections submitted",
		fmt.Sprintf("%s submitted the requested corrections", name), nil)

	logger.ExitMethod("correctionWorkflow.SubmitCorrections", "requestID", requestID, "result", out.Result)
	return out, nil
}

func (w *correctionWorkflow) RenewCode(ctx context.Context, requestID, adminID string) (*domain.CorrectionRequestResult, error) {
	logger.EnterMethod("correctionWorkflow.RenewCode", "requestID", requestID, "adminID", adminID)

	if strings.TrimSpace(adminID) == "" {
		return nil, ErrMissingAdmin
	}
	code, err := w.generate()
	if err != nil {
		return nil, err
	}
	expiry := security.ExpiryFrom(w.now(), w.settings.CodeExpiry)

	var snapshot domain.MembershipRequest
	err = w.reqRepo.Update(ctx, requestID, func(req *domain.MembershipRequest) (bool, error) {
		if req.Status != domain.RequestStatusUnderReview {
			return false, fmt.Errorf("%w: cannot renew a code while %s", ErrInvalidStatus, req.Status)
		}
		admin := adminID
		(&domain.RequestPatch{
			ProcessedBy: &admin,
			Correction:  &domain.CorrectionCode{Code: code, Expiry: expiry},
		}).Apply(req)
		snapshot = *req
		return true, nil
	})
	if err != nil {
		logger.ExitMethodWithError("correctionWorkflow.RenewCode", err, "requestID", requestID)
		return nil, err
	}

	var items []string
	if snapshot.ReviewNote != nil {
		items = strings.Split(*snapshot.ReviewNote, "\n")
	}
	result := w.deliverCode(ctx, &snapshot, code, expiry, items)
	notify(ctx, w.notifier, requestID, domain.NotificationTypeCodeRenewed,
		"Security code renewed",
		fmt.Sprintf("A new security code was issued for %s", snapshot.FullName()),
		map[string]string{"processedBy": adminID, "expiresAt": expiry.Format(time.RFC3339)})

	logger.ExitMethod("correctionWorkflow.RenewCode", "requestID", requestID)
	return result, nil
}

// deliverCode composes the applicant message and hands it to whatever
// contact channel is on file. Delivery problems are logged only.
func (w *correctionWorkflow) deliverCode(ctx context.Context, req *domain.MembershipRequest, code string, expiry time.Time, items []string) *domain.CorrectionRequestResult {
	result := &domain.CorrectionRequestResult{
		RequestID:     req.ID,
		Code:          code,
		FormattedCode: security.FormatCode(code),
		ExpiresAt:     expiry,
	}
	result.Message = w.correctionMessage(req, result.FormattedCode, expiry, items)

	if phone, ok := req.PrimaryPhone(); ok && w.links != nil {
		link, err := w.links.Build(phone, result.Message)
		if err != nil {
			logger.SideEffectFailed("chat-link", req.ID, err)
		} else {
			result.DeliveryLink = link
		}
	}

	if email := strings.TrimSpace(req.Contacts.Email); email != "" && w.emailSvc != nil {
		if err := w.emailSvc.SendCorrectionRequest(ctx, email, displayName(req), result.Message); err != nil {
			logger.SideEffectFailed("correction-email", req.ID, err)
		}
	}
	return result
}

func (w *correctionWorkflow) correctionMessage(req *domain.MembershipRequest, formattedCode string, expiry time.Time, items []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", displayName(req))
	if w.settings.OrganizationName != "" {
		fmt.Fprintf(&b, "%s has reviewed your membership application. ", w.settings.OrganizationName)
	}
	b.WriteString("Please correct the following:\n")
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	fmt.Fprintf(&b, "\nYour security code: %s (valid until %s UTC)\n", formattedCode, expiry.UTC().Format("02/01/2006 15:04"))
	if w.settings.FormURL != "" {
		fmt.Fprintf(&b, "Correction form: %s?request=%s\n", w.settings.FormURL, req.ID)
	}
	return b.String()
}

func cleanCorrections(corrections []string) ([]string, error) {
	if len(corrections) == 0 {
		return nil, ErrNoCorrections
	}
	items := make([]string, 0, len(corrections))
	for _, c := range corrections {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, ErrBlankCorrection
		}
		items = append(items, c)
	}
	return items, nil
}

// displayName returns the applicant's name in title case. Casers are not
// safe for concurrent use, so one is built per call.
func displayName(req *domain.MembershipRequest) string {
	name := strings.TrimSpace(req.FullName())
	if name == "" {
		return "applicant"
	}
	return cases.Title(language.French).String(strings.ToLower(name))
}
