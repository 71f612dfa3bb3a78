package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/repository"
	"mutuelle-membership/internal/service"
)

var errUsage = errors.New("usage")

type commands struct {
	payments      service.PaymentRecorder
	corrections   service.CorrectionWorkflow
	approvals     service.ApprovalOrchestrator
	notifications service.NotificationService
	requests      repository.RequestRepository
	ledger        repository.LedgerRepository
	out           io.Writer
	stdin         io.Reader
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// optionalBool distinguishes an absent flag from false.
type optionalBool struct{ value *bool }

func (b *optionalBool) String() string {
	if b.value == nil {
		return ""
	}
	return fmt.Sprint(*b.value)
}

func (b *optionalBool) Set(v string) error {
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		t := true
		b.value = &t
	case "false", "no", "0":
		f := false
		b.value = &f
	default:
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

func (c *commands) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]

	switch name {
	case "record-payment":
		return c.recordPayment(ctx, rest)
	case "request-corrections":
		return c.requestCorrections(ctx, rest)
	case "verify-code":
		return c.verifyCode(ctx, rest)
	case "submit-corrections":
		return c.submitCorrections(ctx, rest)
	case "renew-code":
		return c.renewCode(ctx, rest)
	case "approve":
		return c.approve(ctx, rest)
	case "reject":
		return c.reject(ctx, rest)
	case "stats":
		return c.stats(ctx, rest)
	case "show":
		return c.show(ctx, rest)
	case "notifications":
		return c.notificationsCmd(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string, required map[string]*string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	for name, v := range required {
		if strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s: -%s is required", errUsage, fs.Name(), name)
		}
	}
	return nil
}

func (c *commands) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *commands) recordPayment(ctx context.Context, args []string) error {
	fs := newFlagSet("record-payment")
	requestID := fs.String("request", "", "request id")
	adminID := fs.String("admin", "", "admin id")
	amount := fs.Int64("amount", 0, "amount in XOF")
	mode := fs.String("mode", "", "payment mode")
	date := fs.String("date", "", "payment date (YYYY-MM-DD)")
	at := fs.String("time", "", "payment time (HH:MM)")
	other := fs.String("other", "", "label when mode is other")
	var fees optionalBool
	fs.Var(&fees, "fees", "fees included (mobile money)")
	if err := parse(fs, args, map[string]*string{"request": requestID, "admin": adminID}); err != nil {
		return err
	}

	info := domain.PaymentInfo{
		Amount:   *amount,
		Mode:     domain.PaymentMode(*mode),
		Date:     *date,
		Time:     *at,
		WithFees: fees.value,
	}
	if *other != "" {
		info.PaymentMethodOther = other
	}
	if err := c.payments.RecordPayment(ctx, *requestID, *adminID, info); err != nil {
		return err
	}
	return c.print(map[string]any{"requestId": *requestID, "recorded": true})
}

func (c *commands) requestCorrections(ctx context.Context, args []string) error {
	fs := newFlagSet("request-corrections")
	requestID := fs.String("request", "", "request id")
	adminID := fs.String("admin", "", "admin id")
	var items stringList
	fs.Var(&items, "item", "correction to request (repeatable)")
	if err := parse(fs, args, map[string]*string{"request": requestID}); err != nil {
		return err
	}

	res, err := c.corrections.RequestCorrections(ctx, *requestID, *adminID, items)
	if err != nil {
		return err
	}
	return c.print(res)
}

func (c *commands) verifyCode(ctx context.Context, args []string) error {
	fs := newFlagSet("verify-code")
	requestID := fs.String("request", "", "request id")
	code := fs.String("code", "", "security code")
	if err := parse(fs, args, map[string]*string{"request": requestID}); err != nil {
		return err
	}

	res, err := c.corrections.VerifyCode(ctx, *requestID, *code)
	if err != nil {
		return err
	}
	return c.print(res)
}

func (c *commands) submitCorrections(ctx context.Context, args []string) error {
	fs := newFlagSet("submit-corrections")
	requestID := fs.String("request", "", "request id")
	code := fs.String("code", "", "security code")
	file := fs.String("file", "", "JSON file with the corrected fields, - for stdin")
	if err := parse(fs, args, map[string]*string{"request": requestID, "file": file}); err != nil {
		return err
	}

	sub, err := c.readSubmission(*file)
	if err != nil {
		return err
	}
	res, err := c.corrections.SubmitCorrections(ctx, *requestID, *code, sub)
	if err != nil {
		return err
	}
	return c.print(res)
}

func (c *commands) readSubmission(path string) (*domain.CorrectionSubmission, error) {
	var r io.Reader
	if path == "-" {
		r = c.stdin
		if r == nil {
			r = os.Stdin
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open corrections file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var sub domain.CorrectionSubmission
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		return nil, fmt.Errorf("%w: decode corrections: %v", service.ErrInvalidArgument, err)
	}
	return &sub, nil
}

func (c *commands) renewCode(ctx context.Context, args []string) error {
	fs := newFlagSet("renew-code")
	requestID := fs.String("request", "", "request id")
	adminID := fs.String("admin", "", "admin id")
	if err := parse(fs, args, map[string]*string{"request": requestID}); err != nil {
		return err
	}

	res, err := c.corrections.RenewCode(ctx, *requestID, *adminID)
	if err != nil {
		return err
	}
	return c.print(res)
}

func (c *commands) approve(ctx context.Context, args []string) error {
	fs := newFlagSet("approve")
	requestID := fs.String("request", "", "request id")
	adminID := fs.String("admin", "", "admin id")
	membershipType := fs.String("type", "", "membership type (active, associate, honorary)")
	adhesion := fs.String("adhesion", "", "signed adhesion document reference")
	company := fs.String("company", "", "company reference")
	profession := fs.String("profession", "", "profession reference")
	if err := parse(fs, args, map[string]*string{"request": requestID}); err != nil {
		return err
	}

	in := service.ApprovalInput{
		RequestID:           *requestID,
		AdminID:             *adminID,
		MembershipType:      domain.MembershipType(*membershipType),
		AdhesionDocumentRef: *adhesion,
	}
	if *company != "" {
		in.CompanyRef = company
	}
	if *profession != "" {
		in.ProfessionRef = profession
	}
	res, err := c.approvals.Approve(ctx, in)
	if err != nil {
		return err
	}
	return c.print(res)
}

func (c *commands) reject(ctx context.Context, args []string) error {
	fs := newFlagSet("reject")
	requestID := fs.String("request", "", "request id")
	adminID := fs.String("admin", "", "admin id")
	reason := fs.String("reason", "", "rejection reason")
	if err := parse(fs, args, map[string]*string{"request": requestID}); err != nil {
		return err
	}

	if err := c.approvals.Reject(ctx, *requestID, *adminID, *reason); err != nil {
		return err
	}
	return c.print(map[string]any{"requestId": *requestID, "status": domain.RequestStatusRejected})
}

func (c *commands) stats(ctx context.Context, args []string) error {
	fs := newFlagSet("stats")
	if err := parse(fs, args, nil); err != nil {
		return err
	}

	stats, err := c.requests.GetStatistics(ctx)
	if err != nil {
		return err
	}
	return c.print(stats)
}

func (c *commands) show(ctx context.Context, args []string) error {
	fs := newFlagSet("show")
	requestID := fs.String("request", "", "request id")
	if err := parse(fs, args, map[string]*string{"request": requestID}); err != nil {
		return err
	}

	req, err := c.requests.GetByID(ctx, *requestID)
	if err != nil {
		return err
	}
	// Codes stay on the server side
	req.SecurityCode = nil

	entries := []domain.LedgerEntry{}
	if c.ledger != nil {
		found, err := c.ledger.ListByRequest(ctx, *requestID)
		if err != nil {
			return fmt.Errorf("failed to list ledger entries: %w", err)
		}
		if found != nil {
			entries = found
		}
	}
	return c.print(map[string]any{"request": req, "ledger": entries})
}

func (c *commands) notificationsCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: notifications: expected list or mark-read", errUsage)
	}
	switch args[0] {
	case "list":
		fs := newFlagSet("notifications list")
		page := fs.Int("page", 1, "page number")
		size := fs.Int("size", 20, "page size")
		if err := parse(fs, args[1:], nil); err != nil {
			return err
		}
		notes, total, err := c.notifications.GetNotifications(ctx, int32(*page), int32(*size))
		if err != nil {
			return err
		}
		if notes == nil {
			notes = []domain.Notification{}
		}
		return c.print(map[string]any{"notifications": notes, "total": total, "page": *page})
	case "mark-read":
		fs := newFlagSet("notifications mark-read")
		id := fs.String("id", "", "notification id")
		if err := parse(fs, args[1:], map[string]*string{"id": id}); err != nil {
			return err
		}
		if err := c.notifications.MarkAsRead(ctx, *id); err != nil {
			return err
		}
		return c.print(map[string]any{"id": *id, "read": true})
	default:
		return fmt.Errorf("%w: notifications: unknown action %q", errUsage, args[0])
	}
}

// exitCode maps errors to process exit statuses.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, service.ErrNotFound):
		return 3
	case errors.Is(err, service.ErrInvalidArgument):
		return 4
	default:
		return 1
	}
}
