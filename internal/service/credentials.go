package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mutuelle-membership/internal/domain"
	"mutuelle-membership/internal/logger"
)

// CredentialRenderer produces the printable credentials sheet.
type CredentialRenderer interface {
	RenderCredentials(doc domain.CredentialDocument) ([]byte, error)
}

// DocumentStore keeps generated documents and hands out signed links to them.
type DocumentStore interface {
	Save(ctx context.Context, key string, data []byte) error
	DownloadURL(key, requestID string, ttl time.Duration) (string, error)
}

type credentialService struct {
	renderer CredentialRenderer
	store    DocumentStore
	emailSvc EmailService
	linkTTL  time.Duration
}

func NewCredentialService(renderer CredentialRenderer, store DocumentStore, emailSvc EmailService, linkTTL time.Duration) CredentialDeliverer {
	return &credentialService{renderer: renderer, store: store, emailSvc: emailSvc, linkTTL: linkTTL}
}

// Deliver renders the credentials PDF, stores it and e-mails it to the new
// member with a signed download link.
func (s *credentialService) Deliver(ctx context.Context, requestID string, doc domain.CredentialDocument) error {
	logger.EnterMethod("credentialService.Deliver", "requestID", requestID, "matricule", doc.Matricule)

	if strings.TrimSpace(doc.Email) == "" {
		return fmt.Errorf("%w: member e-mail is required", ErrInvalidArgument)
	}

	pdf, err := s.renderer.RenderCredentials(doc)
	if err != nil {
		return fmt.Errorf("failed to render credentials: %w", err)
	}

	filename := fmt.Sprintf("credentials-%s.pdf", doc.Matricule)
	key := fmt.Sprintf("credentials/%s/%s", requestID, filename)
	if err := s.store.Save(ctx, key, pdf); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	url, err := s.store.DownloadURL(key, requestID, s.linkTTL)
	if err != nil {
		// The attachment alone is enough to deliver the credentials.
		logger.Warn("Failed to sign credentials link", "requestID", requestID, "error", err)
		url = ""
	}

	attachment := Attachment{Filename: filename, ContentType: "application/pdf", Data: pdf}
	if err := s.emailSvc.SendCredentials(ctx, doc.Email, doc.Name, attachment, url); err != nil {
		return fmt.Errorf("failed to send credentials: %w", err)
	}

	logger.ExitMethod("credentialService.Deliver", "requestID", requestID)
	return nil
}
