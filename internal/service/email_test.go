package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTransport struct {
	sent []outgoingMail
	err  error
}

func (t *recordingTransport) name() string { return "recording" }

func (t *recordingTransport) deliver(ctx context.Context, m outgoingMail) error {
	t.sent = append(t.sent, m)
	return t.err
}

func TestEmailService_SendCredentials(t *testing.T) {
	transport := &recordingTransport{}
	svc := &emailService{transport: transport, orgName: "Mutuelle des Enseignants"}

	doc := Attachment{Filename: "credentials-MUT-2026-00001.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	err := svc.SendCredentials(context.Background(), "awa@example.ml", "Awa Traoré", doc, "https://docs.example.ml/api/v1/documents/tok")
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	m := transport.sent[0]
	assert.Equal(t, "awa@example.ml", m.To)
	assert.Equal(t, "Awa Traoré", m.ToName)
	assert.Contains(t, m.Subject, "Mutuelle des Enseignants")
	assert.Contains(t, m.Body, "Hello Awa Traoré")
	assert.Contains(t, m.Body, "https://docs.example.ml/api/v1/documents/tok")
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, doc, m.Attachments[0])
}

func TestEmailService_SendCredentialsWithoutLink(t *testing.T) {
	transport := &recordingTransport{}
	svc := &emailService{transport: transport, orgName: "Mutuelle"}

	require.NoError(t, svc.SendCredentials(context.Background(), "a@b.ml", "A", Attachment{}, ""))
	assert.NotContains(t, transport.sent[0].Body, "download them here")
}

func TestEmailService_SendRejection(t *testing.T) {
	transport := &recordingTransport{err: errors.New("relay refused")}
	svc := &emailService{transport: transport, orgName: "Mutuelle"}

	err := svc.SendRejection(context.Background(), "a@b.ml", "A", "Dossier incomplet")
	assert.EqualError(t, err, "relay refused")
	assert.Contains(t, transport.sent[0].Body, "Reason: Dossier incomplet")
	assert.Empty(t, transport.sent[0].Attachments)
}

func TestEmailService_SendCorrectionRequest(t *testing.T) {
	transport := &recordingTransport{}
	svc := &emailService{transport: transport, orgName: "Mutuelle"}

	require.NoError(t, svc.SendCorrectionRequest(context.Background(), "a@b.ml", "A", "Your security code: 12-34-56"))
	assert.Equal(t, "Your security code: 12-34-56", transport.sent[0].Body)
}
