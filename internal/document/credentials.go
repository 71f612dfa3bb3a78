// Package document renders the printable sheets handed to new members.
package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"mutuelle-membership/internal/domain"
)

// CredentialsOptions configures the credentials sheet.
type CredentialsOptions struct {
	OrganizationName string
	LoginURL         string
	FontFamily       string
	HeaderColor      [3]int
}

func DefaultCredentialsOptions(orgName string) CredentialsOptions {
	return CredentialsOptions{
		OrganizationName: orgName,
		FontFamily:       "Arial",
		HeaderColor:      [3]int{0, 102, 153},
	}
}

type CredentialsRenderer struct {
	options CredentialsOptions
	now     func() time.Time
}

func NewCredentialsRenderer(options CredentialsOptions) *CredentialsRenderer {
	if options.FontFamily == "" {
		options.FontFamily = "Arial"
	}
	return &CredentialsRenderer{options: options, now: time.Now}
}

// RenderCredentials returns a one-page A4 PDF with the member's login details.
func (r *CredentialsRenderer) RenderCredentials(doc domain.CredentialDocument) ([]byte, error) {
	if doc.Matricule == "" || doc.Password == "" {
		return nil, fmt.Errorf("credentials document needs a matricule and a password")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Member credentials "+doc.Matricule, true)
	pdf.SetAuthor(r.options.OrganizationName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	font := r.options.FontFamily

	pdf.AddPage()

	c := r.options.HeaderColor
	pdf.SetFillColor(c[0], c[1], c[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(0, 14, tr(r.options.OrganizationName), "", 1, "C", true, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(font, "B", 14)
	pdf.CellFormat(0, 10, tr("Member access credentials"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont(font, "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("Dear %s, your membership application has been approved. Keep this document in a safe place.", doc.Name)), "", "L", false)
	pdf.Ln(6)

	rows := [][2]string{
		{"Member", doc.Name},
		{"Matricule", doc.Matricule},
		{"Login e-mail", doc.Email},
		{"Temporary password", doc.Password},
	}
	for i, row := range rows {
		fill := i%2 == 0
		pdf.SetFillColor(242, 242, 242)
		pdf.SetFont(font, "B", 11)
		pdf.CellFormat(60, 9, tr(row[0]), "1", 0, "L", fill, 0, "")
		pdf.SetFont(font, "", 11)
		pdf.CellFormat(0, 9, tr(row[1]), "1", 1, "L", fill, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont(font, "I", 10)
	pdf.MultiCell(0, 5, tr("Change this password after your first login. Staff will never ask you for it."), "", "L", false)
	if r.options.LoginURL != "" {
		pdf.Ln(2)
		pdf.SetFont(font, "", 10)
		pdf.CellFormat(0, 6, tr("Member area: "+r.options.LoginURL), "", 1, "L", false, 0, r.options.LoginURL)
	}

	pdf.SetY(-30)
	pdf.SetFont(font, "", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", r.now().UTC().Format("2006-01-02 15:04 MST")), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
