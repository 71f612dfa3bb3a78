package domain

import "strings"

// ApplyTo merges the submission over the stored request, field by field.
// Only whitelisted fields are copied.
func (s *CorrectionSubmission) ApplyTo(r *MembershipRequest) {
	if s == nil {
		return
	}
	mergeIdentity(&r.Identity, s.Identity)
	mergeContacts(&r.Contacts, s.Contacts)
	mergeAddress(&r.Address, s.Address)
	mergeEmployment(&r.Employment, s.Employment)
	mergeDocuments(&r.Documents, s.Documents)
}

func mergeIdentity(dst *Identity, p *IdentityPatch) {
	if p == nil {
		return
	}
	setText(&dst.Civility, p.Civility)
	setText(&dst.FirstName, p.FirstName)
	setText(&dst.LastName, p.LastName)
	setText(&dst.DateOfBirth, p.DateOfBirth)
	setText(&dst.PlaceOfBirth, p.PlaceOfBirth)
	setText(&dst.Nationality, p.Nationality)
	setText(&dst.Gender, p.Gender)
	setText(&dst.IDNumber, p.IDNumber)
}

func mergeContacts(dst *Contacts, p *ContactsPatch) {
	if p == nil {
		return
	}
	if len(p.Phones) > 0 {
		phones := make([]string, 0, len(p.Phones))
		for _, phone := range p.Phones {
			if phone = strings.TrimSpace(phone); phone != "" {
				phones = append(phones, phone)
			}
		}
		if len(phones) > 0 {
			dst.Phones = phones
		}
	}
	setText(&dst.Email, p.Email)
}

func mergeAddress(dst *Address, p *AddressPatch) {
	if p == nil {
		return
	}
	setText(&dst.Street, p.Street)
	setText(&dst.District, p.District)
	setText(&dst.City, p.City)
	setText(&dst.PostalCode, p.PostalCode)
	setText(&dst.Country, p.Country)
}

func mergeEmployment(dst *Employment, p *EmploymentPatch) {
	if p == nil {
		return
	}
	setText(&dst.CompanyName, p.CompanyName)
	setText(&dst.CompanyRef, p.CompanyRef)
	setText(&dst.Profession, p.Profession)
	setText(&dst.ProfessionRef, p.ProfessionRef)
	setText(&dst.Position, p.Position)
	setText(&dst.Employer, p.Employer)
}

func mergeDocuments(dst *Documents, p *DocumentsPatch) {
	if p == nil {
		return
	}
	setUpload(&dst.Photo, p.Photo)
	setUpload(&dst.IDCardFront, p.IDCardFront)
	setUpload(&dst.IDCardBack, p.IDCardBack)
	setUpload(&dst.ProofOfAddress, p.ProofOfAddress)
	setUpload(&dst.AdhesionForm, p.AdhesionForm)
	setUpload(&dst.OtherAttachment, p.OtherAttachment)
}

func setText(dst *string, v *string) {
	if v == nil {
		return
	}
	*dst = strings.TrimSpace(*v)
}

// setUpload merges an uploaded-file reference. Inline data payloads are never
// persisted, and an already-hosted URL never changes the stored reference,
// even when none is stored yet.
func setUpload(dst *string, v *string) {
	if v == nil {
		return
	}
	incoming := strings.TrimSpace(*v)
	switch {
	case incoming == "":
		return
	case IsInlineData(incoming):
		return
	case IsHostedURL(incoming):
		return
	default:
		*dst = incoming
	}
}

// IsHostedURL reports whether the value points at an already-hosted resource.
func IsHostedURL(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

// IsInlineData reports whether the value is binary content encoded as text.
func IsInlineData(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "blob:")
}
