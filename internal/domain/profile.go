package domain

import (
	"fmt"
	"strings"
)

// CandidateProfile holds candidate identity data. It is mutable until the
// owning session leaves profile collection and is owned by that session.
type CandidateProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumePath string `json:"resume_path,omitempty"`
}

// ProfileFields is a partial profile update. Empty fields are left untouched
// on merge, so extraction results and manual corrections compose.
type ProfileFields struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ResumePath string `json:"resume_path,omitempty"`
}

// Merge applies non-empty fields onto the profile.
func (p *CandidateProfile) Merge(fields ProfileFields) {
	if fields.Name != "" {
		p.Name = fields.Name
	}
	if fields.Email != "" {
		p.Email = fields.Email
	}
	if fields.Phone != "" {
		p.Phone = fields.Phone
	}
	if fields.ResumePath != "" {
		p.ResumePath = fields.ResumePath
	}
}

// Validate checks structural validity of the record. Field presence is not
// enforced here; missing fields are the interview flow's concern.
func (p *CandidateProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fmt.Errorf("%w: malformed email %q", ErrInvalidProfile, p.Email)
	}
	return nil
}

// MissingFields returns the identity fields that are still empty, in a stable
// order. It is recomputed on demand and never stored.
func MissingFields(p CandidateProfile) []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Email == "" {
		missing = append(missing, "email")
	}
	if p.Phone == "" {
		missing = append(missing, "phone")
	}
	return missing
}
