package domain

import (
	"strings"

	"nomadtax_backend/platform/phone"
	"nomadtax_backend/platform/validator"
)

// typoTLDs are common .com misspellings. Addresses ending in one of these
// pass syntax validation but will never receive mail, so they are rejected
// outright instead of stored.
var typoTLDs = []string{".con", ".cmo", ".cim", ".vom"}

var contactValidator = validator.New()

// ContactErrors collects per-field validation failures for the contact step.
// A nil map field means the field passed.
type ContactErrors struct {
	Name  string
	Email string
	Phone string
}

// Any reports whether at least one field failed.
func (c ContactErrors) Any() bool {
	return c.Name != "" || c.Email != "" || c.Phone != ""
}

// ValidateContact checks the contact fields of an answer set. Name and email
// are required; phone is optional but must parse when present.
func ValidateContact(a Answers) ContactErrors {
	var errs ContactErrors
	if strings.TrimSpace(a.Name) == "" {
		errs.Name = "name is required"
	}
	if !ValidEmail(a.Email) {
		errs.Email = "enter a valid email address"
	}
	if p := strings.TrimSpace(a.Phone); p != "" && !phone.Valid(p) {
		errs.Phone = "enter a valid phone number"
	}
	return errs
}

// ValidEmail reports whether the address is syntactically valid and does not
// end in a known typo top-level domain.
func ValidEmail(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	if err := contactValidator.Var(address, "email"); err != nil {
		return false
	}
	lower := strings.ToLower(address)
	for _, tld := range typoTLDs {
		if strings.HasSuffix(lower, tld) {
			return false
		}
	}
	return true
}
