package extract

import (
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/extract/types"
	"leadscout-engine/internal/extract/util"
)

// NormalizeListing turns a raw listing into a lead. Malformed phone,
// website or email fields are dropped, not the whole record; a missing
// name invalidates the record (ok=false).
func NormalizeListing(l types.Listing, q types.Query, jobID string) (domain.Lead, bool) {
	name := util.CleanText(l.Name)
	if name == "" {
		return domain.Lead{}, false
	}

	location := util.CleanText(l.Address)
	if location == "" {
		location = util.CleanText(q.Location)
	}

	return domain.Lead{
		JobID:        jobID,
		Name:         name,
		Phone:        util.NormalizePhone(l.Phone),
		Website:      util.NormalizeWebsite(l.Website),
		Email:        util.NormalizeEmail(l.Email),
		Location:     location,
		BusinessType: util.CleanText(q.BusinessType),
		ScrapedAt:    time.Now().UTC(),
		Status:       domain.LeadNew,
	}, true
}

// ValidateLead is the post-extraction pass that promotes a lead out of
// "new". A lead with no way to reach the business is invalid; a personal
// mailbox keeps it at "new" so a later enrichment step can look for a
// business address.
func ValidateLead(l domain.Lead) domain.LeadStatus {
	if l.Phone == "" && l.Website == "" && l.Email == "" {
		return domain.LeadInvalid
	}
	if l.Email != "" && util.IsPersonalEmail(l.Email) {
		return domain.LeadNew
	}
	return domain.LeadValidated
}
