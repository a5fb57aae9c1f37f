package dataprocessing

import (
	"strings"
	"time"

	"crpdash/internal/config"
	"crpdash/pkg/contracts/domain"
)

// ClassifyAgeGroup buckets an age. Seventeen-year-olds fall through to
// "Above 60" because neither lower bucket includes them.
func ClassifyAgeGroup(age domain.Age) domain.AgeGroup {
	switch {
	case !age.Known:
		return domain.AgeGroupUnknown
	case age.Years < 17:
		return domain.AgeGroupUnder17
	case age.Years >= 18 && age.Years <= 60:
		return domain.AgeGroup18To60
	default:
		return domain.AgeGroupAbove60
	}
}

// NormalizeGender maps the exact codes "M" and "F"; everything else is unknown
func NormalizeGender(raw string) domain.Gender {
	switch raw {
	case "M":
		return domain.GenderMale
	case "F":
		return domain.GenderFemale
	default:
		return domain.GenderUnknown
	}
}

// IsInRegion reports whether an address mentions the region or one of its
// sector prefixes, case-insensitively.
func IsInRegion(address string) bool {
	if address == "" {
		return false
	}
	a := strings.ToLower(address)
	if strings.Contains(a, config.RegionName) {
		return true
	}
	for _, prefix := range config.RegionSectorPrefixes {
		if strings.Contains(a, prefix) {
			return true
		}
	}
	return false
}

// NormalizeRegistration trims and upper-cases a registration value
func NormalizeRegistration(reg string) string {
	return strings.ToUpper(strings.TrimSpace(reg))
}

// Deriver computes the derived fields of records against a fixed
// reference date taken from its clock.
type Deriver struct {
	now func() time.Time
}

// NewDeriver creates a deriver. A nil clock uses time.Now.
func NewDeriver(now func() time.Time) *Deriver {
	if now == nil {
		now = time.Now
	}
	return &Deriver{now: now}
}

// DeriveAt returns a copy of records with every derived field set against
// today. The input slice is left untouched.
func DeriveAt(records []domain.Record, today time.Time) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, rec := range records {
		rec.Age = ParseAge(rec.DateOfBirth, today)
		rec.AgeGroup = ClassifyAgeGroup(rec.Age)
		rec.GenderNormalized = NormalizeGender(rec.Gender)
		rec.InRegion = IsInRegion(rec.PresentAddress) || IsInRegion(rec.PermanentAddress)
		rec.RegNormalized = NormalizeRegistration(rec.Reg)
		out[i] = rec
	}
	return out
}

// BuildDataset derives a loaded sheet into an immutable dataset
func (d *Deriver) BuildDataset(sheet *Sheet) *domain.Dataset {
	today := d.now()
	return &domain.Dataset{
		Records:   DeriveAt(sheet.Records, today),
		Headers:   sheet.Headers,
		Source:    sheet.Path,
		Sheet:     sheet.Name,
		LoadedAt:  time.Now(),
		Reference: today,
	}
}

// UnknownAges counts records whose age could not be resolved
func UnknownAges(ds *domain.Dataset) int {
	if ds == nil {
		return 0
	}
	n := 0
	for i := range ds.Records {
		if !ds.Records[i].Age.Known {
			n++
		}
	}
	return n
}
