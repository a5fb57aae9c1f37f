package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// CellKind identifies how a spreadsheet cell was stored
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
	CellBool
)

// Cell is a typed spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind  `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Date   time.Time `json:"date,omitempty"`
}

// TextCell builds a text cell
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell builds a numeric cell
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }

// DateCell builds a date cell
func DateCell(t time.Time) Cell { return Cell{Kind: CellDate, Date: t} }

// String renders the cell the way it is shown in tables and exports
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format("2006-01-02")
	case CellBool:
		if c.Number != 0 {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// UnknownLabel is the label carried by every unknown categorical value
const UnknownLabel = "Unknown"

// Age is the result of date-of-birth parsing. Known is false when the
// value could not be resolved; such ages are counted as "Unknown".
type Age struct {
	Years int
	Known bool
}

// KnownAge returns a resolved age
func KnownAge(years int) Age { return Age{Years: years, Known: true} }

// UnknownAge is the sentinel for unparseable or missing dates of birth
var UnknownAge = Age{}

func (a Age) String() string {
	if !a.Known {
		return UnknownLabel
	}
	return strconv.Itoa(a.Years)
}

// MarshalJSON encodes known ages as numbers and the sentinel as "Unknown"
func (a Age) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return json.Marshal(UnknownLabel)
	}
	return json.Marshal(a.Years)
}

// AgeGroup buckets an age
type AgeGroup string

const (
	AgeGroupUnder17 AgeGroup = "Under 17"
	AgeGroup18To60  AgeGroup = "18 to 60"
	AgeGroupAbove60 AgeGroup = "Above 60"
	AgeGroupUnknown AgeGroup = UnknownLabel
)

// LiteralAgeGroups are the groups reported in the summary counts
var LiteralAgeGroups = []AgeGroup{AgeGroupUnder17, AgeGroup18To60, AgeGroupAbove60}

// Gender is the normalized gender of a record. Anything that is not
// exactly "M" or "F" in the source becomes GenderUnknown.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = UnknownLabel
)

// RegistrationType is a registration category selectable in the filters
type RegistrationType string

const (
	RegistrationCRPD  RegistrationType = "CRPD"
	RegistrationNCRPD RegistrationType = "NCRPD"
)

// Record is one row of the registration sheet. Derived fields are filled
// once by the deriver and never modified afterwards.
type Record struct {
	Row              int               `json:"row"`
	DateOfBirth      Cell              `json:"-"`
	Gender           string            `json:"gender"`
	PresentAddress   string            `json:"present_address"`
	PermanentAddress string            `json:"permanent_address"`
	Reg              string            `json:"reg"`
	Qualification    string            `json:"qualification"`
	MaritalStatus    string            `json:"marital_status"`
	Disability       string            `json:"disability"`
	Extra            map[string]string `json:"extra,omitempty"`

	Age              Age      `json:"age"`
	AgeGroup         AgeGroup `json:"age_group"`
	GenderNormalized Gender   `json:"gender_normalized"`
	InRegion         bool     `json:"in_region"`
	RegNormalized    string   `json:"reg_normalized"`
}

// Dataset is an immutable, fully derived record set
type Dataset struct {
	Records   []Record  `json:"-"`
	Headers   []string  `json:"headers"`
	Source    string    `json:"source"`
	Sheet     string    `json:"sheet"`
	LoadedAt  time.Time `json:"loaded_at"`
	Reference time.Time `json:"reference_date"`
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
