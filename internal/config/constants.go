package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "CRPD Dashboard"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (CRPD_SERVER_PORT, ...)
	EnvPrefix = "CRPD"

	// Workbook defaults
	DefaultWorkbookName = "CRPD Final All Data.xlsx"
	DefaultSheetName    = "Final Data"
	DefaultColumnRange  = "A:L"
	DefaultMaxRows      = 200000

	// Session
	SessionTimeout    = 24 * time.Hour
	SessionCookieName = "crpd_session"
)

// Column headers the pipeline reads by name. Headers are trimmed before matching.
const (
	ColDateOfBirth      = "Date of Birth"
	ColGender           = "Gender"
	ColPresentAddress   = "Present Address"
	ColPermanentAddress = "Permanent Address"
	ColReg              = "Reg"
	ColQualification    = "Qualification"
	ColMaritalStatus    = "Married/Unmarried"
	ColDisability       = "Disability"
)

// RequiredColumns lists every header that must be present in the sheet
var RequiredColumns = []string{
	ColDateOfBirth,
	ColGender,
	ColPresentAddress,
	ColPermanentAddress,
	ColReg,
	ColQualification,
	ColMaritalStatus,
	ColDisability,
}

// RegionName and RegionSectorPrefixes drive the in-region address heuristic
const RegionName = "islamabad"

var RegionSectorPrefixes = []string{"g-", "f-", "i-", "h-", "e-", "d-", "b-", "c-"}
