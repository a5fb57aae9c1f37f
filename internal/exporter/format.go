package exporter

import (
	"strconv"

	"crpdash/pkg/contracts/domain"
)

// formatInt formats a count for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatAge renders known ages as whole years and the rest as "Unknown"
func formatAge(a domain.Age) string {
	return a.String()
}
