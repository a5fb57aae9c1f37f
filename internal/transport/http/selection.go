package http

import (
	"net/http"
	"net/url"
	"strings"

	apierrors "crpdash/internal/errors"
	"crpdash/internal/middleware"
	"crpdash/pkg/contracts/domain"
)

// Query parameters of the dashboard controls
const (
	ParamAgeGroup  = "age_group"
	ParamGender    = "gender"
	ParamRegion    = "region"
	ParamRegType   = "reg_type"
	ParamEducation = "education"
	ParamRaw       = "raw"
)

// ParseSelection reads the dashboard controls from the query string.
// Absent controls select everything; values outside a control's options
// are a validation error. Education accepts any value and simply matches
// nothing when no record carries it.
func ParseSelection(r *http.Request, v *middleware.Validator) (domain.Selection, error) {
	q := r.URL.Query()
	sel := domain.DefaultSelection()

	sel.AgeGroup = valueOr(q, ParamAgeGroup, sel.AgeGroup)
	sel.Gender = valueOr(q, ParamGender, sel.Gender)
	sel.RegType = valueOr(q, ParamRegType, sel.RegType)
	sel.Education = valueOr(q, ParamEducation, sel.Education)

	region, err := parseFlag(q, ParamRegion)
	if err != nil {
		return sel, err
	}
	sel.RegionOnly = region

	if err := v.Struct(sel); err != nil {
		return sel, err
	}
	return sel, nil
}

// SelectionQuery encodes a selection back into query parameters, leaving
// neutral controls out.
func SelectionQuery(sel domain.Selection) url.Values {
	q := url.Values{}
	if sel.AgeGroup != domain.SelectAll {
		q.Set(ParamAgeGroup, sel.AgeGroup)
	}
	if sel.Gender != domain.SelectAll {
		q.Set(ParamGender, sel.Gender)
	}
	if sel.RegionOnly {
		q.Set(ParamRegion, "1")
	}
	if sel.RegType != domain.SelectAll {
		q.Set(ParamRegType, sel.RegType)
	}
	if sel.Education != domain.SelectAll {
		q.Set(ParamEducation, sel.Education)
	}
	return q
}

func valueOr(q url.Values, key, fallback string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return fallback
}

// parseFlag accepts the usual checkbox spellings
func parseFlag(q url.Values, key string) (bool, error) {
	switch strings.ToLower(q.Get(key)) {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	default:
		return false, apierrors.InvalidParameter(key, q.Get(key))
	}
}

// withQuery appends q to path when it is not empty
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
