package dataprocessing

import (
	"strings"

	"crpdash/pkg/contracts/domain"
)

// View is a filtered window over a dataset: an index list into its records.
// Filtering never copies or mutates records.
type View struct {
	dataset *domain.Dataset
	indices []int
}

// FullView selects every record of the dataset
func FullView(ds *domain.Dataset) View {
	n := ds.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return View{dataset: ds, indices: indices}
}

// Len returns the number of records in the view
func (v View) Len() int { return len(v.indices) }

// Record returns the i-th record of the view
func (v View) Record(i int) *domain.Record {
	return &v.dataset.Records[v.indices[i]]
}

// Dataset returns the dataset the view points into
func (v View) Dataset() *domain.Dataset { return v.dataset }

// Page returns up to limit records starting at offset. A non-positive
// limit returns everything after offset.
func (v View) Page(offset, limit int) []domain.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(v.indices) {
		return []domain.Record{}
	}
	end := len(v.indices)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]domain.Record, 0, end-offset)
	for _, idx := range v.indices[offset:end] {
		out = append(out, v.dataset.Records[idx])
	}
	return out
}

// ApplyFilters returns the records matching every active control of the
// selection. "All" disables a control. Registration type matches by
// case-insensitive containment, so "CRPD" also selects "NCRPD" rows.
// Values no record carries simply produce an empty view.
func ApplyFilters(ds *domain.Dataset, sel domain.Selection) View {
	if sel.IsEmpty() {
		return FullView(ds)
	}

	regType := strings.ToUpper(sel.RegType)
	n := ds.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		rec := &ds.Records[i]
		if sel.AgeGroup != domain.SelectAll && string(rec.AgeGroup) != sel.AgeGroup {
			continue
		}
		if sel.Gender != domain.SelectAll && string(rec.GenderNormalized) != sel.Gender {
			continue
		}
		if sel.RegionOnly && !rec.InRegion {
			continue
		}
		if sel.RegType != domain.SelectAll && !strings.Contains(rec.RegNormalized, regType) {
			continue
		}
		if sel.Education != domain.SelectAll && rec.Qualification != sel.Education {
			continue
		}
		indices = append(indices, i)
	}
	return View{dataset: ds, indices: indices}
}

// EducationOptions lists "All" followed by each distinct non-empty
// qualification in order of first appearance.
func EducationOptions(ds *domain.Dataset) []string {
	seen := make(map[string]struct{})
	opts := []string{domain.SelectAll}
	for i := 0; i < ds.Len(); i++ {
		q := ds.Records[i].Qualification
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		opts = append(opts, q)
	}
	return opts
}

// Options returns the values every dashboard control can take
func Options(ds *domain.Dataset) domain.FilterOptions {
	return domain.FilterOptions{
		AgeGroups:  domain.AgeGroupOptions,
		Genders:    domain.GenderOptions,
		RegTypes:   domain.RegTypeOptions,
		Educations: EducationOptions(ds),
	}
}
