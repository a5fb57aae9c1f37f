package dataprocessing

import (
	"sort"

	"crpdash/pkg/contracts/domain"
)

// Frequency table titles as shown on the dashboard
const (
	TitleAgeGroups     = "Age Distribution"
	TitleGenders       = "Gender Distribution"
	TitleMaritalStatus = "Marital Status Distribution"
	TitleEducation     = "Education Level Distribution"
	TitleDisability    = "Disability Type Distribution"
)

// Summarize computes the totals and distributions shown for a view
func Summarize(v View, sel domain.Selection) domain.Summary {
	return domain.Summary{
		Total:          v.Len(),
		AgeGroupCounts: AgeGroupCounts(v),
		AgeGroups:      Frequencies(v, TitleAgeGroups, func(r *domain.Record) string { return string(r.AgeGroup) }),
		Genders:        Frequencies(v, TitleGenders, func(r *domain.Record) string { return string(r.GenderNormalized) }),
		MaritalStatus:  Frequencies(v, TitleMaritalStatus, func(r *domain.Record) string { return r.MaritalStatus }),
		Education:      Frequencies(v, TitleEducation, func(r *domain.Record) string { return r.Qualification }),
		Disability:     DisabilityDistribution(v),
		Selection:      sel,
	}
}

// AgeGroupCounts counts the view per literal age group, zeros included
func AgeGroupCounts(v View) []domain.CategoryCount {
	counts := make(map[domain.AgeGroup]int, len(domain.LiteralAgeGroups))
	for i := 0; i < v.Len(); i++ {
		counts[v.Record(i).AgeGroup]++
	}
	out := make([]domain.CategoryCount, 0, len(domain.LiteralAgeGroups))
	for _, g := range domain.LiteralAgeGroups {
		out = append(out, domain.CategoryCount{Category: string(g), Count: counts[g]})
	}
	return out
}

// Frequencies counts the non-empty values of a field, most frequent first.
// Ties keep the order in which values first appear in the view.
func Frequencies(v View, title string, field func(*domain.Record) string) domain.FrequencyTable {
	counts := countInAppearanceOrder(v, field)
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return domain.FrequencyTable{Title: title, Counts: counts}
}

// DisabilityDistribution counts disability types least frequent first,
// the order in which the horizontal chart stacks them bottom to top.
func DisabilityDistribution(v View) domain.FrequencyTable {
	counts := countInAppearanceOrder(v, func(r *domain.Record) string { return r.Disability })
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count < counts[j].Count })
	return domain.FrequencyTable{Title: TitleDisability, Counts: counts}
}

func countInAppearanceOrder(v View, field func(*domain.Record) string) []domain.CategoryCount {
	pos := make(map[string]int)
	counts := []domain.CategoryCount{}
	for i := 0; i < v.Len(); i++ {
		key := field(v.Record(i))
		if key == "" {
			continue
		}
		if p, ok := pos[key]; ok {
			counts[p].Count++
			continue
		}
		pos[key] = len(counts)
		counts = append(counts, domain.CategoryCount{Category: key, Count: 1})
	}
	return counts
}
