package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crpdash/pkg/contracts/domain"
)

func counts(pairs ...interface{}) []domain.CategoryCount {
	out := make([]domain.CategoryCount, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, domain.CategoryCount{Category: pairs[i].(string), Count: pairs[i+1].(int)})
	}
	return out
}

func TestSummarize(t *testing.T) {
	sel := domain.DefaultSelection()
	s := Summarize(FullView(sampleDataset()), sel)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, counts("Under 17", 1, "18 to 60", 1, "Above 60", 2), s.AgeGroupCounts)
	assert.Equal(t, counts("Above 60", 2, "18 to 60", 1, "Under 17", 1, "Unknown", 1), s.AgeGroups.Counts)
	assert.Equal(t, counts("Male", 2, "Female", 2, "Unknown", 1), s.Genders.Counts)
	assert.Equal(t, counts("Married", 2, "Unmarried", 2), s.MaritalStatus.Counts)
	assert.Equal(t, counts("Matric", 2, "Primary", 1, "Graduate", 1), s.Education.Counts)
	assert.Equal(t, counts("Deaf", 1, "Physical", 1, "Blind", 3), s.Disability.Counts)
	assert.Equal(t, TitleDisability, s.Disability.Title)
	assert.Equal(t, sel, s.Selection)
}

func TestSummarizeEmptyView(t *testing.T) {
	sel := domain.DefaultSelection()
	sel.Education = "PhD"
	s := Summarize(ApplyFilters(sampleDataset(), sel), sel)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, counts("Under 17", 0, "18 to 60", 0, "Above 60", 0), s.AgeGroupCounts)
	assert.Empty(t, s.Genders.Counts)
	assert.Empty(t, s.Disability.Counts)
	assert.Equal(t, 0, s.Disability.Max())
}

func TestAgeGroupCountsNeverExceedTotal(t *testing.T) {
	v := FullView(sampleDataset())
	sum := 0
	for _, c := range AgeGroupCounts(v) {
		sum += c.Count
	}
	assert.LessOrEqual(t, sum, v.Len())
}
