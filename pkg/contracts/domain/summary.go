package domain

// CategoryCount is one bar of a distribution
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// FrequencyTable is a count-by-category distribution in display order
type FrequencyTable struct {
	Title  string          `json:"title"`
	Counts []CategoryCount `json:"counts"`
}

// Max returns the largest count, used to scale bars
func (t FrequencyTable) Max() int {
	m := 0
	for _, c := range t.Counts {
		if c.Count > m {
			m = c.Count
		}
	}
	return m
}

// Summary is everything the dashboard shows for one filtered view
type Summary struct {
	Total          int             `json:"total"`
	AgeGroupCounts []CategoryCount `json:"age_group_counts"`
	AgeGroups      FrequencyTable  `json:"age_distribution"`
	Genders        FrequencyTable  `json:"gender_distribution"`
	MaritalStatus  FrequencyTable  `json:"marital_status_distribution"`
	Education      FrequencyTable  `json:"education_distribution"`
	Disability     FrequencyTable  `json:"disability_distribution"`
	Selection      Selection       `json:"selection"`
}
