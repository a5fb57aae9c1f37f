package domain

// SelectAll is the neutral value of every categorical control
const SelectAll = "All"

// Selection holds the sidebar controls of the dashboard
type Selection struct {
	AgeGroup   string `json:"age_group" validate:"required,oneof=All 'Under 17' '18 to 60' 'Above 60'"`
	Gender     string `json:"gender" validate:"required,oneof=All Male Female Unknown"`
	RegionOnly bool   `json:"region_only"`
	RegType    string `json:"reg_type" validate:"required,oneof=All CRPD NCRPD"`
	Education  string `json:"education" validate:"required,max=256"`
}

// DefaultSelection selects everything
func DefaultSelection() Selection {
	return Selection{
		AgeGroup:  SelectAll,
		Gender:    SelectAll,
		RegType:   SelectAll,
		Education: SelectAll,
	}
}

// IsEmpty reports whether the selection restricts nothing
func (s Selection) IsEmpty() bool {
	return s.AgeGroup == SelectAll && s.Gender == SelectAll && !s.RegionOnly &&
		s.RegType == SelectAll && s.Education == SelectAll
}

// AgeGroupOptions lists the age-group control values in display order
var AgeGroupOptions = []string{SelectAll, string(AgeGroupUnder17), string(AgeGroup18To60), string(AgeGroupAbove60)}

// GenderOptions lists the gender control values in display order
var GenderOptions = []string{SelectAll, string(GenderMale), string(GenderFemale), string(GenderUnknown)}

// RegTypeOptions lists the registration-type control values in display order
var RegTypeOptions = []string{SelectAll, string(RegistrationCRPD), string(RegistrationNCRPD)}

// FilterOptions is the set of values every control can take
type FilterOptions struct {
	AgeGroups  []string `json:"age_groups"`
	Genders    []string `json:"genders"`
	RegTypes   []string `json:"reg_types"`
	Educations []string `json:"educations"`
}
