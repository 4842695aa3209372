package domain

// Region identifies where a user lives or where a program applies.
// In criteria, an empty District matches every district of the province.
type Region struct {
	Province string `json:"province"`
	District string `json:"district,omitempty"`
}

// Covers reports whether r, read as a criteria entry, covers the user's
// region. A criteria entry with an empty district is province-wide.
func (r Region) Covers(user Region) bool {
	if r.Province != user.Province {
		return false
	}
	return r.District == "" || r.District == user.District
}
