package domain

type Address struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Flat     string `json:"flat"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Pincode  string `json:"pincode"`
}

// MissingFields reports which required fields are empty. Landmark is optional.
func (a Address) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"contact", a.Contact},
		{"flat", a.Flat},
		{"city", a.City},
		{"state", a.State},
		{"country", a.Country},
		{"pincode", a.Pincode},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
