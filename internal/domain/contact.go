package domain

// ContactDetails is the doctor record collected by the onboarding form.
// Values carries project-defined extra fields keyed by field name.
type ContactDetails struct {
	Name          string            `json:"name"`
	Speciality    string            `json:"speciality,omitempty"`
	ClinicName    string            `json:"clinic_name,omitempty"`
	ClinicAddress string            `json:"clinic_address,omitempty"`
	ContactNo     string            `json:"contact_no,omitempty"`
	Email         string            `json:"email,omitempty"`
	Photo         string            `json:"photo,omitempty"`
	Values        map[string]string `json:"values,omitempty"`
}

// Field returns a named value, checking the well-known fields before the
// free-form value map.
func (c ContactDetails) Field(name string) string {
	switch name {
	case "name":
		return c.Name
	case "speciality":
		return c.Speciality
	case "clinic_name":
		return c.ClinicName
	case "clinic_address":
		return c.ClinicAddress
	case "contact_no":
		return c.ContactNo
	case "email":
		return c.Email
	case "photo":
		return c.Photo
	}
	return c.Values[name]
}

// FormSnapshot is the unit the orchestrator persists to the key-value
// store after every mutation so a restart resumes from last-known state.
// VideoDownloadURL is set if and only if the owning generation succeeded.
type FormSnapshot struct {
	Contact          ContactDetails `json:"contact"`
	VideoDownloadURL string         `json:"video_download_url,omitempty"`
}
