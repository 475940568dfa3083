package model

// School is a school record as returned by the schools API.
type School struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Contact string `json:"contact,omitempty"`
	EmailID string `json:"email_id,omitempty"`
	// Image is the stored filename, served by the API under /uploads/.
	Image string `json:"image,omitempty"`
}

// SchoolForm is the add-school form payload. Field names match the
// multipart field names the schools API expects.
type SchoolForm struct {
	Name    string `form:"name" binding:"required"`
	Address string `form:"address" binding:"required"`
	City    string `form:"city" binding:"required"`
	State   string `form:"state" binding:"required"`
	Contact string `form:"contact" binding:"required,min=10"`
	EmailID string `form:"email_id" binding:"required,school_email"`
}

// Fields returns the text fields in submission order.
func (f *SchoolForm) Fields() [][2]string {
	return [][2]string{
		{"name", f.Name},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"contact", f.Contact},
		{"email_id", f.EmailID},
	}
}

// ImageUpload is a validated image ready to be forwarded to the API.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
