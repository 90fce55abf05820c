package domain

import "time"

// ContactSubmission is a contact-form submission from the website.
type ContactSubmission struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Message     string `json:"message"`
}

// Validate returns the names of missing required fields and whether the email
// passes the basic format check. An empty slice and ok=true means valid.
func (c ContactSubmission) Validate() (missing []string, emailOK bool) {
	if c.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if c.LastName == "" {
		missing = append(missing, "lastName")
	}
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Message == "" {
		missing = append(missing, "message")
	}
	return missing, c.Email == "" || ValidEmail(c.Email)
}

// FullName joins first and last name for template personalization.
func (c ContactSubmission) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Contact is a persisted contact-form submission.
type Contact struct {
	ID          int64     `json:"id" db:"id"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	CountryCode string    `json:"country_code,omitempty" db:"country_code"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
