package entity

import "anoa.com/signupform/pkg/preview"

// Field names accepted by ApplyFieldChange. They match the form inputs' name attributes.
const (
	FieldFirstName            = "firstName"
	FieldLastName             = "lastName"
	FieldEmail                = "email"
	FieldPassword             = "password"
	FieldPasswordConfirmation = "passwordConfirmation"
	FieldDateOfBirth          = "dateOfBirth"
	FieldTelNumber            = "telNumber"
	FieldProfilePicture       = "profilePicture"
	FieldTermsAndPolicies     = "termsAndPolicies"
	FieldNewsletterSub        = "newsletterSub"
)

// SignupDraft is the in-progress sign-up record.
type SignupDraft struct {
	FirstName            string                `json:"firstName"`
	LastName             string                `json:"lastName"`
	Email                string                `json:"email"`
	Password             string                `json:"-"`
	PasswordConfirmation string                `json:"-"`
	DateOfBirth          string                `json:"dateOfBirth"`
	TelNumber            string                `json:"telNumber"`
	ProfilePicture       *preview.UploadedFile `json:"-"`
	TermsAndPolicies     bool                  `json:"termsAndPolicies"`
	NewsletterSub        bool                  `json:"newsletterSub"`
}
