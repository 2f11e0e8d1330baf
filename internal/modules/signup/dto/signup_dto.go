package dto

import (
	"anoa.com/signupform/internal/entity"
	"anoa.com/signupform/pkg/preview"
	"github.com/google/uuid"
)

// InputKind tells which part of an input event carries the value.
type InputKind string

const (
	KindText     InputKind = "text"
	KindCheckbox InputKind = "checkbox"
	KindFile     InputKind = "file"
)

// FieldChange is one user edit of a single form input.
type FieldChange struct {
	Name    string
	Kind    InputKind
	Text    string
	Checked bool
	File    *preview.UploadedFile
}

// Outcome is the result of a submit.
type Outcome string

const (
	OutcomeSuccess          Outcome = "SUCCESS"
	OutcomePasswordMismatch Outcome = "PASSWORD_MISMATCH"
	OutcomePasswordWeak     Outcome = "PASSWORD_WEAK"
	// OutcomeClosed is returned when the draft was already discarded.
	OutcomeClosed           Outcome = "CLOSED"
)

// FieldChangeInput is the JSON body of a text or checkbox edit. Value is
// capped at 512 bytes on the wire, passwords included.
type FieldChangeInput struct {
	Name    string `json:"name" form:"name" binding:"required,oneof=firstName lastName email password passwordConfirmation dateOfBirth telNumber termsAndPolicies newsletterSub"`
	Kind    string `json:"kind" form:"kind" binding:"required,oneof=text checkbox"`
	Value   string `json:"value" form:"value" binding:"max=512"`
	Checked bool   `json:"checked" form:"checked"`
}

// ToFieldChange converts the request body into a controller edit.
func (in FieldChangeInput) ToFieldChange() FieldChange {
	return FieldChange{
		Name:    in.Name,
		Kind:    InputKind(in.Kind),
		Text:    in.Value,
		Checked: in.Checked,
	}
}

// SubmitCheck holds the draft fields the form requires before a submit is
// accepted. Password strength and matching are left to the controller.
type SubmitCheck struct {
	FirstName            string `binding:"required"`
	LastName             string `binding:"required"`
	Email                string `binding:"required"`
	Password             string `binding:"required"`
	PasswordConfirmation string `binding:"required"`
	DateOfBirth          string `binding:"required"`
	TelNumber            string `binding:"required,digits"`
	TermsAndPolicies     bool   `binding:"eq=true"`
}

func NewSubmitCheck(d entity.SignupDraft) SubmitCheck {
	return SubmitCheck{
		FirstName:            d.FirstName,
		LastName:             d.LastName,
		Email:                d.Email,
		Password:             d.Password,
		PasswordConfirmation: d.PasswordConfirmation,
		DateOfBirth:          d.DateOfBirth,
		TelNumber:            d.TelNumber,
		TermsAndPolicies:     d.TermsAndPolicies,
	}
}

// DraftView is what the page renders: the stored inputs plus derived state.
type DraftView struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	DateOfBirth          string `json:"dateOfBirth"`
	TelNumber            string `json:"telNumber"`
	ProfilePictureName   string `json:"profilePictureName,omitempty"`
	TermsAndPolicies     bool   `json:"termsAndPolicies"`
	NewsletterSub        bool   `json:"newsletterSub"`

	PasswordValid        bool   `json:"passwordValid"`
	PasswordsMatch       bool   `json:"passwordsMatch"`
	ShowRequirementsHint bool   `json:"showRequirementsHint"`
	EmailLooksValid      bool   `json:"emailLooksValid"`
	ShowPassword         bool   `json:"showPassword"`
	PreviewURI           string `json:"profilePicturePreviewUri"`
}

type SessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int64     `json:"expires_in"`
	Draft     DraftView `json:"draft"`
}

type FieldChangeResponse struct {
	Applied bool      `json:"applied"`
	Draft   DraftView `json:"draft"`
}

type SubmitResponse struct {
	Outcome       Outcome               `json:"outcome"`
	Notifications []entity.Notification `json:"notifications"`
	Draft         DraftView             `json:"draft"`
}
