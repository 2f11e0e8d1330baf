package service

import (
	"fmt"

	"anoa.com/signupform/internal/entity"
	notif "anoa.com/signupform/internal/modules/notification/service"
	"anoa.com/signupform/internal/modules/signup/dto"
	"anoa.com/signupform/pkg/preview"
	"anoa.com/signupform/pkg/validator"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultPlaceholder = "./images/default-pic1.png"

	MsgPasswordMismatch = "Passwords Do Not Match!"
	MsgPasswordWeak     = "Password's Requirements Aren't Met!"
	MsgNewsletter       = "Thanks for joining our newsletter :)"
)

var fieldKinds = map[string]dto.InputKind{
	entity.FieldFirstName:            dto.KindText,
	entity.FieldLastName:             dto.KindText,
	entity.FieldEmail:                dto.KindText,
	entity.FieldPassword:             dto.KindText,
	entity.FieldPasswordConfirmation: dto.KindText,
	entity.FieldDateOfBirth:          dto.KindText,
	entity.FieldTelNumber:            dto.KindText,
	entity.FieldProfilePicture:       dto.KindFile,
	entity.FieldTermsAndPolicies:     dto.KindCheckbox,
	entity.FieldNewsletterSub:        dto.KindCheckbox,
}

// namePolicy strips markup from user-supplied names before they reach a
// notification.
var namePolicy = bluemonday.StrictPolicy()

func WelcomeMessage(firstName, lastName string) string {
	return fmt.Sprintf("Signup successful! \n Welcome %s %s!", namePolicy.Sanitize(firstName), namePolicy.Sanitize(lastName))
}

type Option func(*FormController)

// WithPlaceholder sets the preview shown before any picture is uploaded.
func WithPlaceholder(uri string) Option {
	return func(c *FormController) { c.placeholder = uri }
}

// WithResetOnSuccess controls whether a successful submit clears the draft.
func WithResetOnSuccess(reset bool) Option {
	return func(c *FormController) { c.resetOnSuccess = reset }
}

// WithReportCost sets the bcrypt cost used when the submitted draft is reported.
func WithReportCost(cost int) Option {
	return func(c *FormController) { c.reportCost = cost }
}

// FormController owns one sign-up draft. It is not safe for concurrent use;
// callers feed it one input event at a time.
type FormController struct {
	previews       preview.Store
	notifier       notif.Notifier
	logger         *zap.Logger
	placeholder    string
	resetOnSuccess bool
	reportCost     int

	draft         entity.SignupDraft
	passwordValid bool
	showPassword  bool
	previewRef    preview.Reference
	closed        bool
}

func NewFormController(previews preview.Store, notifier notif.Notifier, logger *zap.Logger, opts ...Option) *FormController {
	c := &FormController{
		previews:       previews,
		notifier:       notifier,
		logger:         logger,
		placeholder:    DefaultPlaceholder,
		resetOnSuccess: true,
		reportCost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.reset()
	return c
}

func (c *FormController) reset() {
	c.previews.Revoke(c.previewRef)
	c.previewRef = preview.Reference{}
	c.draft = entity.SignupDraft{}
	c.passwordValid = validator.IsStrongPassword(c.draft.Password)
	c.showPassword = false
}

// ApplyFieldChange applies one edit and reports whether the draft changed.
// Edits to unknown fields, edits whose kind does not match the field, and
// phone numbers containing anything other than digits are dropped.
func (c *FormController) ApplyFieldChange(change dto.FieldChange) bool {
	if c.closed {
		return false
	}

	kind, ok := fieldKinds[change.Name]
	if !ok || kind != change.Kind {
		return false
	}

	switch change.Name {
	case entity.FieldFirstName:
		c.draft.FirstName = change.Text
	case entity.FieldLastName:
		c.draft.LastName = change.Text
	case entity.FieldEmail:
		c.draft.Email = change.Text
	case entity.FieldPassword:
		c.draft.Password = change.Text
		c.passwordValid = validator.IsStrongPassword(change.Text)
	case entity.FieldPasswordConfirmation:
		c.draft.PasswordConfirmation = change.Text
	case entity.FieldDateOfBirth:
		c.draft.DateOfBirth = change.Text
	case entity.FieldTelNumber:
		if !validator.IsDigits(change.Text) {
			return false
		}
		c.draft.TelNumber = change.Text
	case entity.FieldProfilePicture:
		c.setProfilePicture(change.File)
	case entity.FieldTermsAndPolicies:
		c.draft.TermsAndPolicies = change.Checked
	case entity.FieldNewsletterSub:
		c.draft.NewsletterSub = change.Checked
	}

	return true
}

// setProfilePicture stores the selected file. A new file replaces the preview
// and releases the old one; an empty selection clears the stored file but
// keeps the last preview.
func (c *FormController) setProfilePicture(file *preview.UploadedFile) {
	if file == nil {
		c.draft.ProfilePicture = nil
		return
	}

	stored := *file
	ref := c.previews.Create(stored)
	c.previews.Revoke(c.previewRef)
	c.previewRef = ref
	c.draft.ProfilePicture = &stored
}

// ToggleShowPassword flips password visibility and returns the new value.
func (c *FormController) ToggleShowPassword() bool {
	if c.closed {
		return c.showPassword
	}
	c.showPassword = !c.showPassword
	return c.showPassword
}

// Submit decides the outcome and reports it through the notifier.
// Mismatch is checked before strength. A closed draft reports nothing.
func (c *FormController) Submit() dto.Outcome {
	if c.closed {
		return dto.OutcomeClosed
	}

	d := c.draft

	if d.Password != d.PasswordConfirmation {
		c.notifier.Error(MsgPasswordMismatch)
		return dto.OutcomePasswordMismatch
	}
	if !c.passwordValid {
		c.notifier.Error(MsgPasswordWeak)
		return dto.OutcomePasswordWeak
	}

	c.notifier.Success(WelcomeMessage(d.FirstName, d.LastName))
	if d.NewsletterSub {
		c.notifier.Success(MsgNewsletter)
	}

	c.report(d)

	if c.resetOnSuccess {
		c.reset()
	}

	return dto.OutcomeSuccess
}

func (c *FormController) Closed() bool { return c.closed }

func (c *FormController) PasswordValid() bool { return c.passwordValid }

func (c *FormController) ShowPassword() bool { return c.showPassword }

// PreviewURI is the latest upload's preview or the placeholder.
func (c *FormController) PreviewURI() string {
	if c.previewRef.IsZero() {
		return c.placeholder
	}
	return c.previewRef.URI
}

// Draft returns a copy of the current draft.
func (c *FormController) Draft() entity.SignupDraft {
	return c.draft
}

func (c *FormController) Snapshot() dto.DraftView {
	d := c.draft
	view := dto.DraftView{
		FirstName:            d.FirstName,
		LastName:             d.LastName,
		Email:                d.Email,
		Password:             d.Password,
		PasswordConfirmation: d.PasswordConfirmation,
		DateOfBirth:          d.DateOfBirth,
		TelNumber:            d.TelNumber,
		TermsAndPolicies:     d.TermsAndPolicies,
		NewsletterSub:        d.NewsletterSub,

		PasswordValid:        c.passwordValid,
		PasswordsMatch:       d.Password == d.PasswordConfirmation,
		ShowRequirementsHint: !c.passwordValid && d.Password != "",
		EmailLooksValid:      validator.LooksLikeEmail(d.Email),
		ShowPassword:         c.showPassword,
		PreviewURI:           c.PreviewURI(),
	}
	if d.ProfilePicture != nil {
		view.ProfilePictureName = d.ProfilePicture.Name
	}
	return view
}

// Close releases the live preview. Further edits are ignored.
func (c *FormController) Close() {
	if c.closed {
		return
	}
	c.previews.Revoke(c.previewRef)
	c.previewRef = preview.Reference{}
	c.closed = true
}
