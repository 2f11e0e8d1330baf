package service

import (
	"anoa.com/signupform/internal/entity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
)

// SignupReport is the loggable form of a submitted draft. It never holds the
// clear-text password.
type SignupReport struct {
	FirstName           string
	LastName            string
	Email               string
	PasswordHash        string
	DateOfBirth         string
	TelNumber           string
	ProfilePictureName  string
	ProfilePictureBytes int
	TermsAndPolicies    bool
	NewsletterSub       bool
}

func (r SignupReport) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("first_name", r.FirstName)
	enc.AddString("last_name", r.LastName)
	enc.AddString("email", r.Email)
	enc.AddString("password_hash", r.PasswordHash)
	enc.AddString("date_of_birth", r.DateOfBirth)
	enc.AddString("tel_number", r.TelNumber)
	if r.ProfilePictureName != "" {
		enc.AddString("profile_picture", r.ProfilePictureName)
		enc.AddInt("profile_picture_bytes", r.ProfilePictureBytes)
	}
	enc.AddBool("terms_and_policies", r.TermsAndPolicies)
	enc.AddBool("newsletter_sub", r.NewsletterSub)
	return nil
}

// BuildReport hashes the password with bcrypt at the given cost.
func BuildReport(d entity.SignupDraft, cost int) (SignupReport, error) {
	r := SignupReport{
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		DateOfBirth:      d.DateOfBirth,
		TelNumber:        d.TelNumber,
		TermsAndPolicies: d.TermsAndPolicies,
		NewsletterSub:    d.NewsletterSub,
	}
	if d.ProfilePicture != nil {
		r.ProfilePictureName = d.ProfilePicture.Name
		r.ProfilePictureBytes = len(d.ProfilePicture.Data)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), cost)
	if err != nil {
		return r, err
	}
	r.PasswordHash = string(hash)

	return r, nil
}

func (c *FormController) report(d entity.SignupDraft) {
	r, err := BuildReport(d, c.reportCost)
	if err != nil {
		c.logger.Warn("failed to hash password for signup report", zap.Error(err))
	}
	c.logger.Info("signup submitted", zap.Object("draft", r))
}
