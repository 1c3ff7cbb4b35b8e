package validation

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Name fields accept Latin letters, Turkish letters, and spaces.
var alphaTurkishRegex = regexp.MustCompile(`^[a-zA-ZğüşıöçĞÜŞİÖÇ\s]+$`)

var commentValidator = newCommentValidator()

func newCommentValidator() *validator.Validate {
	v := validator.New()
	// Registration cannot fail for a static tag name.
	_ = v.RegisterValidation("alpha_tr", func(fl validator.FieldLevel) bool {
		return alphaTurkishRegex.MatchString(fl.Field().String())
	})
	return v
}

// AuthenticatedComment is a comment submitted by a signed-in user.
type AuthenticatedComment struct {
	UniversityID string `validate:"required"`
	Content      string `validate:"required,min=10,max=1000"`
}

// AnonymousComment is a comment submitted without an account. The contact
// fields replace the account identity.
type AnonymousComment struct {
	UniversityID string `validate:"required"`
	Name         string `validate:"required,min=2,max=50,alpha_tr"`
	Surname      string `validate:"required,min=2,max=50,alpha_tr"`
	Email        string `validate:"required,email,max=100"`
	Content      string `validate:"required,min=10,max=1000"`
}

// commentFieldMessages maps struct field + tag to a human-readable message.
var commentFieldMessages = map[string]string{
	"UniversityID.required": "University ID is required",
	"Content.required":      "Comment is required",
	"Content.min":           "Comment must be at least 10 characters",
	"Content.max":           "Comment must be less than 1000 characters",
	"Name.required":         "Name is required",
	"Name.min":              "Name must be at least 2 characters",
	"Name.max":              "Name must be less than 50 characters",
	"Name.alpha_tr":         "Name can only contain letters",
	"Surname.required":      "Surname is required",
	"Surname.min":           "Surname must be at least 2 characters",
	"Surname.max":           "Surname must be less than 50 characters",
	"Surname.alpha_tr":      "Surname can only contain letters",
	"Email.required":        "Email is required",
	"Email.email":           "Please enter a valid email address",
	"Email.max":             "Email must be less than 100 characters",
}

// ValidateComment validates either comment shape and returns a human-readable
// error for the first failing field.
func ValidateComment(input interface{}) error {
	err := commentValidator.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		if msg, found := commentFieldMessages[fe.Field()+"."+fe.Tag()]; found {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("invalid value for %s", fe.Field())
	}
	return err
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}
