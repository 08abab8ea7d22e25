package core

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ContactSubmission is one POST /contact form. It is never stored.
type ContactSubmission struct {
	Name    string `form:"name" validate:"required"`
	Email   string `form:"email" validate:"required"`
	Phone   string `form:"phone"`
	Purpose string `form:"purpose"`
	Message string `form:"message" validate:"required"`
}

// ReviewSubmission is one POST /submit-review form. Rating is kept as sent.
type ReviewSubmission struct {
	ReviewerName string `form:"reviewer-name" validate:"required"`
	Rating       string `form:"rating"`
	ReviewText   string `form:"review-text" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}

func ParseContact(r *http.Request) (ContactSubmission, error) {
	if err := r.ParseForm(); err != nil {
		return ContactSubmission{}, err
	}
	return ContactSubmission{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Purpose: r.PostForm.Get("purpose"),
		Message: r.PostForm.Get("message"),
	}, nil
}

func ParseReview(r *http.Request) (ReviewSubmission, error) {
	if err := r.ParseForm(); err != nil {
		return ReviewSubmission{}, err
	}
	return ReviewSubmission{
		ReviewerName: r.PostForm.Get("reviewer-name"),
		Rating:       r.PostForm.Get("rating"),
		ReviewText:   r.PostForm.Get("review-text"),
	}, nil
}

// Validate checks presence of the required fields only. It returns a
// *ValidationError naming the missing form fields, or nil.
func Validate(submission any) error {
	err := validate.Struct(submission)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

func (c ContactSubmission) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("name", c.Name),
		zap.String("email", c.Email),
		zap.String("phone", c.Phone),
		zap.String("purpose", c.Purpose),
		zap.String("message", c.Message),
	}
}

func (s ReviewSubmission) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("name", s.ReviewerName),
		zap.String("rating", s.Rating+" stars"),
		zap.String("review", s.ReviewText),
	}
}
