package core

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseContact(t *testing.T) {
	got, err := ParseContact(formRequest(url.Values{
		"name":    {"Ana"},
		"email":   {"ana@x.com"},
		"phone":   {"555"},
		"purpose": {"order"},
		"message": {"Hi"},
		"extra":   {"ignored"},
	}))
	require.NoError(t, err)
	assert.Equal(t, ContactSubmission{Name: "Ana", Email: "ana@x.com", Phone: "555", Purpose: "order", Message: "Hi"}, got)
}

func TestParseContact_IgnoresQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/?name=FromQuery", strings.NewReader("email=a%40b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	got, err := ParseContact(req)
	require.NoError(t, err)
	assert.Empty(t, got.Name)
	assert.Equal(t, "a@b", got.Email)
}

func TestParseReview(t *testing.T) {
	got, err := ParseReview(formRequest(url.Values{
		"reviewer-name": {"Lee"},
		"rating":        {"5"},
		"review-text":   {"Good"},
	}))
	require.NoError(t, err)
	assert.Equal(t, ReviewSubmission{ReviewerName: "Lee", Rating: "5", ReviewText: "Good"}, got)
}

func TestValidate_Contact(t *testing.T) {
	ok := ContactSubmission{Name: "Ana", Email: "not-an-email", Message: "Hi"}
	assert.NoError(t, Validate(ok), "format is not checked, only presence")

	err := Validate(ContactSubmission{Phone: "1", Purpose: "x"})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"name", "email", "message"}, ve.Fields)
}

func TestValidate_Review(t *testing.T) {
	assert.NoError(t, Validate(ReviewSubmission{ReviewerName: "Lee", ReviewText: "ok"}), "rating is optional")
	assert.NoError(t, Validate(ReviewSubmission{ReviewerName: "Lee", Rating: "-3", ReviewText: "ok"}))

	err := Validate(ReviewSubmission{Rating: "5", ReviewText: "ok"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"reviewer-name"}, ve.Fields)
}

func TestValidate_WhitespaceCountsAsPresent(t *testing.T) {
	assert.NoError(t, Validate(ContactSubmission{Name: " ", Email: " ", Message: " "}))
}

func TestLogFields(t *testing.T) {
	contact := ContactSubmission{Name: "Ana", Email: "e", Phone: "p", Purpose: "u", Message: "m"}
	assert.Len(t, contact.LogFields(), 5)

	review := ReviewSubmission{ReviewerName: "Lee", Rating: "3", ReviewText: "t"}
	fields := review.LogFields()
	require.Len(t, fields, 3)
	assert.Equal(t, "3 stars", fields[1].String)
}
