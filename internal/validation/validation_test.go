package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faq struct {
	Question string `json:"question" validate:"required"`
}

type sample struct {
	Name   string   `json:"name" validate:"required,max=5"`
	Email  string   `json:"email" validate:"required,email"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Status string   `json:"status" validate:"oneof=active inactive"`
	FAQs   []faq    `json:"faqs" validate:"dive"`
}

func TestValidate_OK(t *testing.T) {
	r := 4.5
	err := New().Validate(&sample{Name: "Lake", Email: "a@b.co", Rating: &r, Status: "active"})
	assert.NoError(t, err)
}

func TestValidate_FieldMessages(t *testing.T) {
	r := 9.0
	err := New().Validate(&sample{Name: "Waterfall", Email: "nope", Rating: &r, Status: "gone", FAQs: []faq{{}}})

	var verr Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Errors{
		"name":             "must be at most 5 characters",
		"email":            "must be a valid email address",
		"rating":           "must be less than or equal to 5",
		"status":           "must be one of: active, inactive",
		"faqs[0].question": "is required",
	}, verr)
}

func TestValidate_Required(t *testing.T) {
	err := New().Validate(&sample{Status: "active"})
	var verr Errors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr["name"])
	assert.Equal(t, "is required", verr["email"])
}
