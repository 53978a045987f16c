package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstFieldError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"first field list", `{"username":["A user with that username already exists."],"email":["Enter a valid email address."]}`, "A user with that username already exists."},
		{"document order wins", `{"phone":["bad phone"],"username":["taken"]}`, "bad phone"},
		{"string value", `{"non_field_errors":"Passwords do not match"}`, "Passwords do not match"},
		{"skips unusable fields", `{"meta":{"x":1},"count":3,"license_number":["required"]}`, "required"},
		{"empty list skipped", `{"email":[],"phone":["required"]}`, "required"},
		{"top-level list", `["Something went wrong"]`, "Something went wrong"},
		{"nothing usable", `{"a":1,"b":{"c":"d"}}`, ""},
		{"not json", `<html>502 Bad Gateway</html>`, ""},
		{"empty", ``, ""},
		{"truncated", `{"username":["x"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstFieldError([]byte(tt.body)))
		})
	}
}

func TestDetailOrFirstError(t *testing.T) {
	assert.Equal(t, "No active account found with the given credentials",
		detailOrFirstError([]byte(`{"detail":"No active account found with the given credentials"}`)))
	assert.Equal(t, "This field is required.",
		detailOrFirstError([]byte(`{"password":["This field is required."]}`)))
	assert.Equal(t, "later", detailOrFirstError([]byte(`{"username":["fine"],"detail":"later"}`)), "detail is preferred over field errors")
	assert.Empty(t, detailOrFirstError([]byte(`{}`)))
}
