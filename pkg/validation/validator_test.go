package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type registerPayload struct {
	Username string   `json:"username" validate:"required,username"`
	Password string   `json:"password" validate:"required,pwd"`
	Email    string   `json:"email" validate:"required,email"`
	Rating   int      `json:"rating" validate:"omitempty,rating"`
	Days     []string `json:"days" validate:"omitempty,dive,weekday"`
}

func TestToDetails(t *testing.T) {
	v := validator.New()
	Register(v)

	tests := []struct {
		name    string
		payload registerPayload
		want    map[string]string
	}{
		{
			name:    "valid",
			payload: registerPayload{Username: "alice01", Password: "password1", Email: "a@b.io", Rating: 3, Days: []string{"monday"}},
		},
		{
			name:    "short username and password",
			payload: registerPayload{Username: "abc", Password: "short", Email: "a@b.io"},
			want: map[string]string{
				"username": "must be between 5 and 30 characters long",
				"password": "min length 8",
			},
		},
		{
			name:    "password within 72 characters but over 72 bytes",
			payload: registerPayload{Username: "alice01", Password: strings.Repeat("é", 40), Email: "a@b.io"},
			want:    map[string]string{"password": "max length 72 bytes"},
		},
		{
			name:    "password at 72 bytes",
			payload: registerPayload{Username: "alice01", Password: strings.Repeat("a", 72), Email: "a@b.io"},
		},
		{
			name:    "missing email, bad rating and day",
			payload: registerPayload{Username: "alice01", Password: "password1", Rating: 9, Days: []string{"funday"}},
			want: map[string]string{
				"email":   "is required",
				"rating":  "must be between 1 and 5",
				"days[0]": "must be a weekday name such as MONDAY",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, ToDetails(err))
		})
	}
}

func TestToDetails_JSONErrors(t *testing.T) {
	var p registerPayload
	err := json.Unmarshal([]byte(`{"username":`), &p)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"rating":"five"}`), &p)
	assert.Equal(t, map[string]string{"rating": "must be of type int"}, ToDetails(err))
}
