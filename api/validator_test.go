package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorKeepsFirstMessagePerKey(t *testing.T) {
	v := newValidator()
	v.checkCond(false, "name", "first")
	v.checkCond(false, "name", "second")
	v.checkCond(false, "email", "third")
	v.checkCond(true, "password", "never")

	require.True(t, v.hasErrors())
	err := v.toError()

	var vErr *validationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"first", "third"}, vErr.messages)
	assert.Equal(t, "first", vErr.first())
}

func TestValidatorNoErrors(t *testing.T) {
	v := newValidator()
	v.checkCond(true, "name", "unused")
	assert.False(t, v.hasErrors())
	assert.NoError(t, v.toError())
}

func TestCheckRegistrationTakenEmailFirst(t *testing.T) {
	v := newValidator()
	v.checkRegistration(true, "a", "A", "x", "y")

	var vErr *validationError
	require.ErrorAs(t, v.toError(), &vErr)
	assert.Equal(t, "Email already exists.", vErr.first())
}

func TestCheckRegistrationCountsCharacters(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		display  string
		password string
		want     string
	}{
		{"one character name", "ann@example.com", "é", "secret123", "Your name must be greater than 1 character."},
		{"three character email", "é@b", "Ann", "secret123", "Your email must be greater than 3 characters."},
		{"four character password", "x@y.com", "Bob", "ééé1", "Password must be at least 7 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator()
			v.checkRegistration(false, tt.email, tt.display, tt.password, tt.password)

			var vErr *validationError
			require.ErrorAs(t, v.toError(), &vErr)
			assert.Equal(t, tt.want, vErr.first())
		})
	}
}

func TestCheckRegistrationAcceptsNonASCII(t *testing.T) {
	v := newValidator()
	v.checkRegistration(false, "zoë@b.com", "Zoë", "pässwörd", "pässwörd")
	assert.NoError(t, v.toError())
}

func TestCheckPasswordLimitIsBytes(t *testing.T) {
	v := newValidator()
	// 37 characters, 74 bytes
	v.checkPassword(strings.Repeat("é", 37))

	var vErr *validationError
	require.ErrorAs(t, v.toError(), &vErr)
	assert.Equal(t, "Password must be at most 72 characters.", vErr.first())
}
