package main

import "unicode/utf8"

type validator struct {
	errors map[string]string
	order  []string
}

func newValidator() *validator {
	return &validator{
		errors: make(map[string]string),
	}
}

func (v *validator) toError() error {
	if v == nil || !v.hasErrors() {
		return nil
	}
	msgs := make([]string, 0, len(v.order))
	for _, key := range v.order {
		msgs = append(msgs, v.errors[key])
	}
	return &validationError{messages: msgs}
}

func (v *validator) hasErrors() bool {
	return len(v.errors) != 0
}

func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[key]; !ok {
		v.errors[key] = msg
		v.order = append(v.order, key)
	}
}

// checkRegistration applies the sign-up rules. A taken email is reported
// before any of the field rules. Minimum lengths count characters.
func (v *validator) checkRegistration(emailTaken bool, email, name, password, confirm string) {
	v.checkCond(!emailTaken, "email", "Email already exists.")
	v.checkCond(utf8.RuneCountInString(email) >= 4, "email", "Your email must be greater than 3 characters.")
	v.checkCond(utf8.RuneCountInString(name) >= 2, "name", "Your name must be greater than 1 character.")
	v.checkCond(password == confirm, "password", "Passwords don't match.")
	v.checkPassword(password)
}

func (v *validator) checkPassword(password string) {
	v.checkCond(utf8.RuneCountInString(password) >= 7, "password", "Password must be at least 7 characters.")
	// bcrypt reads at most 72 bytes
	v.checkCond(len(password) <= 72, "password", "Password must be at most 72 characters.")
}
