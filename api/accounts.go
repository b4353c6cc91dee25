package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type accountService struct {
	storage  *storage
	hashCost int
}

// register creates an account after the sign-up rules pass. Only the bcrypt
// hash of the password is stored.
func (s *accountService) register(ctx context.Context, email, name, password, confirm string) (*account, error) {
	existing, err := s.storage.getAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	v := newValidator()
	v.checkRegistration(existing != nil, email, name, password, confirm)
	if err := v.toError(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}

	a := &account{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.storage.insertAccount(ctx, a); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &validationError{messages: []string{"Email already exists."}}
		}
		return nil, err
	}
	return a, nil
}

// login returns errAuth for both an unknown email and a wrong password. The
// wrapped detail is meant for server logs only.
func (s *accountService) login(ctx context.Context, email, password string) (*account, error) {
	a, err := s.storage.getAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: no account for email", errAuth)
	}
	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: password mismatch", errAuth)
	}
	return a, nil
}
