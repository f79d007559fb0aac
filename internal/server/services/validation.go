package services

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const (
	maxNameLength  = 50
	maxEmailLength = 255
)

// simpleEmail is the shape every accepted address must also have: a local
// part, a domain and a dot in the domain.
var simpleEmail = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, maxNameLength),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidName, err)
	}
	return nil
}

func validateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		validation.RuneLength(1, maxEmailLength),
		is.Email,
		validation.Match(simpleEmail),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidEmail, err)
	}
	return nil
}
