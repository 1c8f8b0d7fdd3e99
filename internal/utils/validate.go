package utils

import (
	"errors"
	"fmt"

	"github.com/ttacon/libphonenumber"
)

var (
	// ErrPasswordMismatch indicates an empty password or a confirmation that does not match
	ErrPasswordMismatch = errors.New("invalid password: empty or confirmation does not match")
	// ErrInvalidPhone indicates the input is not a valid North American phone number
	ErrInvalidPhone = errors.New("invalid phone number: must be a valid US number")
)

// ValidatePassword checks that a password and its confirmation are non-empty and equal
func ValidatePassword(password, verify string) error {
	if password == "" || password != verify {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidatePhone parses a phone number as a US number and returns its canonical
// digit form (country code followed by national number). Formatting characters
// are stripped by the parser, so different spellings of the same number yield
// the same canonical string and collide on the uniqueness constraint.
func ValidatePhone(raw string) (string, error) {
	num, err := libphonenumber.Parse(raw, "US")
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !libphonenumber.IsValidNumber(num) || num.GetCountryCode() != 1 {
		return "", ErrInvalidPhone
	}
	return fmt.Sprintf("%d%d", num.GetCountryCode(), num.GetNationalNumber()), nil
}
