package phone

import (
	"errors"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a number arrives without a country prefix.
// The product launches in Tanzania; numbers from elsewhere still work as
// long as they carry their +CC prefix.
const DefaultRegion = "TZ"

var ErrInvalid = errors.New("invalid phone number")

// Normalize parses the input and returns the canonical E.164 form
// (e.g. "0754123456" -> "+255754123456").
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalid
	}
	num, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return "", ErrInvalid
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsValid reports whether raw parses to a valid number.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}
