package utils

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhoneNumber formats phoneNumber as E.164 for the given region.
// Numbers libphonenumber cannot parse or validate are returned trimmed but
// otherwise unchanged, so they can still match themselves exactly.
func NormalizePhoneNumber(phoneNumber, region string) string {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" || region == "" {
		return phoneNumber
	}
	p, err := libphonenumber.Parse(phoneNumber, region)
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return phoneNumber
	}
	return libphonenumber.Format(p, libphonenumber.E164)
}
