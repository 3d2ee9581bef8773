package validators

import "errors"

// MaxPasswordLength caps what gets fed to the password hasher
const MaxPasswordLength = 255

var (
	ErrPasswordEmpty   = errors.New("no password provided")
	ErrPasswordTooLong = errors.New("password is too long")
)

// PasswordValidator only checks presence and an upper bound. Accounts are
// created by admins, so there is no strength policy.
func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
