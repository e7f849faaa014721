package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNoUpper    = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower    = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber   = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial  = errors.New("password must contain at least one special character")
	ErrPasswordCommon     = errors.New("password is too common")
	ErrPasswordSequential = errors.New("password contains sequential characters")
	ErrPasswordRepeating  = errors.New("password contains repeating characters")
)

// PasswordValidator checks new passwords for register, reset and change.
type PasswordValidator struct {
	minLength       int
	commonPasswords map[string]bool
}

func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLength: 8,
		commonPasswords: map[string]bool{
			"password":   true,
			"password1!": true,
			"p@ssw0rd":   true,
			"qwerty123!": true,
			"welcome1!":  true,
			"admin123!":  true,
		},
	}
}

// ValidatePassword returns the first rule the password breaks.
func (pv *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < pv.minLength {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	runes := []rune(password)
	for i, ch := range runes {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsNumber(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}

		// runs of three: "aaa", "abc", "321"
		if i >= 2 {
			a, b, c := runes[i-2], runes[i-1], ch
			if a == b && b == c {
				return ErrPasswordRepeating
			}
			if (b == a+1 && c == b+1) || (b == a-1 && c == b-1) {
				return ErrPasswordSequential
			}
		}
	}

	switch {
	case !hasUpper:
		return ErrPasswordNoUpper
	case !hasLower:
		return ErrPasswordNoLower
	case !hasNumber:
		return ErrPasswordNoNumber
	case !hasSpecial:
		return ErrPasswordNoSpecial
	}

	if pv.commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
