package user

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"mydiary/internal/domain/protection"
)

var (
	ErrBadLogin     = errors.New("bad login")
	ErrWeakPassword = errors.New("weak password")
)

// Rules задают требования к учётным данным аккаунта.
// Верхняя граница пароля общая с паролями записей (protection.MaxPasswordLen).
type Rules struct {
	MinLoginLen    int
	MaxLoginLen    int
	MinPasswordLen int
	// MinClasses: сколько разных классов символов нужно в пароле
	// (строчные, заглавные, цифры, остальное).
	MinClasses int
}

func DefaultRules() Rules {
	return Rules{
		MinLoginLen:    3,
		MaxLoginLen:    32,
		MinPasswordLen: 8,
		MinClasses:     3,
	}
}

type Validator interface {
	ValidateRegister(login, password string) error
	ValidateLogin(login string) error
}

type RulesValidator struct {
	rules Rules
}

func NewValidator(rules Rules) *RulesValidator {
	return &RulesValidator{rules: rules}
}

func (v *RulesValidator) ValidateRegister(login, password string) error {
	if err := v.ValidateLogin(login); err != nil {
		return err
	}
	return v.validatePassword(login, password)
}

// ValidateLogin: длина в символах, первый символ буква или цифра, дальше ещё '_', '-', '.'.
func (v *RulesValidator) ValidateLogin(login string) error {
	n := utf8.RuneCountInString(login)
	if n < v.rules.MinLoginLen || n > v.rules.MaxLoginLen {
		return fmt.Errorf("%w: length must be %d..%d characters", ErrBadLogin, v.rules.MinLoginLen, v.rules.MaxLoginLen)
	}

	for i, r := range login {
		alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
		if i == 0 && !alnum {
			return fmt.Errorf("%w: must start with a letter or digit", ErrBadLogin)
		}
		if !alnum && r != '_' && r != '-' && r != '.' {
			return fmt.Errorf("%w: unexpected character %q", ErrBadLogin, r)
		}
	}

	return nil
}

func (v *RulesValidator) validatePassword(login, password string) error {
	if err := protection.ValidatePassword(password); err != nil {
		return err
	}

	if utf8.RuneCountInString(password) < v.rules.MinPasswordLen {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, v.rules.MinPasswordLen)
	}
	if got := charClasses(password); got < v.rules.MinClasses {
		return fmt.Errorf("%w: uses %d of %d required character classes", ErrWeakPassword, got, v.rules.MinClasses)
	}
	if strings.Contains(strings.ToLower(password), strings.ToLower(login)) {
		return fmt.Errorf("%w: contains the login", ErrWeakPassword)
	}

	return nil
}

func charClasses(s string) int {
	var lower, upper, digit, other int
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = 1
		case unicode.IsUpper(r):
			upper = 1
		case unicode.IsDigit(r):
			digit = 1
		default:
			other = 1
		}
	}
	return lower + upper + digit + other
}
