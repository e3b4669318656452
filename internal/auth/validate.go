package auth

import (
	"regexp"
	"strings"
)

// User-facing validation messages, in the product's language.
const (
	msgNameRequired    = "Nome é obrigatório"
	msgEmailRequired   = "Email é obrigatório"
	msgEmailInvalid    = "Email inválido"
	msgPasswordTooWeak = "Mínimo 6 caracteres"
	msgConfirmRequired = "Confirmação necessária"
	msgConfirmMismatch = "Senhas não conferem"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

func validateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return msgNameRequired
	}
	return ""
}

func validateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return msgEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return msgEmailInvalid
	}
	return ""
}

func validatePassword(password string) string {
	if len(password) < minPasswordLen {
		return msgPasswordTooWeak
	}
	return ""
}

func validateConfirmPassword(password, confirm string) string {
	if strings.TrimSpace(confirm) == "" {
		return msgConfirmRequired
	}
	if password != confirm {
		return msgConfirmMismatch
	}
	return ""
}

// ValidateLogin checks the login form. A nil return means the flow may
// proceed.
func ValidateLogin(email, password string) FieldErrors {
	errs := FieldErrors{}
	if msg := validateEmail(email); msg != "" {
		errs["email"] = msg
	}
	if msg := validatePassword(password); msg != "" {
		errs["password"] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateRegistration checks the registration form.
func ValidateRegistration(name, email, password, confirm string) FieldErrors {
	errs := FieldErrors{}
	if msg := validateName(name); msg != "" {
		errs["name"] = msg
	}
	if msg := validateEmail(email); msg != "" {
		errs["email"] = msg
	}
	if msg := validatePassword(password); msg != "" {
		errs["password"] = msg
	}
	if msg := validateConfirmPassword(password, confirm); msg != "" {
		errs["confirmPassword"] = msg
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateForgotPassword checks the reset form.
func ValidateForgotPassword(email string) FieldErrors {
	if msg := validateEmail(email); msg != "" {
		return FieldErrors{"email": msg}
	}
	return nil
}
