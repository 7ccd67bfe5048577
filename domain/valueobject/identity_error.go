package valueobject

import "fmt"

// Identity error codes, named after the identity-store failures clients
// already map to field messages.
const (
	CodeDuplicateUserName               = "DuplicateUserName"
	CodeDuplicateEmail                  = "DuplicateEmail"
	CodeInvalidEmail                    = "InvalidEmail"
	CodeInvalidUserName                 = "InvalidUserName"
	CodeInvalidRoleName                 = "InvalidRoleName"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
)

// IdentityError is one reason user creation was refused. Several can be
// returned together.
type IdentityError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e IdentityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func DuplicateUserName(userName string) IdentityError {
	return IdentityError{
		Code:        CodeDuplicateUserName,
		Description: fmt.Sprintf("Username '%s' is already taken.", userName),
	}
}

func DuplicateEmail(email string) IdentityError {
	return IdentityError{
		Code:        CodeDuplicateEmail,
		Description: fmt.Sprintf("Email '%s' is already taken.", email),
	}
}

func InvalidEmail(email string) IdentityError {
	return IdentityError{
		Code:        CodeInvalidEmail,
		Description: fmt.Sprintf("Email '%s' is invalid.", email),
	}
}

func InvalidRoleName(role string) IdentityError {
	return IdentityError{
		Code:        CodeInvalidRoleName,
		Description: fmt.Sprintf("Role name '%s' is invalid.", role),
	}
}
