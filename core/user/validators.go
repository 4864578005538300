package user

import "github.com/go-playground/validator/v10"

var (
	roleTag  = "role"
	roleText = "invalid role"
)

// roleValidation only allows known roles.
func roleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
