package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minNameLength     = 3
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

var (
	nameRules     = []validation.Rule{validation.Required, validation.RuneLength(minNameLength, 0)}
	emailRules    = []validation.Rule{validation.Required, is.Email}
	passwordRules = []validation.Rule{validation.Required, validation.Length(minPasswordLength, maxPasswordLength)}
)

// normalizeEmail applies the storage case policy: trimmed and lower-cased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validationError folds field errors into common.ErrorValidation while keeping
// the ozzo Errors reachable through errors.As.
func validationError(errs validation.Errors) error {
	if err := errs.Filter(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return nil
}
