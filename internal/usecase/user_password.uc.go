package usecase

import (
	"unicode/utf8"

	"user-service/pkg/utils"
	"user-service/pkg/xerrors"
)

// Hard ceiling on password length; not configurable.
const maxPasswordLength = 512

// CheckPassword enforces the password policy. minStrength overrides the
// configured default when non-nil; an explicit 0 is honored, it is not
// treated as unset.
func (uc *UserUsecase) CheckPassword(password string, minStrength *int) error {
	if !utils.ValidatePasswordFormat(password) {
		return xerrors.ErrInvalidPassword
	}
	// Length limits count characters, not bytes.
	length := utf8.RuneCountInString(password)
	if length < uc.policy.MinPasswordLength {
		return xerrors.ErrPasswordTooShort
	}
	if length > maxPasswordLength {
		return xerrors.ErrPasswordTooLong
	}

	min := uc.policy.MinPasswordStrength
	if minStrength != nil {
		min = *minStrength
	}
	if uc.strength.Score(password) < min {
		return xerrors.ErrWeakPassword
	}
	return nil
}
