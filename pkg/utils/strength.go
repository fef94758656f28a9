package utils

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// ZxcvbnEstimator scores password guessability on the 0-4 scale using the
// zxcvbn entropy model.
type ZxcvbnEstimator struct{}

// Score returns the 0-4 guessability score for password.
func (ZxcvbnEstimator) Score(password string) int {
	return zxcvbn.PasswordStrength(password, nil).Score
}
