package importer

import (
	"crypto/rand"
	"math/big"
)

// Characters placeholder passwords are drawn from. Glyphs that are easily
// confused (0/O, 1/l/I, v/y and friends) are left out.
const (
	passwordDigits = "123456789"
	passwordLower  = "abcdefghjkmnpqrstuwxz"
	passwordUpper  = "ABCDEFGHJKMNPQRSTUWXZ"
	passwordOther  = "@#$%^&*"

	PasswordAlphabet = passwordDigits + passwordLower + passwordUpper + passwordOther
	PasswordLength   = 8
)

var alphabetSize = big.NewInt(int64(len(PasswordAlphabet)))

// GeneratePassword returns a random placeholder password for an imported
// account. Imported authors log in through a password reset.
func GeneratePassword() string {
	password := make([]byte, PasswordLength)
	for i := range password {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic(err)
		}
		password[i] = PasswordAlphabet[n.Int64()]
	}
	return string(password)
}
