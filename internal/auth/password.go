package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of plain for storage; cost comes from
// configuration so tests can use the cheap minimum.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks plain against a stored hash.
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
