package profiles

import "golang.org/x/crypto/bcrypt"

// Profile represents one tenant of the gateway. Each profile owns an
// independent messaging session, a chatbot record and a credential bundle.
type Profile struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	EnterpriseID string `json:"enterprise_id,omitempty"`
	PasswordHash string `json:"-"`
	Available    bool   `json:"available"`
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
