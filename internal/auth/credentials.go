package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials maps usernames to bcrypt hashes, as stored in login_credentials.json
type Credentials map[string]string

// LoadCredentials reads a credentials file
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	return creds, nil
}

// Verify checks username and password against the stored hash
func (c Credentials) Verify(username, password string) error {
	hash, ok := c[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(hash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
