package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptCost            = 16384
	scryptBlockSize       = 8
	scryptParallelization = 1
	scryptKeyLen          = 64
)

var ErrInvalidEmailOrPassword = fmt.Errorf("invalid email or password")

func encodePassword(password string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(buf)
	dk, err := scrypt.Key([]byte(password), []byte(salt), scryptCost, scryptBlockSize, scryptParallelization, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return salt + ":" + hex.EncodeToString(dk), nil
}

func verifyPassword(storedHash, password string) error {
	parts := strings.Split(storedHash, ":")
	if len(parts) != 2 {
		return ErrInvalidEmailOrPassword
	}
	salt := parts[0]
	dk, err := scrypt.Key([]byte(password), []byte(salt), scryptCost, scryptBlockSize, scryptParallelization, scryptKeyLen)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(hex.EncodeToString(dk))) != 1 {
		return ErrInvalidEmailOrPassword
	}
	return nil
}
