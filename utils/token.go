package utils

import (
	"github.com/google/uuid"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID reports whether s is a canonical UUID string.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
