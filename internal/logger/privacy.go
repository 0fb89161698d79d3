package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

const defaultHashSalt = "default-salt-change-in-production"

var hashSalt = defaultHashSalt

// InitHashSalt loads the salt used for user id hashing from LOG_HASH_SALT.
// It logs a warning and keeps the built-in salt when the variable is unset.
func InitHashSalt() {
	salt := os.Getenv("LOG_HASH_SALT")
	if salt == "" {
		Log.Warn().Msg("LOG_HASH_SALT is not set, using the default salt")
		hashSalt = defaultHashSalt
		return
	}
	hashSalt = salt
}

// InitHashSaltForTesting sets a fixed salt.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashUserID creates a privacy-preserving hash of a user ID.
func HashUserID(userID int64) string {
	data := fmt.Sprintf("%d:%s", userID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeTitle redacts an expense title or note, keeping only its shape.
func SanitizeTitle(title string) string {
	if title == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>",
		len(strings.Fields(title)), utf8.RuneCountInString(title))
}

// SanitizeText shows at most a three character prefix of longer text.
func SanitizeText(text string) string {
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "<empty>"
	case n <= 10:
		return fmt.Sprintf("<%d chars>", n)
	default:
		return fmt.Sprintf("%s...<%d chars>", string([]rune(text)[:3]), n)
	}
}
