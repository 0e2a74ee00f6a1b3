// Package fingerprint derives stable cache keys from text content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/botirk38/embedcache/types"
)

// Normalize trims text and collapses every internal whitespace run to a single space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Fingerprint returns the cache key for text polished as fieldType.
func Fingerprint(text string, fieldType types.FieldType) (types.Key, error) {
	if !fieldType.Valid() {
		return "", fmt.Errorf("unknown field type %q: %w", fieldType, types.ErrInvalidInput)
	}
	normalized := Normalize(text)
	if normalized == "" {
		return "", fmt.Errorf("text is empty: %w", types.ErrInvalidInput)
	}
	return keyOf(normalized, fieldType), nil
}

func keyOf(normalized string, fieldType types.FieldType) types.Key {
	h := sha256.New()
	h.Write([]byte(fieldType))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	return types.Key(hex.EncodeToString(h.Sum(nil)))
}
