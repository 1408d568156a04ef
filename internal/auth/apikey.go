package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyPrefix marks every API key issued by this service. The random part is
// generated and hashed by the storage layer when a key is created; keys are
// shown once at creation and only their hashes are retained.
const KeyPrefix = "sv_key_"

// WellFormed reports whether key could have been issued by this service.
// Presented keys without the prefix are rejected before any storage lookup.
func WellFormed(key string) bool {
	return len(key) > len(KeyPrefix) && strings.HasPrefix(key, KeyPrefix)
}

// WriteKeyFile stores a freshly issued key on disk, creating the parent
// directory when needed. Owner-only permissions; the server cannot reproduce
// the key afterwards, the file is the sole copy.
func WriteKeyFile(path, key string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("writing key file: %w", err)
	}
	return nil
}
