// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Supported key files: openrouter-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envFallbacks maps secret key names to environment variables consulted
// when the key file is absent.
var envFallbacks = map[string]string{
	"openrouter-api-key": "OPENROUTER_API_KEY",
}

// Store holds loaded secrets keyed by file name.
type Store map[string]string

// Load reads all files in dir and returns a Store of filename to trimmed
// contents. A missing directory or missing files are not errors; Load
// returns an empty Store. Unreadable files produce a warning on stderr but
// do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Store)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the secret for key, falling back to the key's environment
// variable and then to fallback. The first non-empty value wins, with an
// explicit fallback taking priority so flags and config can override.
func (s Store) Get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := s[key]; ok {
		return v
	}
	if env, ok := envFallbacks[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// Keys returns the loaded secret names, for startup diagnostics. Values are
// never exposed.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
