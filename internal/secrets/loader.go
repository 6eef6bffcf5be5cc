// Package secrets resolves credentials given inline or through files.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. File wins over Value.
type Source struct {
	// Name is used in error messages.
	Name  string
	Value string
	File  string
	// Hint is appended to the "not configured" error, for example the
	// environment variable to set.
	Hint string
}

// Load returns the trimmed secret or an error when neither File nor Value
// hold a usable one.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	value := src.Value
	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		value = string(data)
	}

	secret := strings.TrimSpace(value)
	switch {
	case secret != "":
		return secret, nil
	case file != "":
		return "", fmt.Errorf("%s file %q is empty", name, file)
	case src.Hint != "":
		return "", fmt.Errorf("%s is not configured (%s)", name, src.Hint)
	default:
		return "", fmt.Errorf("%s is not configured", name)
	}
}
