package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvString returns the value of the named environment variable and
// whether it was set (empty values count as unset).
func EnvString(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses the named environment variable as an integer.
func EnvInt(name string) (int, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return parsed, true, nil
}

// EnvBool parses the named environment variable as a boolean.
func EnvBool(name string) (bool, bool, error) {
	value, ok := EnvString(name)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, false, fmt.Errorf("%s must be a boolean: %w", name, err)
	}
	return parsed, true, nil
}
