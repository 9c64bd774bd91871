// Package version normalizes and compares tool version strings.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// IsDev reports whether raw identifies a development build rather than a
// published release.
func IsDev(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "dev"
}

// Normalize validates raw as an X.Y.Z version and returns it without a
// leading "v" and without surrounding whitespace.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "v")
	if trimmed == "" {
		return "", fmt.Errorf("version is empty")
	}
	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid version %q: expected X.Y.Z", raw)
	}
	for _, part := range parts {
		if err := validateSegment(part); err != nil {
			return "", fmt.Errorf("invalid version %q: %w", raw, err)
		}
	}
	return strings.Join(parts, "."), nil
}

// Compare returns -1, 0, or 1 ordering two normalized versions numerically.
func Compare(a string, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")
	for i := 0; i < 3 && i < len(aParts) && i < len(bParts); i++ {
		an, _ := strconv.Atoi(aParts[i])
		bn, _ := strconv.Atoi(bParts[i])
		if an < bn {
			return -1
		}
		if an > bn {
			return 1
		}
	}
	return 0
}

func validateSegment(segment string) error {
	if segment == "" {
		return fmt.Errorf("empty segment")
	}
	n, err := strconv.Atoi(segment)
	if err != nil {
		return fmt.Errorf("segment %q is not numeric", segment)
	}
	if n < 0 {
		return fmt.Errorf("segment %q is negative", segment)
	}
	return nil
}
