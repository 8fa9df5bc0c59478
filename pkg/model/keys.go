package model

import (
	"fmt"
	"strings"
)

// Key builds the composite key identifying one piece of content across all
// per-item domains. The format is "{source}+{id}".
func Key(source, id string) string {
	return source + "+" + id
}

// ParseKey splits a composite key back into its source and id parts. The id
// may itself contain '+', so only the first separator is significant.
func ParseKey(key string) (source, id string, err error) {
	source, id, ok := strings.Cut(key, "+")
	if !ok || source == "" || id == "" {
		return "", "", fmt.Errorf("invalid composite key %q", key)
	}
	return source, id, nil
}
