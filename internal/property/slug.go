package property

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const slugSuffixLen = 8

// GenerateSlug builds a URL slug from a title plus a random suffix so that
// two listings with the same title never collide.
func GenerateSlug(title string) (string, error) {
	base := ""
	if strings.TrimSpace(title) != "" {
		normalized, err := slug.Normalize(title)
		if err != nil {
			return "", fmt.Errorf("normalizing slug for %q: %w", title, err)
		}
		base = normalized
	}
	if base == "" {
		base = "property"
	}
	return base + "-" + slugSuffix(), nil
}

func slugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen]
}
