package catalog

import (
	"strconv"
	"strings"

	"kampus/internal/models"
)

// DeriveSlug turns a free-text institution name into its durable identity key:
// lowercase, every run of characters outside [a-z0-9] collapsed to a single
// hyphen, edge hyphens trimmed. The rule is byte-wise and locale-independent so
// the same name always yields the same slug. Non-ASCII letters are stripped
// rather than transliterated, matching how partner IDs were minted historically;
// changing that would break every persisted partner URL.
//
// Names that reduce to an empty slug (empty input, punctuation only, fully
// non-ASCII) are rejected: an empty identity key would silently merge unrelated
// institutions.
func DeriveSlug(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", models.NewValidationError("partner name is empty")
	}

	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		} else {
			pendingSep = true
		}
	}

	slug := b.String()
	if slug == "" {
		return "", models.NewValidationError("partner name " + strconv.Quote(name) + " produces an empty slug")
	}
	return slug, nil
}
