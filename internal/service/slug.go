package service

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxSlugBase = 60

// Slugify lowercases title and joins its letter and digit runs with hyphens.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pendingHyphen = b.Len() > 0
			continue
		}
		if b.Len() >= maxSlugBase {
			break
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "post"
	}
	return b.String()
}

// newSlug appends a random disambiguator so equal titles never collide by construction.
func newSlug(title string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return Slugify(title) + "-" + suffix
}
