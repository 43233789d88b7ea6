package seed

import (
	"fmt"
	"strings"
	"unicode"

	"agora/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// factory generates field values that pass validation. Names carry the index
// so a run never collides with itself.
type factory struct {
	faker *gofakeit.Faker
}

func newFactory(seed int64) *factory {
	return &factory{faker: gofakeit.New(seed)}
}

func (f *factory) intn(n int) int {
	return f.faker.Number(0, n-1)
}

// chance reports true with the given percent probability.
func (f *factory) chance(percent int) bool {
	return f.faker.Number(1, 100) <= percent
}

func (f *factory) username(i int) string {
	base := identifier(f.faker.Username(), 10)
	if len(base) < 2 {
		base = "user"
	}
	return fmt.Sprintf("%s%d", strings.ToLower(base), i+1)
}

func (f *factory) communityName(i int) string {
	base := identifier(f.faker.HackerNoun(), 30)
	if base == "" {
		base = "community"
	}
	return fmt.Sprintf("%s-%d", base, i+1)
}

func (f *factory) description() string {
	return truncate(f.faker.HackerPhrase(), validation.DescriptionMaxLen)
}

func (f *factory) title() string {
	return truncate(strings.TrimSuffix(f.faker.Sentence(6), "."), validation.TitleMaxLen)
}

func (f *factory) content() string {
	return truncate(f.faker.Paragraph(1, 3, 10, " "), validation.PostContentMaxLen)
}

func (f *factory) comment() string {
	return truncate(f.faker.Sentence(10), validation.CommentContentMaxLen)
}

// identifier keeps the characters allowed in usernames and community names.
func identifier(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
		if b.Len() == max {
			break
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
