package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	replace   map[string]string
}

// MaxLength caps the slug at n runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator replaces the default "-".
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// Replace applies literal substitutions before slugifying, e.g. {"&": "and"}.
func Replace(pairs map[string]string) Option {
	return func(c *config) {
		c.replace = pairs
	}
}

// Make creates a lowercase URL-safe slug from s.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	for old, repl := range cfg.replace {
		s = strings.ReplaceAll(s, old, repl)
	}
	s = fold(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	n := 0
	for _, r := range strings.ToLower(s) {
		if !isASCIIAlnum(r) {
			pendingSep = n > 0
			continue
		}
		if pendingSep {
			if cfg.maxLength > 0 && n+len([]rune(cfg.separator))+1 > cfg.maxLength {
				break
			}
			b.WriteString(cfg.separator)
			n += len([]rune(cfg.separator))
			pendingSep = false
		}
		if cfg.maxLength > 0 && n >= cfg.maxLength {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// fold strips combining marks so "é" becomes "e". Letters without a
// decomposition are handled through a short table.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return ligatures.Replace(out)
}

var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O", "ł", "l", "Ł", "L", "đ", "d", "Đ", "D",
)

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
