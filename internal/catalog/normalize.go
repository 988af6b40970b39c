package catalog

import (
	"strings"
	"unicode"
)

var noiseTokens = map[string]struct{}{
	"clean":      {},
	"deluxe":     {},
	"edition":    {},
	"edit":       {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"mono":       {},
	"radio":      {},
	"remaster":   {},
	"remastered": {},
	"stereo":     {},
	"version":    {},
}

// foldTitle is the exact-match key: lower case with whitespace collapsed.
func foldTitle(input string) string {
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

// tokenize lower-cases the input, drops bracketed segments and edition noise,
// and returns the distinct remaining tokens in first-seen order.
func tokenize(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	lower := strings.ToLower(input)
	filtered := stripBracketedSegments(lower)
	fields := strings.Fields(cleanSeparators(filtered))

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if _, drop := noiseTokens[token]; drop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	return tokens
}

func stripBracketedSegments(input string) string {
	var out strings.Builder
	depth := 0
	for _, r := range input {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				out.WriteRune(r)
			}
		}
	}

	return out.String()
}

func cleanSeparators(input string) string {
	var out strings.Builder
	lastSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
			lastSpace = false
			continue
		}
		// apostrophes join contractions ("don't" -> "dont")
		if r == '\'' || r == '’' {
			continue
		}
		if !lastSpace {
			out.WriteRune(' ')
			lastSpace = true
		}
	}

	return out.String()
}

// parseArtists reads an artists cell. Bracketed python/JSON style lists
// ("['A', 'B']") are split on their quoted items; anything else is split on ';'.
func parseArtists(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		return parseQuotedList(raw[1 : len(raw)-1])
	}

	parts := strings.Split(raw, ";")
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	return artists
}

func parseQuotedList(body string) []string {
	var (
		artists []string
		current strings.Builder
		quote   rune
		escaped bool
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			artists = append(artists, s)
		}
		current.Reset()
	}

	for _, r := range body {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != 0:
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote == 0 && r == ',':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return artists
}
