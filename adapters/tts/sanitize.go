package tts

import (
	"strings"
	"unicode"
)

// SanitizeForSpeech strips emoji and markdown emphasis characters so the
// synthesizer never tries to pronounce them.
func SanitizeForSpeech(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r == '*' || r == '_' || r == '`' || r == '#' || r == '~':
			// markdown emphasis / heading / strikethrough markers
		case unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r):
			// symbols and emoji
		case r >= 0x1F000 && r <= 0x1FFFF:
			// supplementary emoji planes
		case r == 0xFE0F || r == 0x200D:
			// variation selector and zero-width joiner
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
