package views

import (
	"strings"
	"unicode"
)

// sanitizeForTerminal drops the codepoints tcell cannot lay out reliably:
// emoji modifiers and joiners (U+1F3FB..U+1F3FF, U+200D, variation
// selectors) and control characters other than newline and tab, which
// would move the cursor. A thumbs-up with a skin tone becomes a plain
// thumbs-up that renders as one 2-cell glyph.
func sanitizeForTerminal(s string) string {
	return strings.Map(func(r rune) rune {
		if isProblematicRune(r) {
			return -1
		}
		return r
	}, s)
}

// singleLine sanitises s and folds line breaks into spaces, for table cells.
func singleLine(s string) string {
	s = sanitizeForTerminal(s)
	return strings.Join(strings.Fields(s), " ")
}

func isProblematicRune(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case unicode.IsControl(r):
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}
