package calculator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Edit is the reformatted text of a numeric field and where the caret
// should land afterwards. Cursor counts characters, not bytes.
type Edit struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// ParseGrouped parses a number that may carry thousands separators.
// Empty input parses as zero.
func ParseGrouped(text string) (float64, error) {
	clean := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if clean == "" || clean == "." {
		return 0, nil
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return v, nil
}

// Reformat normalizes user input into a grouped number and shifts the
// caret by the change in length so it stays next to the digit the user
// was editing.
//
// Anything other than digits and the first decimal point is dropped.
// The fractional part is kept verbatim (including a trailing point).
func Reformat(text string, cursor int) Edit {
	var intPart, fracPart strings.Builder
	seenPoint := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			if seenPoint {
				fracPart.WriteRune(r)
			} else {
				intPart.WriteRune(r)
			}
		case r == '.' && !seenPoint:
			seenPoint = true
		}
	}

	digits := strings.TrimLeft(intPart.String(), "0")
	if digits == "" && (intPart.Len() > 0 || seenPoint) {
		digits = "0"
	}

	out := group(digits)
	if seenPoint {
		out += "." + fracPart.String()
	}

	oldLen := utf8.RuneCountInString(text)
	newLen := utf8.RuneCountInString(out)

	pos := cursor + (newLen - oldLen)
	if pos < 0 {
		pos = 0
	}
	if pos > newLen {
		pos = newLen
	}

	return Edit{Text: out, Cursor: pos}
}

// group inserts a comma every three digits from the right.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
