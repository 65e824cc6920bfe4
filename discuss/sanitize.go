package discuss

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MinContentLength is the minimum length of stored comment content, in characters.
const MinContentLength = 2

var (
	strictPolicy = bluemonday.StrictPolicy()

	newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// PrepareContent strips markup from raw, converts line breaks to <br /> and
// enforces MinContentLength on the text as it will be displayed.
func PrepareContent(raw string) (string, error) {
	content := strictPolicy.Sanitize(strings.TrimSpace(raw))
	content = strings.TrimSpace(content)

	content = newlineReplacer.Replace(content)
	content = strings.ReplaceAll(content, "\n", "<br />\n")

	if displayLength(content) < MinContentLength {
		return "", &InputTooShortError{Min: MinContentLength}
	}

	return content, nil
}

// displayLength counts the characters a reader sees, so escaped entities
// count once and inserted line break tags not at all.
func displayLength(content string) int {
	return utf8.RuneCountInString(html.UnescapeString(strings.ReplaceAll(content, "<br />", "")))
}
