package discuss_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/nasermirzaei89/labbook/discuss"
)

func TestPrepareContent_Properties(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("stored content never carries markup other than line breaks", prop.ForAll(
		func(raw string) bool {
			content, err := discuss.PrepareContent(raw)
			if err != nil {
				return true
			}

			return !strings.Contains(strings.ReplaceAll(content, "<br />", ""), "<")
		},
		gen.AnyString(),
	))

	properties.Property("plain letters are stored unchanged", prop.ForAll(
		func(raw string) bool {
			content, err := discuss.PrepareContent(raw)
			if err != nil {
				return false
			}

			return content == raw
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= discuss.MinContentLength }),
	))

	properties.Property("each line of a multi-line comment ends with a break", prop.ForAll(
		func(first, second string) bool {
			content, err := discuss.PrepareContent(first + "\r\n" + second)
			if err != nil {
				return false
			}

			return content == first+"<br />\n"+second
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("one character is always rejected", prop.ForAll(
		func(r rune) bool {
			_, err := discuss.PrepareContent(string(r))

			return err != nil
		},
		gen.Rune(),
	))

	properties.Property("one markup-significant character is always rejected", prop.ForAll(
		func(r rune) bool {
			_, err := discuss.PrepareContent(string(r))

			return err != nil
		},
		gen.OneConstOf('&', '<', '>', '\'', '"'),
	))

	properties.TestingRun(t)
}
