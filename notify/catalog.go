package notify

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	subjectKey = "[%s] New comment posted"
	bodyKey    = "Hi. %s left a comment on your experiment. Have a look: %s"
	footerKey  = "Sent from %s"
)

var supportedLanguages = []language.Tag{
	language.English,
	language.French,
}

var translations = map[language.Tag]map[string]string{
	language.French: {
		subjectKey: "[%s] Nouveau commentaire",
		bodyKey:    "Bonjour. %s a laissé un commentaire sur votre expérience. Voir : %s",
		footerKey:  "Envoyé depuis %s",
	},
}

func newCatalog() (catalog.Catalog, error) {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))

	for _, key := range []string{subjectKey, bodyKey, footerKey} {
		err := builder.SetString(language.English, key, key)
		if err != nil {
			return nil, fmt.Errorf("failed to add english message %q: %w", key, err)
		}
	}

	for tag, messages := range translations {
		for key, translated := range messages {
			err := builder.SetString(tag, key, translated)
			if err != nil {
				return nil, fmt.Errorf("failed to add %s message %q: %w", tag, key, err)
			}
		}
	}

	return builder, nil
}

type UnsupportedLanguageError struct {
	Language string
}

func (err UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", err.Language)
}

// newPrinter picks the closest supported language. An empty lang means English.
func newPrinter(lang string) (*message.Printer, error) {
	if lang == "" {
		lang = language.English.String()
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return nil, &UnsupportedLanguageError{Language: lang}
	}

	_, index, confidence := language.NewMatcher(supportedLanguages).Match(tag)
	if confidence == language.No {
		return nil, &UnsupportedLanguageError{Language: lang}
	}

	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}

	return message.NewPrinter(supportedLanguages[index], message.Catalog(cat)), nil
}
