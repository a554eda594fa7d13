package usecase

import "strings"

var markup = strings.NewReplacer("*", "", "_", "", "~", "", "`", "")

// Sanitize removes the markdown control characters * _ ~ ` and nothing else.
func Sanitize(text string) string {
	return markup.Replace(text)
}
