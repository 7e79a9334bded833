package application

import "strings"

// Exclaim gives every reply an enthusiastic ending: a reply already ending in
// "!" is kept, otherwise one trailing "." is dropped and "!" appended.
func Exclaim(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "!") {
		return text
	}
	return strings.TrimSuffix(text, ".") + "!"
}
