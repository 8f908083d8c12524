package utils

import "strings"

// SafeFileName maps a hostname to a name safe to use as a single path
// element. Separators and traversal sequences are collapsed to dashes.
func SafeFileName(hostname string) string {
	name := strings.TrimSpace(hostname)
	name = strings.ReplaceAll(name, "..", "-")
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		" ", "_",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, ".-")
	if name == "" {
		name = "host"
	}
	return name
}
