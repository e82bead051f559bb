package dsn

import "regexp"

var (
	reURIPassword   = regexp.MustCompile(`(://[^:/@\s]*):([^\s]+)@`)
	reMySQLPassword = regexp.MustCompile(`^([^:@/\s]+):([^\s]+)@tcp\(`)
	reKeyPassword   = regexp.MustCompile(`(?i)(password=)([^\s&;]+)`)
)

// Mask hides passwords in URIs and driver DSNs so they can be logged.
func Mask(s string) string {
	out := reURIPassword.ReplaceAllString(s, "$1:***@")
	out = reMySQLPassword.ReplaceAllString(out, "$1:***@tcp(")
	out = reKeyPassword.ReplaceAllString(out, "$1***")
	return out
}
