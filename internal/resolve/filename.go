package resolve

import (
	"fmt"
	"strings"
)

const forbiddenChars = `<>:"|?*\/`

// CleanFilename strips characters forbidden in common filesystems,
// replacing each with a hyphen, and trims surrounding whitespace.
// Applying it twice is a no-op.
func CleanFilename(name string) string {
	cleaned := name
	for _, c := range forbiddenChars {
		cleaned = strings.ReplaceAll(cleaned, string(c), "-")
	}
	return strings.TrimSpace(cleaned)
}

// ArtifactName builds the final PDF name for a run:
// "{name} – {program} – S{week}.pdf", sanitized. Given identical inputs the
// result is always identical.
func ArtifactName(fullName, program, targetDate string) string {
	return CleanFilename(fmt.Sprintf("%s – %s – %s.pdf", fullName, program, WeekLabel(targetDate)))
}

// ASCIIFallbackName degrades an artifact name for filesystems that reject
// the en-dash or spaces. Used on the second rename attempt only.
func ASCIIFallbackName(name string) string {
	return strings.NewReplacer("–", "-", " ", "_").Replace(name)
}
