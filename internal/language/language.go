// Package language validates and labels the language hint sent with each
// transcription request.
package language

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a transcription language supported by Whisper.
type Language struct {
	Code       string // ISO 639-1 code, empty for auto-detect
	Name       string // English name
	NativeName string
}

// Auto lets the service detect the spoken language.
var Auto = Language{Code: "", Name: "Auto-detect"}

// whisperCodes are the ISO 639-1 codes Whisper accepts as a language hint.
var whisperCodes = []string{
	"af", "ar", "az", "be", "bg", "bs", "ca", "cs", "cy", "da", "de", "el",
	"en", "es", "et", "fa", "fi", "fr", "gl", "he", "hi", "hr", "hu", "hy",
	"id", "is", "it", "ja", "kk", "kn", "ko", "lt", "lv", "mi", "mk", "mr",
	"ms", "ne", "nl", "no", "pl", "pt", "ro", "ru", "sk", "sl", "sr", "sv",
	"sw", "ta", "th", "tl", "tr", "uk", "ur", "vi", "zh",
}

// Normalize maps user input such as "EN", "en_US" or "pt-BR" to the bare
// ISO 639-1 code the service expects. Empty and "auto" mean auto-detect.
func Normalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, "auto") {
		return "", nil
	}

	tag, err := language.Parse(strings.ReplaceAll(input, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", input, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("invalid language %q", input)
	}

	code := base.String()
	if !slices.Contains(whisperCodes, code) {
		return "", fmt.Errorf("language %q is not supported for transcription", input)
	}
	return code, nil
}

// IsValidCode reports whether code normalizes to a supported language.
func IsValidCode(code string) bool {
	_, err := Normalize(code)
	return err == nil
}

// FromCode returns the Language for code, or Auto if it is not supported.
func FromCode(code string) Language {
	normalized, err := Normalize(code)
	if err != nil || normalized == "" {
		return Auto
	}
	tag := language.Make(normalized)
	return Language{
		Code:       normalized,
		Name:       display.English.Tags().Name(tag),
		NativeName: display.Self.Name(tag),
	}
}

// List returns all supported languages sorted by English name.
func List() []Language {
	result := make([]Language, 0, len(whisperCodes))
	for _, code := range whisperCodes {
		result = append(result, FromCode(code))
	}
	slices.SortFunc(result, func(a, b Language) int { return strings.Compare(a.Name, b.Name) })
	return result
}

// Codes returns all supported codes.
func Codes() []string {
	return slices.Clone(whisperCodes)
}

// Label returns a human-readable label, e.g. "Spanish (es)".
func Label(code string) string {
	lang := FromCode(code)
	if lang.Code == "" {
		return Auto.Name
	}
	return fmt.Sprintf("%s (%s)", lang.Name, lang.Code)
}
