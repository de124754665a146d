package locale

import "sort"

const Default = "en"

var names = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"zh": "Chinese (Simplified)",
	"ko": "Korean",
	"te": "Telugu",
	"ta": "Tamil",
	"de": "German",
	"ja": "Japanese",
}

// Name returns the display name for a locale code, falling back to English.
func Name(code string) string {
	if n, ok := names[code]; ok {
		return n
	}
	return names[Default]
}

func Supported(code string) bool {
	_, ok := names[code]
	return ok
}

// Codes returns the supported codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(names))
	for c := range names {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
