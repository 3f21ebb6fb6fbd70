package transcript

import (
	"fmt"
	"strings"
)

// Format names one supported output representation.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
)

// DefaultFormats is what front ends request when the user names none.
var DefaultFormats = []Format{FormatTXT, FormatJSON, FormatSRT}

func FormatNames() []string {
	return []string{string(FormatTXT), string(FormatJSON), string(FormatSRT), string(FormatVTT)}
}

// Ext returns the file extension for the format, without a leading dot.
func (f Format) Ext() string {
	return string(f)
}

// ParseFormats validates user-supplied format names. Unknown names are
// rejected here so a bad request never reaches the model; duplicates are
// dropped while the first-seen order is kept. An empty input yields
// DefaultFormats.
func ParseFormats(names []string) ([]Format, error) {
	if len(names) == 0 {
		return append([]Format(nil), DefaultFormats...), nil
	}

	seen := make(map[Format]bool, len(names))
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		format := Format(strings.ToLower(strings.TrimSpace(name)))
		switch format {
		case FormatTXT, FormatJSON, FormatSRT, FormatVTT:
		default:
			return nil, fmt.Errorf("unknown output format %q (supported: %s)", name, strings.Join(FormatNames(), ", "))
		}

		if seen[format] {
			continue
		}
		seen[format] = true
		formats = append(formats, format)
	}

	return formats, nil
}
