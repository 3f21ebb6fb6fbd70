package media

import (
	"path/filepath"
	"strings"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
	".wma":  true,
}

// IsVideoPath reports whether the path carries a known video container
// extension, meaning audio extraction is needed before transcription.
func IsVideoPath(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudioPath reports whether the path carries a known audio-only extension.
func IsAudioPath(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsMediaPath reports whether the path looks like any supported input.
func IsMediaPath(path string) bool {
	return IsVideoPath(path) || IsAudioPath(path)
}
