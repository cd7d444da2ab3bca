package stream

import (
	"path/filepath"
	"strings"
)

// contentTypes covers the media containers smart TVs commonly accept.
// Anything else is served as an opaque byte stream.
var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".ts":   "video/mp2t",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
}

// contentType maps a file path to its MIME type by extension.
func contentType(path string) string {
	if mime, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}

	return "application/octet-stream"
}
