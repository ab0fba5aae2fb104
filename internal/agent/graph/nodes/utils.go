package nodes

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// maxAudioBytes bounds a single recorded utterance.
const maxAudioBytes = 10 << 20

var audioMIMETypes = map[string]string{
	"webm": "audio/webm",
	"wav":  "audio/wav",
	"mp3":  "audio/mp3",
	"mpeg": "audio/mp3",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"mp4":  "audio/mp4",
	"aac":  "audio/aac",
	"flac": "audio/flac",
}

// audioMIMEType maps a client audio format ("webm", "audio/wav") to a MIME type.
func audioMIMEType(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if strings.HasPrefix(f, "audio/") {
		return f
	}
	if mime, ok := audioMIMETypes[f]; ok {
		return mime
	}
	return "audio/webm"
}

// decodeAudio accepts raw base64 or a data URL.
func decodeAudio(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+len(";base64,"):]
	}
	if base64.StdEncoding.DecodedLen(len(s)) > maxAudioBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxAudioBytes)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return b, nil
}
