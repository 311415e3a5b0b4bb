package audio

import (
	"bytes"
	"errors"
	"mime"
	"strings"
)

// Decode sniffs encoded audio and decodes WAV or MP3 content.
func Decode(data []byte, contentType string) (*Buffer, error) {
	if mediatype, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediatype
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return DecodeWAV(bytes.NewReader(data))

	case bytes.HasPrefix(data, []byte("ID3")), isMPEGFrame(data):
		return DecodeMP3(bytes.NewReader(data))

	case strings.Contains(contentType, "wav"):
		return DecodeWAV(bytes.NewReader(data))

	case contentType == "audio/mpeg", contentType == "audio/mp3":
		return DecodeMP3(bytes.NewReader(data))
	}

	return nil, errors.New("unsupported audio format: " + contentType)
}

func isMPEGFrame(data []byte) bool {
	return len(data) > 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}
