package audio

import (
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an MP3 stream. The decoder always yields 16-bit little endian stereo.
func DecodeMP3(r io.Reader) (*Buffer, error) {
	dec, err := mp3.NewDecoder(r)

	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(dec)

	if err != nil {
		return nil, err
	}

	samples := make([]float32, len(data)/2)

	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768
	}

	return &Buffer{
		Samples: samples,

		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}
