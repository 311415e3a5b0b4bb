package audio

import (
	"bytes"
	"errors"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavFormatPCM = 1
)

// EncodeWAV writes the buffer as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, b *Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}

	enc := wav.NewEncoder(w, b.SampleRate, wavBitDepth, b.Channels, wavFormatPCM)

	data := make([]int, len(b.Samples))

	for i, s := range b.Samples {
		data[i] = toPCM16(s)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: b.Channels,
			SampleRate:  b.SampleRate,
		},

		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return err
	}

	return enc.Close()
}

// DecodeWAV reads an integer PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	dec := wav.NewDecoder(r)

	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}

	pcm, err := dec.FullPCMBuffer()

	if err != nil {
		return nil, err
	}

	depth := pcm.SourceBitDepth

	if depth <= 0 {
		depth = int(dec.BitDepth)
	}

	scale := float32(math.Pow(2, float64(depth-1)))

	samples := make([]float32, len(pcm.Data))

	for i, v := range pcm.Data {
		samples[i] = float32(v) / scale
	}

	return &Buffer{
		Samples: samples,

		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}

// WAV returns the encoded buffer as bytes.
func WAV(b *Buffer) ([]byte, error) {
	w := &seekBuffer{}

	if err := EncodeWAV(w, b); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

func toPCM16(s float32) int {
	if s > 1 {
		s = 1
	}

	if s < -1 {
		s = -1
	}

	return int(math.Round(float64(s) * math.MaxInt16))
}

// seekBuffer is an in-memory io.WriteSeeker for the wav encoder.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)

	if end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}

	copy(s.buf[s.pos:], p)
	s.pos = end

	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(s.pos) + offset
	case io.SeekEnd:
		pos = int64(len(s.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}

	if pos < 0 {
		return 0, errors.New("negative position")
	}

	s.pos = int(pos)
	return pos, nil
}

func (s *seekBuffer) Bytes() []byte {
	return bytes.Clone(s.buf)
}
