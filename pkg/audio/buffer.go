package audio

import (
	"errors"
	"math"
	"time"
)

// Buffer is decoded PCM audio. Samples are interleaved and nominally within [-1, 1].
type Buffer struct {
	Samples []float32

	SampleRate int
	Channels   int
}

func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}

	return len(b.Samples) / b.Channels
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

func (b *Buffer) Validate() error {
	if b == nil {
		return errors.New("no audio")
	}

	if b.SampleRate <= 0 {
		return errors.New("invalid sample rate")
	}

	if b.Channels <= 0 {
		return errors.New("invalid channel count")
	}

	if len(b.Samples) == 0 {
		return errors.New("empty audio")
	}

	if len(b.Samples)%b.Channels != 0 {
		return errors.New("sample count is not a multiple of the channel count")
	}

	return nil
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32

	for _, s := range b.Samples {
		if v := float32(math.Abs(float64(s))); v > peak {
			peak = v
		}
	}

	return peak
}

// NormalizePeak scales the buffer so that its peak is 1 when the peak exceeds 1.
// Quieter audio is left untouched.
func (b *Buffer) NormalizePeak() {
	peak := b.Peak()

	if peak <= 1 {
		return
	}

	for i := range b.Samples {
		b.Samples[i] /= peak
	}
}

// Concat joins buffers in order. All buffers must share sample rate and channel count.
func Concat(buffers ...*Buffer) (*Buffer, error) {
	if len(buffers) == 0 {
		return nil, errors.New("no audio")
	}

	first := buffers[0]

	if first == nil {
		return nil, errors.New("no audio")
	}

	total := 0

	for _, b := range buffers {
		if b == nil {
			return nil, errors.New("no audio")
		}

		if b.SampleRate != first.SampleRate {
			return nil, errors.New("sample rate mismatch")
		}

		if b.Channels != first.Channels {
			return nil, errors.New("channel count mismatch")
		}

		total += len(b.Samples)
	}

	samples := make([]float32, 0, total)

	for _, b := range buffers {
		samples = append(samples, b.Samples...)
	}

	return &Buffer{
		Samples: samples,

		SampleRate: first.SampleRate,
		Channels:   first.Channels,
	}, nil
}
