package audio

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))

	return v
}

func TestParseTensor(t *testing.T) {
	t.Run("nested arrays", func(t *testing.T) {
		tensor, err := ParseTensor(decodeJSON(t, `[[[0.1, 0.2, 0.3]]]`))
		require.NoError(t, err)

		require.Equal(t, []int{1, 1, 3}, tensor.Shape)
		require.Len(t, tensor.Data, 3)
	})

	t.Run("ragged arrays", func(t *testing.T) {
		_, err := ParseTensor(decodeJSON(t, `[[0.1, 0.2], [0.3]]`))
		require.Error(t, err)
	})

	t.Run("strings", func(t *testing.T) {
		_, err := ParseTensor(decodeJSON(t, `["a"]`))
		require.Error(t, err)
	})
}

func TestSqueeze(t *testing.T) {
	tensor := &Tensor{Shape: []int{1, 4, 1}, Data: []float32{1, 2, 3, 4}}

	require.Equal(t, []int{4}, tensor.Squeeze().Shape)
	require.Equal(t, []int{4, 1}, tensor.SqueezeLeading().Shape)
}

func TestTranspose(t *testing.T) {
	// two channels by three frames
	tensor := &Tensor{Shape: []int{2, 3}, Data: []float32{1, 2, 3, 4, 5, 6}}

	result, err := tensor.Transpose()
	require.NoError(t, err)

	require.Equal(t, []int{3, 2}, result.Shape)
	require.Equal(t, []float32{1, 4, 2, 5, 3, 6}, result.Data)

	buf, err := result.Buffer(16000)
	require.NoError(t, err)

	require.Equal(t, 2, buf.Channels)
	require.Equal(t, 3, buf.Frames())
}

func TestConcat(t *testing.T) {
	a := &Buffer{Samples: []float32{0.1, 0.2}, SampleRate: 24000, Channels: 1}
	b := &Buffer{Samples: []float32{0.3}, SampleRate: 24000, Channels: 1}

	result, err := Concat(a, b)
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, result.Samples)

	_, err = Concat(a, &Buffer{Samples: []float32{0.1}, SampleRate: 16000, Channels: 1})
	require.Error(t, err)

	_, err = Concat()
	require.Error(t, err)
}

func TestNormalizePeak(t *testing.T) {
	loud := &Buffer{Samples: []float32{2, -4, 1}, SampleRate: 24000, Channels: 1}
	loud.NormalizePeak()

	require.Equal(t, []float32{0.5, -1, 0.25}, loud.Samples)

	quiet := &Buffer{Samples: []float32{0.5, -0.25}, SampleRate: 24000, Channels: 1}
	quiet.NormalizePeak()

	require.Equal(t, []float32{0.5, -0.25}, quiet.Samples)
}

func TestWAVRoundTrip(t *testing.T) {
	samples := make([]float32, 2400)

	for i := range samples {
		samples[i] = float32(i%100)/100 - 0.5
	}

	input := &Buffer{Samples: samples, SampleRate: 24000, Channels: 1}

	data, err := WAV(input)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("RIFF")))

	output, err := Decode(data, "audio/wav")
	require.NoError(t, err)

	require.Equal(t, 24000, output.SampleRate)
	require.Equal(t, 1, output.Channels)
	require.Len(t, output.Samples, len(samples))
	require.Equal(t, 100*time.Millisecond, output.Duration())

	for i := range samples {
		require.InDelta(t, samples[i], output.Samples[i], 0.001)
	}
}

func TestEncodeEmpty(t *testing.T) {
	_, err := WAV(&Buffer{SampleRate: 24000, Channels: 1})
	require.Error(t, err)
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode([]byte("not audio"), "text/plain")
	require.Error(t, err)
}
