package audio

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tensor is a dense row-major array decoded from a backend result.
type Tensor struct {
	Shape []int
	Data  []float32
}

// ParseTensor converts a decoded JSON value (numbers and nested arrays) into a tensor.
func ParseTensor(v any) (*Tensor, error) {
	switch val := v.(type) {
	case *Tensor:
		return val, nil

	case []float32:
		return &Tensor{Shape: []int{len(val)}, Data: val}, nil

	case []float64:
		data := make([]float32, len(val))

		for i, f := range val {
			data[i] = float32(f)
		}

		return &Tensor{Shape: []int{len(val)}, Data: data}, nil
	}

	t := &Tensor{}

	shape, err := measure(v)

	if err != nil {
		return nil, err
	}

	t.Shape = shape

	size := 1

	for _, d := range shape {
		size *= d
	}

	t.Data = make([]float32, 0, size)

	if err := t.fill(v, 0); err != nil {
		return nil, err
	}

	return t, nil
}

func measure(v any) ([]int, error) {
	switch val := v.(type) {
	case float64, float32, int, int64, json.Number:
		return []int{}, nil

	case []any:
		if len(val) == 0 {
			return []int{0}, nil
		}

		inner, err := measure(val[0])

		if err != nil {
			return nil, err
		}

		return append([]int{len(val)}, inner...), nil

	default:
		return nil, fmt.Errorf("unsupported tensor element %T", v)
	}
}

func (t *Tensor) fill(v any, depth int) error {
	switch val := v.(type) {
	case float64:
		return t.push(float32(val), depth)

	case float32:
		return t.push(val, depth)

	case int:
		return t.push(float32(val), depth)

	case int64:
		return t.push(float32(val), depth)

	case json.Number:
		f, err := val.Float64()

		if err != nil {
			return err
		}

		return t.push(float32(f), depth)

	case []any:
		if depth >= len(t.Shape) || len(val) != t.Shape[depth] {
			return errors.New("ragged tensor")
		}

		for _, item := range val {
			if err := t.fill(item, depth+1); err != nil {
				return err
			}
		}

		return nil

	default:
		return fmt.Errorf("unsupported tensor element %T", v)
	}
}

func (t *Tensor) push(f float32, depth int) error {
	if depth != len(t.Shape) {
		return errors.New("ragged tensor")
	}

	t.Data = append(t.Data, f)
	return nil
}

func (t *Tensor) Dims() int {
	return len(t.Shape)
}

// Squeeze drops every dimension of size one.
func (t *Tensor) Squeeze() *Tensor {
	shape := make([]int, 0, len(t.Shape))

	for _, d := range t.Shape {
		if d != 1 {
			shape = append(shape, d)
		}
	}

	if len(shape) == 0 && len(t.Data) > 0 {
		shape = []int{len(t.Data)}
	}

	return &Tensor{Shape: shape, Data: t.Data}
}

// SqueezeLeading drops leading dimensions of size one, keeping at least one dimension.
func (t *Tensor) SqueezeLeading() *Tensor {
	shape := t.Shape

	for len(shape) > 1 && shape[0] == 1 {
		shape = shape[1:]
	}

	return &Tensor{Shape: append([]int(nil), shape...), Data: t.Data}
}

// Transpose swaps the axes of a two dimensional tensor.
func (t *Tensor) Transpose() (*Tensor, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("cannot transpose %d-dimensional tensor", len(t.Shape))
	}

	rows, cols := t.Shape[0], t.Shape[1]
	data := make([]float32, len(t.Data))

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data[c*rows+r] = t.Data[r*cols+c]
		}
	}

	return &Tensor{Shape: []int{cols, rows}, Data: data}, nil
}

// Buffer interprets the tensor as mono samples (1-D) or frames by channels (2-D).
func (t *Tensor) Buffer(sampleRate int) (*Buffer, error) {
	switch len(t.Shape) {
	case 1:
		return &Buffer{Samples: t.Data, SampleRate: sampleRate, Channels: 1}, nil

	case 2:
		if t.Shape[1] == 0 {
			return nil, errors.New("empty audio")
		}

		return &Buffer{Samples: t.Data, SampleRate: sampleRate, Channels: t.Shape[1]}, nil

	default:
		return nil, fmt.Errorf("unsupported audio shape %v", t.Shape)
	}
}
