package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Level orders the places where text may be cut. Higher levels are preferred.
type Level int

const (
	LevelWord Level = iota + 1
	LevelSentence
	LevelParagraph
)

type Boundary struct {
	Level Level

	// End is the byte offset where the next chunk starts.
	End int
}

// Splitter cuts long input into utterances short enough for one synthesis call.
type Splitter struct {
	ChunkSize int

	LenFunc func(string) int
}

func NewSplitter() Splitter {
	return Splitter{
		ChunkSize: 250,
		LenFunc:   utf8.RuneCountInString,
	}
}

// Split returns chunks of at most ChunkSize, cut at paragraph, then sentence, then word
// boundaries. A single word longer than ChunkSize becomes its own chunk.
func (s Splitter) Split(text string) []string {
	text = Normalize(text)

	if text == "" {
		return []string{}
	}

	if s.LenFunc == nil {
		s.LenFunc = utf8.RuneCountInString
	}

	boundaries := parseBoundaries(text)

	var result []string

	for start := 0; start < len(text); {
		end := s.next(text, boundaries, start)

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			result = append(result, chunk)
		}

		start = end
	}

	return result
}

func (s Splitter) next(text string, boundaries []Boundary, start int) int {
	if s.LenFunc(text[start:]) <= s.ChunkSize {
		return len(text)
	}

	for level := LevelParagraph; level >= LevelWord; level-- {
		var ends []int

		for _, b := range boundaries {
			if b.Level >= level && b.End > start {
				ends = append(ends, b.End)
			}
		}

		if end, ok := s.largest(text, start, ends); ok {
			return end
		}
	}

	// no boundary fits, cut after the first word
	for _, b := range boundaries {
		if b.End > start {
			return b.End
		}
	}

	return len(text)
}

// largest finds the furthest end whose chunk still fits.
func (s Splitter) largest(text string, start int, ends []int) (int, bool) {
	low, high := 0, len(ends)-1
	best := -1

	for low <= high {
		mid := (low + high) / 2

		if s.LenFunc(strings.TrimSpace(text[start:ends[mid]])) <= s.ChunkSize {
			best = ends[mid]
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return best, best > start
}

func parseBoundaries(text string) []Boundary {
	var result []Boundary

	for i, r := range text {
		if !unicode.IsSpace(r) {
			continue
		}

		if i > 0 && unicode.IsSpace(lastRune(text[:i])) {
			continue
		}

		end := i

		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])

			if !unicode.IsSpace(r) {
				break
			}

			end += size
		}

		level := LevelWord

		switch {
		case strings.Count(text[i:end], "\n") >= 2:
			level = LevelParagraph

		case isTerminator(lastRune(text[:i])):
			level = LevelSentence
		}

		result = append(result, Boundary{Level: level, End: end})
	}

	return result
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// isTerminator reports sentence ending punctuation, including the Devanagari danda.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '॥':
		return true
	}

	return false
}
