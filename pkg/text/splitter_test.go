package text

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "a b\nc\n\nd", Normalize("  a   b \r\n c\n \n\n d  "))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		size int
		text string
		want []string
	}{
		{
			name: "fits",
			size: 100,
			text: "One sentence. Another one.",
			want: []string{"One sentence. Another one."},
		},
		{
			name: "sentences",
			size: 20,
			text: "This is a test. This is another sentence. And one more.",
			want: []string{"This is a test.", "This is another", "sentence.", "And one more."},
		},
		{
			name: "danda",
			size: 20,
			text: "नमस्ते दोस्तों। आप कैसे हैं? मैं ठीक हूँ।",
			want: []string{"नमस्ते दोस्तों।", "आप कैसे हैं?", "मैं ठीक हूँ।"},
		},
		{
			name: "paragraphs",
			size: 35,
			text: "Paragraph one. Still one.\n\nParagraph two.",
			want: []string{"Paragraph one. Still one.", "Paragraph two."},
		},
		{
			name: "long word",
			size: 5,
			text: "abcdefghij kl",
			want: []string{"abcdefghij", "kl"},
		},
		{
			name: "empty",
			size: 10,
			text: "   ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSplitter()
			s.ChunkSize = tt.size

			require.Equal(t, tt.want, s.Split(tt.text))
		})
	}
}

func TestSplitKeepsContent(t *testing.T) {
	text := strings.Repeat("यह एक लंबा वाक्य है जो कई बार दोहराया गया है। ", 20)

	s := NewSplitter()
	s.ChunkSize = 60

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		require.LessOrEqual(t, utf8.RuneCountInString(c), 60)
	}

	require.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
}
