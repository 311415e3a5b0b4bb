package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/tts-playground/pkg/engine/vibevoice"

	"github.com/stretchr/testify/require"
)

func TestParseTurns(t *testing.T) {
	turns, err := parseTurns([]string{
		"Priya: Namaste, kaise ho?",
		"Raj:  Main theek hoon: aur tum?",
	})

	require.NoError(t, err)
	require.Equal(t, []vibevoice.Turn{
		{Speaker: "Priya", Text: "Namaste, kaise ho?"},
		{Speaker: "Raj", Text: "Main theek hoon: aur tum?"},
	}, turns)

	_, err = parseTurns([]string{"no speaker here"})
	require.Error(t, err)
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.txt")
	require.NoError(t, os.WriteFile(path, []byte("first\n\n  second  \n"), 0644))

	lines, err := readLines(path)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, lines)
}

func TestSplitTexts(t *testing.T) {
	texts := splitTexts([]string{"पहला वाक्य। दूसरा वाक्य।", "short"}, 12)
	require.Equal(t, []string{"पहला वाक्य।", "दूसरा वाक्य।", "short"}, texts)
}
