package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/indri"
	"github.com/adrianliechti/tts-playground/pkg/text"

	"github.com/spf13/cobra"
)

var (
	batchFlags struct {
		model     string
		input     string
		outputDir string

		split int
	}

	batchCmd = &cobra.Command{
		Use:   "batch [TEXT...]",
		Short: "Synthesize several texts to numbered files",
		Long:  "Synthesize each argument, or each non-empty line of --input, to output_0001.wav, output_0002.wav and so on.",
		RunE:  runBatch,
	}
)

func init() {
	f := batchCmd.Flags()

	f.StringVarP(&batchFlags.model, "model", "m", indri.Name, "engine name or alias")
	f.StringVarP(&batchFlags.input, "input", "i", "", "text file with one utterance per line, - for stdin")
	f.StringVarP(&batchFlags.outputDir, "output-dir", "o", "batch_output", "output directory")
	f.IntVar(&batchFlags.split, "split", 0, "cut texts into utterances of at most N characters at sentence boundaries")

	f.StringVar(&synthesizeFlags.speaker, "speaker", "", "speaker id")
	f.StringVar(&synthesizeFlags.speakerWAV, "speaker-wav", "", "reference recording for voice cloning")
	f.StringVar(&synthesizeFlags.language, "language", "", "language code")
	f.StringVar(&synthesizeFlags.description, "description", "", "voice description or preset")
	f.StringVar(&synthesizeFlags.refText, "ref-text", "", "transcript of the reference recording")
}

func runBatch(cmd *cobra.Command, args []string) error {
	texts := args

	if batchFlags.input != "" {
		lines, err := readLines(batchFlags.input)

		if err != nil {
			return err
		}

		texts = append(texts, lines...)
	}

	if batchFlags.split > 0 {
		texts = splitTexts(texts, batchFlags.split)
	}

	if len(texts) == 0 {
		return errors.New("no texts given")
	}

	e, err := cfg.Engine(batchFlags.model)

	if err != nil {
		return err
	}

	paths, err := engine.SynthesizeBatch(cmd.Context(), e, texts, batchFlags.outputDir, synthesizeOptions(cmd))

	for _, p := range paths {
		fmt.Println(p)
	}

	if err != nil {
		return fmt.Errorf("batch stopped after %d of %d files: %w", len(paths), len(texts), err)
	}

	return nil
}

func splitTexts(texts []string, size int) []string {
	s := text.NewSplitter()
	s.ChunkSize = size

	var result []string

	for _, t := range texts {
		result = append(result, s.Split(t)...)
	}

	return result
}

func readLines(path string) ([]string, error) {
	var r io.Reader = os.Stdin

	if path != "-" {
		f, err := os.Open(path)

		if err != nil {
			return nil, err
		}

		defer f.Close()
		r = f
	}

	var lines []string

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	return lines, scanner.Err()
}
