package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/indri"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	synthesizeFlags struct {
		model  string
		output string

		speaker    string
		speakerWAV string

		language    string
		description string
		voice       string
		refText     string

		speed    float64
		cfgScale float64
		seed     int64

		noDefaultDir bool
	}

	synthesizeCmd = &cobra.Command{
		Use:   "synthesize TEXT",
		Short: "Synthesize one text to a WAV file",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSynthesize,
	}
)

func init() {
	f := synthesizeCmd.Flags()

	f.StringVarP(&synthesizeFlags.model, "model", "m", indri.Name, "engine name or alias")
	f.StringVarP(&synthesizeFlags.output, "output", "o", "output.wav", "output file")

	f.StringVar(&synthesizeFlags.speaker, "speaker", "", "speaker id")
	f.StringVar(&synthesizeFlags.speakerWAV, "speaker-wav", "", "reference recording for voice cloning")

	f.StringVar(&synthesizeFlags.language, "language", "", "language code")
	f.StringVar(&synthesizeFlags.description, "description", "", "voice description or preset")
	f.StringVar(&synthesizeFlags.voice, "voice", "", "voice id")
	f.StringVar(&synthesizeFlags.refText, "ref-text", "", "transcript of the reference recording")

	f.Float64Var(&synthesizeFlags.speed, "speed", 0, "speech rate")
	f.Float64Var(&synthesizeFlags.cfgScale, "cfg-scale", 0, "classifier free guidance scale")
	f.Int64Var(&synthesizeFlags.seed, "seed", 0, "random seed")

	f.BoolVar(&synthesizeFlags.noDefaultDir, "no-default-dir", false, "write relative paths below the working directory")
}

func synthesizeOptions(cmd *cobra.Command) *engine.SynthesizeOptions {
	options := &engine.SynthesizeOptions{
		UseDefaultOutputDir: engine.Ptr(!synthesizeFlags.noDefaultDir),

		Speaker:    synthesizeFlags.speaker,
		SpeakerWAV: synthesizeFlags.speakerWAV,

		Language:    synthesizeFlags.language,
		Description: synthesizeFlags.description,
		Voice:       synthesizeFlags.voice,

		RefText: synthesizeFlags.refText,
	}

	flags := cmd.Flags()

	if flags.Changed("speed") {
		options.Speed = engine.Ptr(synthesizeFlags.speed)
	}

	if flags.Changed("cfg-scale") {
		options.CFGScale = engine.Ptr(synthesizeFlags.cfgScale)
	}

	if flags.Changed("seed") {
		options.Seed = engine.Ptr(synthesizeFlags.seed)
	}

	return options
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	e, err := cfg.Engine(synthesizeFlags.model)

	if err != nil {
		return err
	}

	options := synthesizeOptions(cmd)
	options.OutputPath = synthesizeFlags.output

	return engine.Use(cmd.Context(), e, func(e engine.Engine) error {
		result, err := e.Synthesize(cmd.Context(), strings.Join(args, " "), options)

		if err != nil {
			return err
		}

		printResult(result)
		return nil
	})
}

func printResult(result *engine.Result) {
	var size uint64

	if info, err := os.Stat(result.Path); err == nil {
		size = uint64(info.Size())
	}

	fmt.Printf("%s (%s, %s, %d Hz)\n", result.Path, humanize.Bytes(size), result.Duration.Round(10*time.Millisecond), result.SampleRate)

	for _, w := range result.Warnings {
		fmt.Println("  warning: " + w)
	}
}
