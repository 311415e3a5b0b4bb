package main

import (
	"errors"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/vibevoice"

	"github.com/spf13/cobra"
)

var (
	conversationFlags struct {
		model  string
		output string
		voices []string
	}

	conversationCmd = &cobra.Command{
		Use:   "conversation FILE",
		Short: "Render a multi-speaker script",
		Long:  "Render a script of \"speaker: text\" lines in one call. Use --voice name=file.wav to add voice samples.",
		Args:  cobra.ExactArgs(1),
		RunE:  runConversation,
	}
)

func init() {
	f := conversationCmd.Flags()

	f.StringVarP(&conversationFlags.model, "model", "m", vibevoice.Name, "engine name or alias")
	f.StringVarP(&conversationFlags.output, "output", "o", "conversation.wav", "output file")
	f.StringArrayVar(&conversationFlags.voices, "voice", nil, "custom voice as name=path")
}

func runConversation(cmd *cobra.Command, args []string) error {
	lines, err := readLines(args[0])

	if err != nil {
		return err
	}

	turns, err := parseTurns(lines)

	if err != nil {
		return err
	}

	e, err := cfg.Engine(conversationFlags.model)

	if err != nil {
		return err
	}

	v, ok := engine.As[*vibevoice.Engine](e)

	if !ok {
		return errors.New(e.Name() + " does not render conversations")
	}

	aliases := map[string]string{}

	for _, val := range conversationFlags.voices {
		name, path, ok := strings.Cut(val, "=")

		if !ok {
			return errors.New("invalid voice, expected name=path: " + val)
		}

		id, err := v.AddCustomVoice(name, path)

		if err != nil {
			return err
		}

		aliases[name] = id
	}

	for i, t := range turns {
		if id, ok := aliases[t.Speaker]; ok {
			turns[i].Speaker = id
		}
	}

	result, err := v.SynthesizeConversation(cmd.Context(), turns, &engine.SynthesizeOptions{
		OutputPath: conversationFlags.output,
	})

	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func parseTurns(lines []string) ([]vibevoice.Turn, error) {
	var turns []vibevoice.Turn

	for _, line := range lines {
		speaker, text, ok := strings.Cut(line, ":")

		if !ok {
			return nil, errors.New("invalid line, expected speaker: text: " + line)
		}

		turns = append(turns, vibevoice.Turn{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(text),
		})
	}

	return turns, nil
}
