package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/adrianliechti/tts-playground/pkg/engine"
	"github.com/adrianliechti/tts-playground/pkg/engine/indri"

	"github.com/spf13/cobra"
)

var (
	enginesCmd = &cobra.Command{
		Use:   "engines",
		Short: "List engines and their availability",
		Args:  cobra.NoArgs,
		RunE:  runEngines,
	}

	speakersCmd = &cobra.Command{
		Use:   "speakers [MODEL]",
		Short: "List the speaker catalog of an engine",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpeakers,
	}
)

func runEngines(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tALIASES\tLANGUAGES\tSTATUS")

	for _, e := range cfg.Registry.Entries() {
		status := "available"

		if !e.Available {
			status = "unavailable: " + e.Reason
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, strings.Join(e.Aliases, ","), strings.Join(e.Languages, ","), status)
	}

	return w.Flush()
}

func runSpeakers(cmd *cobra.Command, args []string) error {
	model := indri.Name

	if len(args) > 0 {
		model = args[0]
	}

	e, err := cfg.Engine(model)

	if err != nil {
		return err
	}

	lister, ok := engine.As[engine.SpeakerLister](e)

	if !ok {
		return fmt.Errorf("%s has no speaker catalog", e.Name())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	for _, s := range lister.Speakers() {
		fmt.Fprintf(w, "%s\t%s\n", s.ID, s.Description)
	}

	return w.Flush()
}
