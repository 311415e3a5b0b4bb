package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrianliechti/tts-playground/pkg/client"
)

func main() {
	urlFlag := flag.String("url", "http://localhost:8000", "server url")
	tokenFlag := flag.String("token", "", "server token")
	modelFlag := flag.String("model", "", "model name")
	voiceFlag := flag.String("voice", "", "reference recording for voice cloning")

	flag.Parse()

	ctx := context.Background()

	model := *modelFlag

	options := []client.RequestOption{}

	if *tokenFlag != "" {
		options = append(options, client.WithToken(*tokenFlag))
	}

	client := client.New(*urlFlag, options...)

	if model == "" {
		val, err := selectModel(ctx, client)

		if err != nil {
			panic(err)
		}

		model = val
	}

	if *voiceFlag != "" {
		clone(ctx, client, model, *voiceFlag)
		return
	}

	synthesize(ctx, client, model)
}

func selectModel(ctx context.Context, client *client.Client) (string, error) {
	reader := bufio.NewReader(os.Stdin)
	output := os.Stdout

	models, err := client.Models.List(ctx)

	if err != nil {
		return "", err
	}

	var names []string

	for _, m := range models {
		if !m.Available {
			continue
		}

		names = append(names, m.Name)
	}

	if len(names) == 0 {
		return "", fmt.Errorf("no models available")
	}

	for i, name := range names {
		output.WriteString(fmt.Sprintf("%2d) ", i+1))
		output.WriteString(name)
		output.WriteString("\n")
	}

	output.WriteString(" >  ")
	sel, err := reader.ReadString('\n')

	if err != nil {
		panic(err)
	}

	idx, err := strconv.Atoi(strings.TrimSpace(sel))

	if err != nil || idx < 1 || idx > len(names) {
		return "", fmt.Errorf("invalid selection: %s", strings.TrimSpace(sel))
	}

	output.WriteString("\n")

	return names[idx-1], nil
}

func synthesize(ctx context.Context, c *client.Client, model string) {
	reader := bufio.NewReader(os.Stdin)
	output := os.Stdout

LOOP:
	for {
		output.WriteString(">>> ")
		input, err := reader.ReadString('\n')

		if err != nil {
			panic(err)
		}

		input = strings.TrimSpace(input)

		if input == "" {
			continue LOOP
		}

		if strings.HasPrefix(input, "/") {
			switch strings.ToLower(input) {
			case "/speakers":
				speakers(ctx, c, model)
				continue LOOP

			case "/cleanup":
				result, err := c.Outputs.Cleanup(ctx, model)

				if err != nil {
					output.WriteString(err.Error() + "\n")
					continue LOOP
				}

				output.WriteString(result.Message + "\n\n")
				continue LOOP

			default:
				output.WriteString("Unknown command\n")
				continue LOOP
			}
		}

		result, err := c.Syntheses.New(ctx, client.SynthesizeRequest{
			Model: model,
			Text:  input,
		})

		if err != nil {
			output.WriteString(err.Error() + "\n")
			continue LOOP
		}

		save(ctx, c, result)
	}
}

func clone(ctx context.Context, c *client.Client, model, voice string) {
	reader := bufio.NewReader(os.Stdin)
	output := os.Stdout

LOOP:
	for {
		output.WriteString(">>> ")
		input, err := reader.ReadString('\n')

		if err != nil {
			panic(err)
		}

		input = strings.TrimSpace(input)

		if input == "" {
			continue LOOP
		}

		f, err := os.Open(voice)

		if err != nil {
			panic(err)
		}

		result, err := c.Syntheses.Clone(ctx, client.CloneRequest{
			Model: model,
			Text:  input,

			Name:   filepath.Base(voice),
			Reader: f,
		})

		f.Close()

		if err != nil {
			output.WriteString(err.Error() + "\n")
			continue LOOP
		}

		save(ctx, c, result)
	}
}

func speakers(ctx context.Context, c *client.Client, model string) {
	output := os.Stdout

	list, err := c.Models.Speakers(ctx, model)

	if err != nil {
		output.WriteString(err.Error() + "\n")
		return
	}

	for _, s := range list {
		output.WriteString(fmt.Sprintf("%-20s %s\n", s.ID, s.Description))
	}

	output.WriteString("\n")
}

// save downloads the synthesized file into the working directory.
func save(ctx context.Context, c *client.Client, result *client.Synthesis) {
	for _, w := range result.Warnings {
		fmt.Println("Warning: " + w)
	}

	name := filepath.Base(result.OutputPath)

	f, err := os.Create(name)

	if err != nil {
		panic(err)
	}

	defer f.Close()

	if err := c.Outputs.Download(ctx, result.ModelUsed, name, f); err != nil {
		fmt.Println(err.Error())
		return
	}

	fmt.Println("Saved: " + name)
	fmt.Println()
}
