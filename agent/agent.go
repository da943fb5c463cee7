// Package agent is the AI assistant commenting the portfolio, built on Gemini.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	printer     func(string)
	Facilitator *Expert
	Experts     []*Expert
}

// New creates a new Agent reading questions from r and writing to w. Answers
// are markdown, printed with 'printer'; nil prints them as is to w.
func New(w io.Writer, r io.Reader, printer func(string), model string, experts ...*Expert) *Agent {
	if printer == nil {
		printer = func(s string) { fmt.Fprintln(w, s) }
	}
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		printer:     printer,
		Experts:     experts,
		Facilitator: newFacilitator(model, experts...),
	}
}

// Start creates the chats of all experts.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// Run answers prompts first, then reads questions until "bye" or the end of input.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	for {
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
		} else {
			fmt.Fprint(a.w, prompt)
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		a.printer(content.Parts[0].Text)
	}
}
