package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nonsonwune/counselling_db/nlquery"
)

func (a *app) engine() *nlquery.Engine {
	return nlquery.NewGeminiEngine(a.cfg.GeminiKeys, a.cfg.GeminiModel, a.opts, a.logger)
}

// answer interprets the question, shows what was understood and runs the
// search with the resulting filter.
func (a *app) answer(ctx context.Context, question string) error {
	engine := a.engine()
	interp, err := engine.Ask(ctx, question)
	if err != nil {
		return err
	}
	understood := "nothing specific, showing the default search"
	if len(interp.Notes) > 0 {
		understood = strings.Join(interp.Notes, "; ")
	}
	color.Cyan("Understood (%s): %s", interp.Engine, understood)

	spec := interp.Spec
	spec.Selection = a.cfg.Selection
	a.spec = spec
	if res := a.runSearch(); res.Total == 0 {
		color.Yellow("%s", engine.Explain(ctx, question, errors.New("no records matched the filter")))
	}
	return nil
}

func (a *app) promptQuestion(ctx context.Context) {
	if len(a.cfg.GeminiKeys) == 0 {
		color.Yellow("No GEMINI_API_KEY set; questions are read with keyword rules.")
	}
	fmt.Print("Ask a question (e.g. \"female SC ENT seats under rank 20000 in 2024\"): ")
	question := readString()
	if question == "" {
		return
	}
	if err := a.answer(ctx, question); err != nil {
		color.Red("Error: %v", err)
	}
}

func newAskCmd(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Search with a plain-language question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a().answer(cmd.Context(), strings.Join(args, " "))
		},
	}
}
