package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/hession/searchmate/internal/logger"
)

const Version = "0.1.0"

// Run starts the interactive search prompt
func Run(ctx context.Context, s *Session) error {
	printWelcome(s)

	p := prompt.New(
		func(in string) { s.Handle(ctx, in, os.Stdout) },
		completer,
		prompt.OptionTitle("searchmate"),
		prompt.OptionLivePrefix(func() (string, bool) { return livePrefix(s), true }),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionHistory(recentPatterns(s)),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && s.Exited()
		}),
	)
	p.Run()

	logger.Info("interactive session ended")
	return nil
}

func printWelcome(s *Session) {
	fmt.Printf("\n%s SearchMate v%s - code search over ripgrep and grep\n", s.paint(colorCyan, "🔍"), Version)
	fmt.Println(s.paint(colorGray, "Type a pattern to search, /help for help, /exit to quit"))
	fmt.Println()
}

func livePrefix(s *Session) string {
	return fmt.Sprintf("%s %s> ", s.req.Engine, s.req.Path)
}

// completer offers slash commands once the input starts with "/"
func completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	if !strings.HasPrefix(text, "/") {
		return nil
	}
	return prompt.FilterHasPrefix(suggestions(), text, true)
}

func suggestions() []prompt.Suggest {
	cmds := CommandSuggestions()
	out := make([]prompt.Suggest, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, prompt.Suggest{Text: c.Text, Description: c.Description})
	}
	return out
}

// recentPatterns seeds prompt history with stored searches, oldest first
func recentPatterns(s *Session) []string {
	if s.store == nil || s.cfg == nil {
		return nil
	}
	entries, err := s.store.List(s.cfg.History.ListLimit)
	if err != nil {
		logger.Warn("failed to load search history: %v", err)
		return nil
	}

	patterns := make([]string, 0, len(entries))
	for _, e := range entries {
		patterns = append(patterns, e.Pattern)
	}
	slices.Reverse(patterns)
	return patterns
}
