package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hession/searchmate/internal/search"
)

// CommandSuggestion is a slash command offered for completion
type CommandSuggestion struct {
	Text        string
	Description string
}

// CommandSuggestions lists the interactive commands
func CommandSuggestions() []CommandSuggestion {
	return []CommandSuggestion{
		{Text: "/engine", Description: "Show or switch the search engine"},
		{Text: "/engines", Description: "List available engines"},
		{Text: "/root", Description: "Set the directory to search"},
		{Text: "/case", Description: "Case sensitivity: on|off"},
		{Text: "/word", Description: "Whole-word matching: on|off"},
		{Text: "/regex", Description: "Regex patterns: on|off"},
		{Text: "/depth", Description: "Max directory depth: N|off"},
		{Text: "/type", Description: "File type globs, empty to clear"},
		{Text: "/exclude", Description: "Exclude globs, empty to clear"},
		{Text: "/max", Description: "Maximum number of results"},
		{Text: "/timeout", Description: "Search timeout in seconds"},
		{Text: "/json", Description: "JSON output: on|off"},
		{Text: "/show", Description: "Show current settings"},
		{Text: "/history", Description: "Show recent searches"},
		{Text: "/history clear", Description: "Clear search history"},
		{Text: "/config", Description: "Show configuration"},
		{Text: "/help", Description: "Show help"},
		{Text: "/exit", Description: "Exit"},
	}
}

// handleCommand handles slash commands, returns true to continue, false to exit
func (s *Session) handleCommand(cmd string, out io.Writer) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case "/help":
		s.printHelp(out)

	case "/exit", "/quit", "/q":
		fmt.Fprintln(out, s.paint(colorCyan, "Goodbye!"))
		return false

	case "/show":
		s.printSettings(out)

	case "/engines":
		s.printEngines(out)

	case "/engine":
		err = s.setEngine(args, out)

	case "/root":
		if len(args) != 1 {
			err = fmt.Errorf("usage: /root <path>")
			break
		}
		s.req.Path = args[0]
		s.ok(out, "Root set to "+args[0])

	case "/case":
		err = s.setFlag(args, &s.req.CaseSensitive, "Case sensitive", out)

	case "/word":
		err = s.setFlag(args, &s.req.WholeWord, "Whole word", out)

	case "/regex":
		err = s.setFlag(args, &s.req.UseRegex, "Regex", out)

	case "/json":
		err = s.setFlag(args, &s.JSON, "JSON output", out)

	case "/depth":
		err = s.setDepth(args, out)

	case "/type":
		s.req.FileTypes = append([]string(nil), args...)
		s.ok(out, "File types: "+listOrNone(s.req.FileTypes))

	case "/exclude":
		s.req.ExcludePatterns = append([]string(nil), args...)
		s.ok(out, "Exclude patterns: "+listOrNone(s.req.ExcludePatterns))

	case "/max":
		var n int
		if n, err = positiveArg(args, "/max <count>"); err == nil {
			s.req.MaxResults = n
			s.ok(out, fmt.Sprintf("Max results set to %d", n))
		}

	case "/timeout":
		var n int
		if n, err = positiveArg(args, "/timeout <seconds>"); err == nil {
			s.req.Timeout = time.Duration(n) * time.Second
			s.ok(out, fmt.Sprintf("Timeout set to %s", s.req.Timeout))
		}

	case "/history":
		err = s.showHistory(args, out)

	case "/config":
		if s.cfg != nil {
			fmt.Fprintln(out, s.cfg.String())
		}

	default:
		fmt.Fprintln(out, s.paint(colorYellow, "❓ Unknown command: "+cmd))
		fmt.Fprintln(out, "Type /help for available commands")
	}

	if err != nil {
		fmt.Fprintln(out, s.paint(colorRed, "❌ "+err.Error()))
	}
	return true
}

func (s *Session) setEngine(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintf(out, "Current engine: %s\n", s.req.Engine)
		return nil
	}

	name := strings.ToLower(args[0])
	known := false
	for _, e := range s.searcher.Engines() {
		if e.Name() == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown engine: %s", args[0])
	}

	s.req.Engine = name
	s.ok(out, "Engine set to "+name)
	return nil
}

func (s *Session) setFlag(args []string, target *bool, label string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: on|off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		*target = true
	case "off", "false", "no":
		*target = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}
	s.ok(out, fmt.Sprintf("%s: %s", label, onOff(*target, "on", "off")))
	return nil
}

func (s *Session) setDepth(args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /depth <n>|off")
	}
	if strings.EqualFold(args[0], "off") {
		s.req.MaxDepth = nil
		s.ok(out, "Max depth: unlimited")
		return nil
	}

	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid depth: %s", args[0])
	}
	s.req.MaxDepth = search.Depth(uint(n))
	s.ok(out, fmt.Sprintf("Max depth set to %d", n))
	return nil
}

func (s *Session) showHistory(args []string, out io.Writer) error {
	if s.store == nil {
		return fmt.Errorf("search history is disabled")
	}

	if len(args) > 0 && args[0] == "clear" {
		if err := s.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		s.ok(out, "Search history cleared")
		return nil
	}

	limit := 20
	if s.cfg != nil {
		limit = s.cfg.History.ListLimit
	}
	if len(args) > 0 {
		n, err := positiveArg(args, "/history [count]|clear")
		if err != nil {
			return err
		}
		limit = n
	}

	entries, err := s.store.List(limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	s.printHistory(out, entries)
	return nil
}

func positiveArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive number, got %q", args[0])
	}
	return n, nil
}

func (s *Session) ok(out io.Writer, msg string) {
	fmt.Fprintln(out, s.paint(colorGreen, "✅ "+msg))
}

func (s *Session) printHelp(out io.Writer) {
	fmt.Fprintln(out, s.paint(colorCyan, "📚 SearchMate Help"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, s.paint(colorYellow, "Type a pattern to search with the current settings."))
	fmt.Fprintln(out)
	fmt.Fprintln(out, s.paint(colorYellow, "Commands:"))
	for _, c := range CommandSuggestions() {
		fmt.Fprintf(out, "  %-16s - %s\n", c.Text, c.Description)
	}
	fmt.Fprintln(out)
}
