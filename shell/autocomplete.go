package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/Florian-Lackner/score-based-explanations/distribution"
	"github.com/Florian-Lackner/score-based-explanations/explainer"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-max")
	Args    []string // Possible argument values (for non-option arguments)
	// Features is set for commands whose arguments are feature names.
	Features bool
}

var commandMetadata = map[string]CommandMetadata{
	"help":        {Args: []string{"entity", "scores", "set", "script"}},
	"expect":      {Features: true},
	"counter":     {Features: true},
	"counterplus": {Features: true},
	"xresp":       {Options: []string{"-max"}, Features: true},
	"resp":        {Features: true},
	"shap":        {Features: true},
	"shapplus":    {Features: true},
	"scores":      {Options: []string{"-all", "-out"}, Features: true},
	"cache":       {Args: []string{"clear"}},
	"set":         {Args: append(append([]string{}, engineOptions...), sessionOptions...)},
}

// Common command names for command completion
var commandNames = []string{
	"help", "schema", "entity", "predict", "expect", "counter", "counterplus",
	"xresp", "resp", "shap", "shapplus", "scores", "set", "cache", "script",
	"exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		// the argument right after the command name
		firstArg := (endsWithSpace && len(fields) == 1) || (!endsWithSpace && len(fields) == 2)

		switch {
		case lastCompleteField == "-all":
			completions = boolValues
		case cmdName == "scores" && firstArg:
			completions = lo.Map(explainer.Kinds(), func(k explainer.Kind, _ int) string { return k.String() })
		case cmdName == "set" && !firstArg && lastCompleteField == "distribution":
			completions = distribution.Names()
		case cmdName == "entity":
			completions = c.assignments()
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				switch {
				case strings.HasPrefix(prefix, "-"):
					completions = metadata.Options
				case len(metadata.Args) > 0:
					if firstArg {
						completions = metadata.Args
					}
				case metadata.Features:
					completions = c.features()
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			suffix := completion[len(prefix):]
			matches = append(matches, []rune(suffix))
		}
	}
	return matches, len(prefix)
}

func (c *ShellCompleter) features() []string {
	if c.sc.session == nil {
		return nil
	}
	return c.sc.session.Schema
}

// assignments offers "feature=" for every feature.
func (c *ShellCompleter) assignments() []string {
	return lo.Map(c.features(), func(f string, _ int) string { return f + "=" })
}
