// Package shell is an interactive REPL over an explainer session.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/Florian-Lackner/score-based-explanations/config"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/runner"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format for option")
	errNoEntity          = errors.New("no entity set; use `entity feature=value ...`")
	errNoSession         = errors.New("no session loaded")
)

type ShellController struct {
	l *readline.Instance

	cfg        *config.Config
	session    *runner.Session
	current    entity.Entity
	hasEntity  bool
	execPath   string
	gitVersion string
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc := &ShellController{cfg: cfg, execPath: execPath, gitVersion: gitVersion}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36msbe>\033[0m ",
		HistoryFile:     "/tmp/sbe_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	if err := sc.reload(); err != nil {
		log.Err(err).Msg("could-not-load-session")
	}
	return sc
}

// reload rebuilds the session from the current config. The current entity
// is kept if it still fits the schema.
func (sc *ShellController) reload() error {
	s, err := runner.NewSession(sc.cfg)
	if err != nil {
		return err
	}
	sc.session = s
	if sc.hasEntity && s.Schema.Check(sc.current) != nil {
		sc.hasEntity = false
	}
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its positional arguments and
// its -option value pairs.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}

	lastWasOption := false
	lastOption := ""
	for _, f := range fields[1:] {
		if lastWasOption {
			options[lastOption] = append(options[lastOption], f)
			lastWasOption = false
			continue
		}
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			lastOption = f[1:]
			lastWasOption = true
			continue
		}
		args = append(args, f)
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// Execute runs a single command line and exits.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	sc.executeLine(sig, line)
}

func (sc *ShellController) executeLine(sig chan os.Signal, line string) {
	cmd, err := extractFields(line)
	if err != nil {
		if !errors.Is(err, errNoData) {
			sc.showError(err)
		}
		return
	}
	if cmd.cmd == "exit" {
		sig <- syscall.SIGINT
		return
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "exit" {
			sig <- syscall.SIGINT
			break
		}
		sc.executeLine(sig, line)
	}
	log.Debug().Msgf("Exiting readline loop...")
}

func (sc *ShellController) Cleanup() {
	log.Info().Msg("cleaning up")
	if sc.session != nil {
		for _, st := range sc.session.Engine.CacheStats() {
			log.Debug().Str("cache", st.Name).Uint64("hits", st.Hits).
				Uint64("misses", st.Misses).Int("size", st.Size).Msg("cache-stats")
		}
	}
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "help":
		return sc.help(cmd)
	case "schema":
		return sc.schema(cmd)
	case "entity":
		return sc.entity(cmd)
	case "predict":
		return sc.predict(cmd)
	case "expect":
		return sc.expect(cmd)
	case "counter", "counterplus", "resp", "shap", "shapplus":
		return sc.score(cmd)
	case "xresp":
		return sc.xresp(cmd)
	case "scores":
		return sc.scores(cmd)
	case "set":
		return sc.set(cmd)
	case "cache":
		return sc.cache(cmd)
	case "script":
		return sc.script(cmd)
	}
	return nil, fmt.Errorf("command %q not recognized; try `help`", cmd.cmd)
}
