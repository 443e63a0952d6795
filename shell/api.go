package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Florian-Lackner/score-based-explanations/config"
	"github.com/Florian-Lackner/score-based-explanations/entity"
	"github.com/Florian-Lackner/score-based-explanations/explainer"
	"github.com/Florian-Lackner/score-based-explanations/runner"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// settable options that only need the engine adjusted.
var engineOptions = []string{config.ConfigThreads, config.ConfigMaxContingencySize}

// settable options that rebuild the session.
var sessionOptions = []string{
	config.ConfigDistribution, config.ConfigModelKind, config.ConfigModelPath,
	config.ConfigDataPath, config.ConfigDomainsPath, config.ConfigEntitiesPath,
	config.ConfigTarget, config.ConfigPositiveLabel, config.ConfigCacheSize,
	config.ConfigCSVEncoding,
}

func (sc *ShellController) requireSession() error {
	if sc.session == nil {
		return errNoSession
	}
	return nil
}

func (sc *ShellController) requireEntity() error {
	if err := sc.requireSession(); err != nil {
		return err
	}
	if !sc.hasEntity {
		return errNoEntity
	}
	return nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func (sc *ShellController) schema(cmd *shellcmd) (*Response, error) {
	if err := sc.requireSession(); err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "model: %s  distribution: %s  entities: %d\n",
		sc.session.ModelKind(), sc.session.Distribution(), len(sc.session.Entities))
	for _, f := range sc.session.Schema {
		vals := lo.Map(sc.session.Domains[f], func(v entity.Value, _ int) string { return v.String() })
		fmt.Fprintf(&sb, "%-20s %s\n", f, strings.Join(vals, " "))
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) entity(cmd *shellcmd) (*Response, error) {
	if err := sc.requireSession(); err != nil {
		return nil, err
	}
	if len(cmd.args) == 0 {
		if !sc.hasEntity {
			return nil, errNoEntity
		}
		return msg(sc.current.String()), nil
	}
	if len(cmd.args) == 1 {
		// a row number of the session's entities
		if i, err := strconv.Atoi(cmd.args[0]); err == nil {
			if i < 0 || i >= len(sc.session.Entities) {
				return nil, fmt.Errorf("entity index %d out of range [0, %d)", i, len(sc.session.Entities))
			}
			sc.current, sc.hasEntity = sc.session.Entities[i], true
			return msg(sc.current.String()), nil
		}
	}
	e, err := runner.ParseEntity(sc.session.Schema, cmd.args)
	if err != nil {
		return nil, err
	}
	sc.current, sc.hasEntity = e, true
	return msg(e.String()), nil
}

func (sc *ShellController) predict(cmd *shellcmd) (*Response, error) {
	if err := sc.requireEntity(); err != nil {
		return nil, err
	}
	p, err := sc.session.Engine.Prediction(sc.current)
	if err != nil {
		return nil, err
	}
	return msg(formatScore(p)), nil
}

func (sc *ShellController) expect(cmd *shellcmd) (*Response, error) {
	if err := sc.requireEntity(); err != nil {
		return nil, err
	}
	v, err := sc.session.Engine.ExpectedPrediction(sc.current, runner.ParseFeatures(cmd.args))
	if err != nil {
		return nil, err
	}
	return msg(formatScore(v)), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if err := sc.requireEntity(); err != nil {
		return nil, err
	}
	kind, err := explainer.ParseKind(cmd.cmd)
	if err != nil {
		return nil, err
	}
	features := runner.ParseFeatures(cmd.args)
	if len(features) == 0 {
		return nil, errors.New("need at least one feature")
	}
	v, err := sc.session.Engine.Score(kind, sc.current, features)
	if err != nil {
		return nil, err
	}
	return msg(formatScore(v)), nil
}

func (sc *ShellController) xresp(cmd *shellcmd) (*Response, error) {
	if err := sc.requireEntity(); err != nil {
		return nil, err
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: xresp feature [-max n]")
	}
	maxSize, err := cmd.options.IntDefault("max", sc.session.Engine.MaxContingencySize())
	if err != nil {
		return nil, err
	}
	r, err := sc.session.Engine.XResp(sc.current, cmd.args[0], maxSize)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("weight: %s  best counter: %s  resp: %s",
		formatScore(r.Weight), formatScore(r.BestCounter), formatScore(r.Score()))), nil
}

// scores prints a whole score table for the current entity, or for every
// positive session entity with -all true.
func (sc *ShellController) scores(cmd *shellcmd) (*Response, error) {
	if err := sc.requireSession(); err != nil {
		return nil, err
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: scores kind [features...] [-all true] [-out dir]")
	}
	kind, err := explainer.ParseKind(cmd.args[0])
	if err != nil {
		return nil, err
	}
	features := runner.ParseFeatures(cmd.args[1:])
	if len(features) == 0 {
		features = sc.session.Schema
	}
	var targets []entity.Entity
	if cmd.options.String("all") == "true" {
		if targets, err = sc.session.PositiveEntities(sc.session.Entities); err != nil {
			return nil, err
		}
	} else {
		if err := sc.requireEntity(); err != nil {
			return nil, err
		}
		targets = []entity.Entity{sc.current}
	}
	tbl, err := sc.session.ScoreTable(kind, targets, features)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := tbl.WriteDat(&sb); err != nil {
		return nil, err
	}
	if dir := cmd.options.String("out"); dir != "" {
		path, err := tbl.SaveDat(dir, "shell", sc.session.Distribution())
		if err != nil {
			return nil, err
		}
		sb.WriteString("wrote " + path + "\n")
	}
	if len(targets) > 1 {
		sb.WriteString("\n")
		if err := tbl.Summary(&sb); err != nil {
			return nil, err
		}
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, o := range append(append([]string{}, engineOptions...), sessionOptions...) {
			fmt.Fprintf(&sb, "%-24s %v\n", o, sc.cfg.Get(o))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%v", sc.cfg.Get(opt))), nil
	}
	value := cmd.args[1]
	switch {
	case lo.Contains(engineOptions, opt):
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		sc.cfg.Set(opt, n)
		if sc.session != nil {
			if opt == config.ConfigThreads {
				sc.session.Engine.SetThreads(n)
			} else {
				sc.session.Engine.SetMaxContingencySize(n)
			}
		}
	case lo.Contains(sessionOptions, opt):
		old := sc.cfg.Get(opt)
		sc.cfg.Set(opt, value)
		if err := sc.reload(); err != nil {
			sc.cfg.Set(opt, old)
			return nil, err
		}
	default:
		return nil, fmt.Errorf("option %q cannot be set; settable: %s", opt,
			strings.Join(append(append([]string{}, engineOptions...), sessionOptions...), ", "))
	}
	return msg(fmt.Sprintf("%s set to %s", opt, value)), nil
}

func (sc *ShellController) cache(cmd *shellcmd) (*Response, error) {
	if err := sc.requireSession(); err != nil {
		return nil, err
	}
	if len(cmd.args) > 0 && cmd.args[0] == "clear" {
		sc.session.Engine.Clear()
		return msg("caches cleared"), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %10s %10s %10s %10s %8s\n", "cache", "size", "hits", "misses", "evicted", "hit%")
	for _, st := range sc.session.Engine.CacheStats() {
		fmt.Fprintf(&sb, "%-16s %10d %10d %10d %10d %7.1f%%\n",
			st.Name, st.Size, st.Hits, st.Misses, st.Evicted, 100*st.HitRate)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}
