package shell

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/Florian-Lackner/score-based-explanations/explainer"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("sbe_shell_controller")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// Shell runs any shell command line and returns its output.
func Shell(L *lua.LState) int {
	lv := L.ToString(1)
	sc := getShell(L)
	cmd, err := extractFields(lv)
	if err != nil {
		log.Err(err).Msg("error-parsing-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	r, err := sc.dispatch(cmd)
	if err != nil {
		log.Err(err).Str("cmd", cmd.cmd).Msg("error-executing-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	if r == nil {
		L.Push(lua.LString(""))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

func Entity(L *lua.LState) int {
	lv := L.ToString(1)
	sc := getShell(L)
	r, err := sc.entity(&shellcmd{
		cmd:  "entity",
		args: strings.Fields(lv),
	})
	if err != nil {
		log.Err(err).Msg("error-executing-entity")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	return 1
}

// Score pushes a number; errors push nil.
func Score(L *lua.LState) int {
	kind := L.ToString(1)
	features := L.ToString(2)
	sc := getShell(L)
	if err := sc.requireEntity(); err != nil {
		log.Err(err).Msg("error-executing-score")
		L.Push(lua.LNil)
		return 1
	}
	k, err := explainer.ParseKind(kind)
	if err != nil {
		log.Err(err).Msg("error-executing-score")
		L.Push(lua.LNil)
		return 1
	}
	v, err := sc.session.Engine.Score(k, sc.current, strings.Fields(features))
	if err != nil {
		log.Err(err).Msg("error-executing-score")
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

func Set(L *lua.LState) int {
	lv := L.ToString(1)
	sc := getShell(L)
	r, err := sc.set(&shellcmd{
		cmd:  "set",
		args: strings.Fields(lv),
	})
	if err != nil {
		log.Err(err).Msg("error-executing-set")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	// return number of results pushed to stack.
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("sbe_shell_controller", lsc)
	L.SetGlobal("sbe_shell", L.NewFunction(Shell))
	L.SetGlobal("sbe_entity", L.NewFunction(Entity))
	L.SetGlobal("sbe_score", L.NewFunction(Score))
	L.SetGlobal("sbe_set", L.NewFunction(Set))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
