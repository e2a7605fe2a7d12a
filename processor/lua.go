package processor

import (
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

type LuaLineProcessorConfig struct {
	Name       string `yaml:"-"`
	ScriptPath string `yaml:"script-path"`
}

// LuaLineProcessor rewrites lines with a user-provided lua script.
// The script MUST define a function named `process_line` taking the raw line
// as its single string parameter and returning the transformed line as a
// string. Returning an empty string drops the line. The trailing terminator
// is stripped before the call and restored afterwards, so scripts work on
// plain text. A JSON helper is available via `local json = require("json")`.
type LuaLineProcessor struct {
	cfg  LuaLineProcessorConfig
	pool *sync.Pool
}

func NewLuaLineProcessor(cfg LuaLineProcessorConfig) (*LuaLineProcessor, error) {
	// Load the script once eagerly so a broken script fails construction
	// instead of the first Process call.
	probe, err := newLuaState(cfg.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load lua script %s: %w", cfg.ScriptPath, err)
	}

	pool := &sync.Pool{
		New: func() any {
			L, err := newLuaState(cfg.ScriptPath)
			if err != nil {
				// The script already loaded once at construction; a failure
				// here means the file changed underneath us.
				panic(err)
			}
			return L
		},
	}
	pool.Put(probe)

	return &LuaLineProcessor{
		cfg:  cfg,
		pool: pool,
	}, nil
}

// newLuaState builds a sandboxed VM with only the safe libraries opened and
// the user script loaded. The os and io libraries stay closed so scripts
// cannot touch the system.
func newLuaState(scriptPath string) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	luajson.Preload(L)

	if err := L.DoFile(scriptPath); err != nil {
		L.Close()
		return nil, err
	}

	return L, nil
}

func (p *LuaLineProcessor) Name() string {
	return p.cfg.Name
}

func (p *LuaLineProcessor) Process(line string) (string, error) {
	L := p.pool.Get().(*lua.LState)
	defer p.pool.Put(L)

	terminator := ""
	if strings.HasSuffix(line, "\n") {
		terminator = "\n"
		line = strings.TrimSuffix(line, "\n")
	}

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("process_line"),
		NRet:    1,
		Protect: true,
	}, lua.LString(line))
	if err != nil {
		return "", fmt.Errorf("lua script error: %w", err)
	}

	result := L.ToString(-1)
	L.Pop(1)

	if result == "" {
		return "", nil
	}

	return result + terminator, nil
}
