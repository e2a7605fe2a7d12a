package processor

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "process.lua")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLuaLineProcessorTransforms(t *testing.T) {
	script := writeScript(t, `
function process_line(line)
	return string.upper(line)
end
`)

	p, err := NewLuaLineProcessor(LuaLineProcessorConfig{Name: "upper", ScriptPath: script})
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Process("jan 5 error\n")
	if err != nil {
		t.Fatal(err)
	}

	if got != "JAN 5 ERROR\n" {
		t.Fatalf("Process() = %q, want %q", got, "JAN 5 ERROR\n")
	}
}

func TestLuaLineProcessorDropsOnEmptyReturn(t *testing.T) {
	script := writeScript(t, `
function process_line(line)
	if string.find(line, "secret") then
		return ""
	end
	return line
end
`)

	p, err := NewLuaLineProcessor(LuaLineProcessorConfig{Name: "scrub", ScriptPath: script})
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Process("contains secret token\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("Process() = %q, want dropped line", got)
	}

	got, err = p.Process("harmless\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "harmless\n" {
		t.Fatalf("Process() = %q, want %q", got, "harmless\n")
	}
}

func TestLuaLineProcessorBrokenScript(t *testing.T) {
	script := writeScript(t, `this is not lua at all (`)

	if _, err := NewLuaLineProcessor(LuaLineProcessorConfig{Name: "broken", ScriptPath: script}); err == nil {
		t.Fatal("NewLuaLineProcessor() = nil error for broken script")
	}
}

func TestLuaLineProcessorMissingScript(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.lua")

	if _, err := NewLuaLineProcessor(LuaLineProcessorConfig{Name: "x", ScriptPath: missing}); err == nil {
		t.Fatal("NewLuaLineProcessor() = nil error for missing script")
	}
}
