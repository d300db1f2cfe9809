package nativebuild

import (
	"strings"
)

// Command is one native build invocation expressed as data: a program run
// with arguments inside a working directory. No shell string is executed.
type Command struct {
	Family  Family
	Dir     string
	Program string
	Args    []string
	Script  string
}

// BuildCommand composes the native build command for a module.
func BuildCommand(family Family, modulePath string, layout Layout) (Command, error) {
	if err := CheckModulePath(family, modulePath); err != nil {
		return Command{}, err
	}

	script := ScriptName(family)
	cmd := Command{
		Family: family,
		Dir:    layout.ScriptDir(family, modulePath),
		Script: script,
	}
	if family == Windows {
		cmd.Program = "cmd.exe"
		cmd.Args = []string{"/C", `.\` + script}
	} else {
		cmd.Program = "./" + script
	}
	return cmd, nil
}

// ResolvedDir returns Dir with ".." elements removed lexically.
func (c Command) ResolvedDir() string {
	return cleanDir(c.Family, c.Dir)
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// String renders the command in the shell form a user would type by hand:
// pushd/popd chained with && on Windows, cd/cd - chained with && elsewhere.
func (c Command) String() string {
	var sb strings.Builder
	if c.Family == Windows {
		sb.WriteString("pushd ")
		sb.WriteString(c.Dir)
		sb.WriteString(` && .\`)
		sb.WriteString(c.Script)
		sb.WriteString(" && popd")
		return sb.String()
	}
	sb.WriteString("cd ")
	sb.WriteString(c.Dir)
	sb.WriteString("&&./")
	sb.WriteString(c.Script)
	sb.WriteString("&& cd -")
	return sb.String()
}
