// Package flagx holds helpers for sharing one command line between several
// independent flag sets.
package flagx

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ErrDashValue is returned by CheckValues for a value that FilterArgs would
// drop.
var ErrDashValue = errors.New("flag value starts with \"-\"")

// FilterArgs keeps only the flags named in allowed, together with their
// values. Both "-f value" and "-f=value" forms are recognised; a following
// argument that starts with "-" is never consumed as a value.
//
// The result is never nil.
func FilterArgs(args []string, allowed []string) []string {
	names := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		names[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := names[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := names[arg]; !ok {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// CheckValues fails when a flag named in valued is followed, in the
// "-f value" form, by an argument starting with "-". FilterArgs never takes
// such an argument as the value, so "-s -x" would otherwise leave -s unset or
// swallow the next flag. Values like that must be written as "-s=-x".
func CheckValues(args []string, valued []string) error {
	names := make(map[string]struct{}, len(valued))
	for _, f := range valued {
		names[f] = struct{}{}
	}

	for i := 0; i+1 < len(args); i++ {
		if _, ok := names[args[i]]; !ok {
			continue
		}
		if next := args[i+1]; strings.HasPrefix(next, "-") {
			return fmt.Errorf("%w: %s %s (write %s=%s)", ErrDashValue, args[i], next, args[i], next)
		}
		i++
	}
	return nil
}

// ConfigFilePath returns the JSON config path given with -c or -config, or ""
// when neither is present. Later occurrences win.
func ConfigFilePath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
