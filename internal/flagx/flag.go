// Package flagx extracts small groups of flags from a shared argument list so
// independent loaders (config file, .env file, per-field flags) can each parse
// only what they own.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the allowed flags from args, together with their
// values. Both "-c file" and "-c=file" forms are recognized; a following
// token that starts with "-" is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag returns the config file path given with -c or -config,
// or "" when neither is present. The last occurrence wins.
func ConfigFileFlag(args []string) string {
	return stringFlag(args, "path to config file (json, yaml or toml)", "config", "c")
}

// EnvFileFlag returns the .env path given with -env, or "" when absent.
func EnvFileFlag(args []string) string {
	return stringFlag(args, "path to .env file", "env")
}

func stringFlag(args []string, usage string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n)
	}

	fs := flag.NewFlagSet(names[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", usage)
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}
