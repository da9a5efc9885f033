// Package flagx picks individual flags out of os.Args so that each
// configuration layer can parse only what it owns.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args made of allowed flags and their
// values. Both "-c conf.json" and "--config=conf.json" forms are recognised;
// a following token starting with "-" is never taken as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
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

// JsonConfigFlags returns the JSON config path given with -c or -config, or
// an empty string.
func JsonConfigFlags() string {
	return stringFlag("json", "c", "config", "path to JSON config file")
}

// EnvFileFlags returns the dotenv path given with -env or -env-file, or an
// empty string.
func EnvFileFlags() string {
	return stringFlag("env", "env", "env-file", "path to .env file")
}

func stringFlag(set, short, long, usage string) string {
	var v string

	args := FilterArgs(os.Args[1:], []string{"-" + short, "-" + long})

	fs := flag.NewFlagSet(set, flag.ContinueOnError)
	fs.StringVar(&v, long, "", usage)
	fs.StringVar(&v, short, "", usage+" (short)")
	_ = fs.Parse(args)

	return v
}
