// Command exps is a command-line expense tracker: a plain CSV ledger with
// automatic backups, bank sync through TrueLayer and AI-assisted
// categorization.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/expenses/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Handles shell completion requests and exits, a no-op in a normal run.
	completion().Complete("exps")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()

	// Unknown subcommands fall through to exps-<name> extensions on the
	// PATH, the way git runs git-<name>.
	if args := flag.Args(); len(args) > 0 && !cmd.Known(args[0]) && !builtin(args[0]) {
		if ran, code := cmd.RunExtension(args[0], args[1:]); ran {
			os.Exit(code)
		}
	}

	os.Exit(int(commander.Execute(context.Background())))
}

// builtin reports whether name is one of the commander's own help commands,
// which are not listed in the cmd registry.
func builtin(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	return false
}

// completion describes the CLI to the shell. Install it with
// COMP_INSTALL=1 exps.
func completion() *complete.Command {
	types := predict.Set{"expense", "income"}
	dates := predict.Nothing

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"dir": predict.Dirs("*"),
		},
		Sub: map[string]*complete.Command{
			"add": {Flags: map[string]complete.Predictor{
				"d": dates, "t": types, "s": predict.Nothing,
			}},
			"import": {
				Flags: map[string]complete.Predictor{"s": predict.Nothing},
				Args:  predict.Files("*.csv"),
			},
			"list": {Flags: map[string]complete.Predictor{
				"s": dates, "d": dates, "m": predict.Nothing, "t": types,
				"min": predict.Nothing, "max": predict.Nothing,
				"deleted": predict.Nothing, "head": predict.Nothing, "tail": predict.Nothing,
			}},
			"delete": {Flags: map[string]complete.Predictor{
				"d": dates, "m": predict.Nothing, "a": predict.Nothing,
			}},
			"undelete": {Flags: map[string]complete.Predictor{
				"d": dates, "m": predict.Nothing, "a": predict.Nothing,
			}},
			"fmt": {},
			"backup": {Flags: map[string]complete.Predictor{
				"force": predict.Nothing,
			}},
			"backups": {},
			"recover": {Flags: map[string]complete.Predictor{
				"from": predict.Files("*.tar.gz"),
			}},
			"summary": {Flags: map[string]complete.Predictor{
				"s": dates, "d": dates,
			}},
			"categories": {Flags: map[string]complete.Predictor{
				"add": predict.Nothing, "t": types,
				"merchant": predict.Nothing, "category": predict.Nothing,
			}},
			"alias": {Flags: map[string]complete.Predictor{
				"rm": predict.Nothing,
			}},
			"suggest": {Flags: map[string]complete.Predictor{
				"t": types, "apply": predict.Nothing,
			}},
			"connect": {Flags: map[string]complete.Predictor{
				"port": predict.Nothing, "timeout": predict.Nothing,
			}},
			"connections": {Flags: map[string]complete.Predictor{
				"rm": predict.Nothing,
			}},
			"sync": {Flags: map[string]complete.Predictor{
				"days": predict.Nothing, "id": predict.Nothing,
			}},
			"topic": {Args: predict.Set{
				"readme", "getting-started", "backups", "categories", "sync", "*",
			}},
		},
	}
}
