package repl

import (
	"github.com/chzyer/readline"
)

// newCommandCompleter completes the colon commands
func newCommandCompleter() readline.AutoCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, c := range commands {
		items = append(items, readline.PcItem(c.name))
	}
	return readline.NewPrefixCompleter(items...)
}
