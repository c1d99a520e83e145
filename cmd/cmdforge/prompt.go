package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// promptYesNo asks a yes/no question on the controlling terminal using
// readline, the same prompt primitive the teacher's interactive CLI
// builds its confirmation flows on.
func promptYesNo(question string) bool {
	rl, err := readline.New(fmt.Sprintf("%s [y/N] ", question))
	if err != nil {
		return false
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
