package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm asks a yes/no question on the terminal, defaulting to no. In a
// non-interactive session the default is returned without prompting.
func Confirm(question string) bool {
	if !IsTTY {
		return false
	}
	fmt.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// Choose asks the user to pick one of the given single-letter options (the
// first letter of each label), re-prompting on invalid input. The index of
// the chosen label is returned; non-interactive sessions get defaultIdx.
func Choose(question string, labels []string, defaultIdx int) int {
	if !IsTTY {
		return defaultIdx
	}

	letters := make([]string, len(labels))
	display := make([]string, len(labels))
	for i, label := range labels {
		letters[i] = strings.ToLower(label[:1])
		display[i] = fmt.Sprintf("[%s]%s", letters[i], label[1:])
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s %s: ", question, strings.Join(display, " / "))
		line, err := reader.ReadString('\n')
		if err != nil {
			return defaultIdx
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer == "" {
			return defaultIdx
		}
		for i, letter := range letters {
			if answer == letter || answer == strings.ToLower(labels[i]) {
				return i
			}
		}
		fmt.Println(Render(Warning, "invalid choice"))
	}
}
