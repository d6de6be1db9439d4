package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// ImagePrompt is sent in place of an empty message when images are staged.
const ImagePrompt = "What's in this image?"

type command struct {
	name  string
	usage string
	help  string
	run   func(a *App, args []string)
}

var commands []command

func init() {
	commands = []command{
		{name: "/help", help: "Display this help message", run: (*App).showHelp},
		{name: "/bye", help: "Exit the application", run: (*App).quit},
		{name: "/debug", help: "Toggle the debug console", run: (*App).toggleDebugConsole},
		{name: "/attach", usage: "<path...>", help: "Stage images for the next message", run: (*App).attach},
		{name: "/detach", usage: "<n>", help: "Remove staged image n", run: (*App).detach},
		{name: "/edit", help: "Edit your last message", run: (*App).editLast},
		{name: "/stop", help: "Stop waiting for pending replies", run: (*App).stop},
		{name: "/models", help: "List the models the proxy can reach", run: (*App).showModels},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// parseCommand splits "/name arg..." input. Anything not starting with a
// slash is a chat message.
func parseCommand(input string) (string, []string, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Here are some commands you can use:\n")
	for _, c := range commands {
		name := c.name
		if c.usage != "" {
			name += " " + c.usage
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, c.help)
	}
	b.WriteString("\nPress Enter to send. Esc moves focus to the conversation.")
	return b.String()
}

// outgoingText is what Enter sends: the trimmed input, or ImagePrompt when
// only images are staged. ok is false when there is nothing to send.
func outgoingText(input string, staged int) (string, bool) {
	text := strings.TrimSpace(input)
	if text != "" {
		return text, true
	}
	if staged > 0 {
		return ImagePrompt, true
	}
	return "", false
}

// parseIndex reads a 1-based index into a list of n items.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("no staged image %d", i)
	}
	return i - 1, nil
}
