// Package TaskText parses and formats the "Task Name (extra info)" text
// convention used when logging tasks by free text.
package TaskText

import (
	"strings"
)

// Token is the substitution marker in extra-info templates.
const Token = "$x"

type Parsed struct {
	Task      string
	ExtraInfo string
	HasExtra  bool
}

// Parse splits a task line into the task name and a trailing parenthetical
// extra-info segment. The matching open paren is found by balancing depth
// from the right, so nested parens inside the extra info survive:
// "Read (book (vol 2))" parses to task "Read", extra "book (vol 2)".
// Unbalanced parens fall back to the whole string being the task name.
func Parse(s string) Parsed {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return Parsed{Task: s}
	}

	depth := 0
	open := -1
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				open = i
			}
		}
		if open >= 0 {
			break
		}
	}
	if open < 0 {
		// no matching open paren
		return Parsed{Task: s}
	}

	task := strings.TrimSpace(s[:open])
	if task == "" {
		// "(just parens)" is a task name, not empty task + extra
		return Parsed{Task: s}
	}
	return Parsed{
		Task:      task,
		ExtraInfo: s[open+1 : len(s)-1],
		HasExtra:  true,
	}
}

// Expand substitutes the $x token in an extra-info template. Templates
// without the token are returned verbatim.
func Expand(template, value string) string {
	return strings.ReplaceAll(template, Token, value)
}

// Format renders a task line with its extra info in parens. Parsing the
// result recovers the expanded extra info, not the original template.
func Format(task, extraInfo string) string {
	if extraInfo == "" {
		return task
	}
	return task + " (" + extraInfo + ")"
}
