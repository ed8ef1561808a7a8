package command

import (
	"strings"
	"unicode"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command, spacing preserved.
	RawArgs string
}

// Identifier folds the arguments into a content identifier, so that
// "Song of Slaying" and "song_of_slaying" name the same spell.
//
// Postcondition: Returns "" when there are no arguments.
func (p ParseResult) Identifier() string {
	if len(p.Args) == 0 {
		return ""
	}
	words := make([]string, 0, len(p.Args))
	for _, a := range p.Args {
		a = strings.Trim(strings.ToLower(a), "'\"")
		a = strings.ReplaceAll(a, "'", "")
		if a != "" {
			words = append(words, a)
		}
	}
	return strings.Join(words, "_")
}

// HasFlag reports whether any argument equals one of names, case-insensitively.
func (p ParseResult) HasFlag(names ...string) bool {
	for _, a := range p.Args {
		for _, n := range names {
			if strings.EqualFold(a, n) {
				return true
			}
		}
	}
	return false
}

// Parse splits a line into a lowercased command word and its arguments.
// Any run of whitespace, tabs included, separates words.
//
// Postcondition: Command is empty only when line is blank.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	end := strings.IndexFunc(line, unicode.IsSpace)
	if end < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}
	rest := strings.TrimSpace(line[end:])
	return ParseResult{
		Command: strings.ToLower(line[:end]),
		Args:    strings.Fields(rest),
		RawArgs: rest,
	}
}
