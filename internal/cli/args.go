package cli

import (
	"strconv"
	"strings"
)

// noValueFlags are the only flags newman declares that take no value.
var noValueFlags = map[string]bool{"--help": true, "-h": true, "--version": true}

// isNegativeNumber reports whether s is a number with a leading minus sign,
// such as -5, -1.5 or -2e3.
func isNegativeNumber(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	if c := s[1]; c != '.' && (c < '0' || c > '9') {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// flagTakesValue reports whether the flag token tok consumes the next
// argument as its value.
func flagTakesValue(tok string) bool {
	return strings.HasPrefix(tok, "--") && !strings.Contains(tok, "=") && !noValueFlags[tok]
}

// protectNegatives rewrites an operation's arguments so negative numbers
// given as positionals are not parsed as shorthand flags. Newman declares no
// shorthand besides -h, so a token like -5 is never a flag. The operation's
// flags are moved ahead of a "--" and its positionals follow it in order.
// Flag values are left where they are, so --precision -1 keeps working.
func protectNegatives(args []string) []string {
	// Find the namespace and operation tokens past the top-level flags.
	start, words := -1, 0
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			return args
		}
		if len(tok) > 1 && tok[0] == '-' {
			if flagTakesValue(tok) {
				i++
			}
			continue
		}
		if words++; words == 2 {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return args
	}

	var flags, positionals []string
	negative := false
	for i := start; i < len(args); i++ {
		tok := args[i]
		switch {
		case tok == "--":
			positionals = append(positionals, args[i+1:]...)
			i = len(args)
		case isNegativeNumber(tok):
			negative = true
			positionals = append(positionals, tok)
		case len(tok) > 1 && tok[0] == '-':
			flags = append(flags, tok)
			if flagTakesValue(tok) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positionals = append(positionals, tok)
		}
	}
	if !negative {
		return args
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, args[:start]...)
	out = append(out, flags...)
	out = append(out, "--")
	return append(out, positionals...)
}
