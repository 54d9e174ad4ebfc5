package command

import "strings"

// Kind identifies one of the known subcommands. The set is closed: dispatch
// switches over Kind exhaustively and anything unrecognized is KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindShow
	KindSet
	KindRemove
	KindSetDefault
	KindRemoveDefault
)

// Command is a parsed chat message: the subcommand variant plus its
// arguments. Name keeps the raw first token for help replies.
type Command struct {
	Kind Kind
	Name string
	Args Arguments
}

// Arguments is the immutable record of key=value arguments a command may
// carry. Unknown keys and bare tokens are ignored.
type Arguments struct {
	Meeting string
	Message string
	Emoji   string
}

// Tokenize splits a free-text line into tokens. A token is a maximal run of
// non-space, non-quote bytes; a complete "..." segment inside a token is
// unwrapped so `meeting="Team Sync"` becomes one token `meeting=Team Sync`.
// A stray quote without a closing partner terminates the token instead of
// failing: this is user-typed chat input and must never crash the handler.
func Tokenize(line string) []string {
	var tokens []string

	i := 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i >= len(line) {
			break
		}

		var token strings.Builder
		for i < len(line) && line[i] != ' ' {
			if line[i] == '"' {
				end := strings.IndexByte(line[i+1:], '"')
				if end < 0 {
					i++
					break
				}
				token.WriteString(line[i+1 : i+1+end])
				i += end + 2
				continue
			}
			token.WriteByte(line[i])
			i++
		}

		if token.Len() > 0 {
			tokens = append(tokens, token.String())
		}
	}

	return tokens
}

// Parse tokenizes a line and builds a Command. The subcommand match is
// case-sensitive and exact; an empty line yields KindUnknown with an empty
// name.
func Parse(line string) Command {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return Command{Kind: KindUnknown}
	}

	cmd := Command{Name: tokens[0]}
	switch tokens[0] {
	case "show":
		cmd.Kind = KindShow
	case "set":
		cmd.Kind = KindSet
	case "remove":
		cmd.Kind = KindRemove
	case "set-default":
		cmd.Kind = KindSetDefault
	case "remove-default":
		cmd.Kind = KindRemoveDefault
	default:
		cmd.Kind = KindUnknown
	}

	cmd.Args = parseArguments(tokens[1:])
	return cmd
}

func parseArguments(tokens []string) Arguments {
	var args Arguments
	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		switch key {
		case "meeting":
			args.Meeting = value
		case "message":
			args.Message = value
		case "emoji":
			args.Emoji = value
		}
	}
	return args
}
