package describe

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// sqlLexer tokenizes SQL just enough to find parameter placeholders without
// being fooled by string literals, quoted identifiers, or comments. Rules
// are tried in order, so comments and literals consume their contents before
// the placeholder rules can see them.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "LineComment", Pattern: `--[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*[^/])*\*/`},
	{Name: "String", Pattern: `'(?:''|[^'])*'`},
	{Name: "DollarString", Pattern: `\$\$(?:[^$]|\$[^$])*\$\$`},
	{Name: "QuotedIdent", Pattern: "`(?:``|[^`])*`|\"(?:\"\"|[^\"])*\"|\\[[^\\]]*\\]"},
	{Name: "DollarParam", Pattern: `\$\d+`},
	{Name: "NamedParam", Pattern: `@[A-Za-z_]\w*`},
	{Name: "QuestionParam", Pattern: `\?`},
	{Name: "Word", Pattern: `[A-Za-z_]\w*`},
	{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
	{Name: "Symbol", Pattern: `[^\sA-Za-z0-9_]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

func lexSQL(sql string) ([]lexer.Token, error) {
	lex, err := sqlLexer.Lex("", strings.NewReader(sql))
	if err != nil {
		return nil, err
	}
	return lexer.ConsumeAll(lex)
}

// QuestionPlaceholders counts `?` placeholders in a statement. Used for
// backends whose wire protocol does not report parameter counts.
func QuestionPlaceholders(sql string) (int, error) {
	tokens, err := lexSQL(sql)
	if err != nil {
		return 0, err
	}
	sym := sqlLexer.Symbols()["QuestionParam"]
	n := 0
	for _, tok := range tokens {
		if tok.Type == sym {
			n++
		}
	}
	return n, nil
}

// DollarPlaceholders returns the highest N among `$N` placeholders, which is
// the statement's parameter count under Postgres numbering.
func DollarPlaceholders(sql string) (int, error) {
	tokens, err := lexSQL(sql)
	if err != nil {
		return 0, err
	}
	sym := sqlLexer.Symbols()["DollarParam"]
	max := 0
	for _, tok := range tokens {
		if tok.Type != sym {
			continue
		}
		n := 0
		for _, r := range tok.Value[1:] {
			n = n*10 + int(r-'0')
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// NamedPlaceholders counts distinct `@name` placeholders, SQL Server style.
func NamedPlaceholders(sql string) (int, error) {
	tokens, err := lexSQL(sql)
	if err != nil {
		return 0, err
	}
	sym := sqlLexer.Symbols()["NamedParam"]
	seen := map[string]struct{}{}
	for _, tok := range tokens {
		if tok.Type == sym {
			seen[strings.ToLower(tok.Value)] = struct{}{}
		}
	}
	return len(seen), nil
}
