package hazel

import "fmt"

// tokenKind is a type of token output by the tokenizer.
type tokenKind int

const (
	badToken tokenKind = iota
	eofToken
	indentToken
	dedentToken
	numberToken
	stringToken
	booleanToken
	nullToken
	identToken
	keywordToken
	plusToken
	incrementToken
	minusToken
	starToken
	slashToken
	percentToken
	lparenToken
	rparenToken
	lbraceToken
	rbraceToken
	lbracketToken
	rbracketToken
	semicolonToken
	commaToken
	dotToken
	colonToken
	assignToken
	eqToken
	neToken
	ltToken
	leToken
	gtToken
	geToken
	notToken
	andToken
	orToken
	arrowToken
)

var tokenNames = [...]string{
	badToken:       "bad",
	eofToken:       "EOF",
	indentToken:    "INDENT",
	dedentToken:    "DEDENT",
	numberToken:    "number",
	stringToken:    "string",
	booleanToken:   "boolean",
	nullToken:      "null",
	identToken:     "identifier",
	keywordToken:   "keyword",
	plusToken:      "+",
	incrementToken: "++",
	minusToken:     "-",
	starToken:      "*",
	slashToken:     "/",
	percentToken:   "%",
	lparenToken:    "(",
	rparenToken:    ")",
	lbraceToken:    "{",
	rbraceToken:    "}",
	lbracketToken:  "[",
	rbracketToken:  "]",
	semicolonToken: ";",
	commaToken:     ",",
	dotToken:       ".",
	colonToken:     ":",
	assignToken:    "=",
	eqToken:        "==",
	neToken:        "!=",
	ltToken:        "<",
	leToken:        "<=",
	gtToken:        ">",
	geToken:        ">=",
	notToken:       "!",
	andToken:       "&&",
	orToken:        "||",
	arrowToken:     "=>",
}

func (k tokenKind) String() string {
	if k < badToken || int(k) >= len(tokenNames) {
		return fmt.Sprintf("tokenKind(%d)", int(k))
	}
	return tokenNames[k]
}

// token is a single lexical element.
type token struct {
	// Kind is the kind of the token.
	Kind tokenKind
	// Text is the token's text. For numbers it is the literal as written;
	// for strings it is the value with escapes applied; for keywords and
	// identifiers it is the name.
	Text string
	// Indent is the indentation width carried by INDENT and DEDENT tokens.
	// An INDENT carries the new width; a DEDENT carries the width that
	// remains open after the pop.
	Indent int
	// Line and Col are the token's position in the source.
	Line, Col int
}

func (t token) String() string {
	switch t.Kind {
	case indentToken, dedentToken:
		return fmt.Sprintf("%v(%d)", t.Kind, t.Indent)
	case numberToken, stringToken, booleanToken, identToken, keywordToken:
		return fmt.Sprintf("%v(%q)", t.Kind, t.Text)
	}
	return t.Kind.String()
}
