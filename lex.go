package hazel

// lexer tokenizes hazel source text. Indentation is significant: the
// lexer keeps a stack of open indentation widths and emits INDENT and
// DEDENT tokens as lines move in and out. Bodies extracted from a YAML
// document start at an arbitrary position, so the lexer is seeded with
// the starting line and column to keep reported positions document
// relative.
type lexer struct {
	src         []rune
	pos         int
	line, col   int
	indents     []int
	atLineStart bool
}

var keywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true,
	"try": true, "catch": true, "finally": true,
	"return": true, "break": true, "continue": true,
	"import": true, "throw": true, "in": true,
}

func newLexer(src string, startLine, startCol int) *lexer {
	return &lexer{
		src:  []rune(src),
		line: startLine,
		// advance increments the column before the first token is cut.
		col:         startCol - 1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// tokenize converts source text into tokens. The returned failure, if
// any, is Syntax kind.
func tokenize(src string, startLine, startCol int) ([]token, *Failure) {
	return newLexer(src, startLine, startCol).run()
}

func (l *lexer) cur() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) peek() (rune, bool) {
	if l.pos+1 >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos+1], true
}

func (l *lexer) advance() {
	if c, ok := l.cur(); ok && c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	l.pos++
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool { return isIdentStart(c) || isDigit(c) }

func (l *lexer) run() ([]token, *Failure) {
	var tokens []token
	for {
		c, ok := l.cur()
		if !ok {
			break
		}
		if l.atLineStart {
			tokens = l.lineStart(tokens)
			continue
		}
		if c == '\n' {
			l.advance()
			l.atLineStart = true
			continue
		}
		if c == '#' {
			l.skipComment()
			l.atLineStart = true
			continue
		}
		if isSpace(c) {
			l.skipSpaces()
			continue
		}
		line, col := l.line, l.col
		l.atLineStart = false
		switch {
		case isDigit(c):
			tokens = append(tokens, l.number(line, col))
		case c == '"':
			tokens = append(tokens, l.string(line, col))
		case isIdentStart(c):
			tokens = append(tokens, l.identifier(line, col))
		default:
			t, fail := l.operator(c, line, col)
			if fail != nil {
				return nil, fail
			}
			tokens = append(tokens, t)
		}
	}
	// Close every open indentation level at end of input.
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		tokens = append(tokens, token{Kind: dedentToken, Indent: l.indents[len(l.indents)-1], Line: l.line, Col: l.col})
	}
	tokens = append(tokens, token{Kind: eofToken, Line: l.line, Col: l.col})
	return tokens, nil
}

// lineStart measures leading whitespace and emits INDENT or DEDENT
// tokens. A line that begins with a non-space character closes every
// open level; blank lines have no effect on the stack.
func (l *lexer) lineStart(tokens []token) []token {
	c, _ := l.cur()
	if !isSpace(c) {
		if l.indents[len(l.indents)-1] > 0 {
			for l.indents[len(l.indents)-1] > 0 {
				l.indents = l.indents[:len(l.indents)-1]
				tokens = append(tokens, token{Kind: dedentToken, Indent: l.indents[len(l.indents)-1], Line: l.line, Col: l.col})
			}
		}
		l.atLineStart = false
		return tokens
	}
	indent := 0
	for {
		c, ok := l.cur()
		if !ok || !isSpace(c) || c == '\n' {
			break
		}
		switch c {
		case ' ':
			indent++
		case '\t':
			indent += 4
		}
		l.advance()
	}
	if c, ok := l.cur(); !ok || c == '\n' {
		l.atLineStart = true
		if ok {
			l.advance()
		}
		return tokens
	}
	top := l.indents[len(l.indents)-1]
	if indent > top {
		l.indents = append(l.indents, indent)
		tokens = append(tokens, token{Kind: indentToken, Indent: indent, Line: l.line, Col: l.col})
	} else if indent < top {
		for indent < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			tokens = append(tokens, token{Kind: dedentToken, Indent: l.indents[len(l.indents)-1], Line: l.line, Col: l.col})
		}
	}
	l.atLineStart = false
	return tokens
}

func (l *lexer) skipSpaces() {
	for {
		c, ok := l.cur()
		if !ok || !isSpace(c) || c == '\n' {
			return
		}
		l.advance()
	}
}

func (l *lexer) skipComment() {
	for {
		c, ok := l.cur()
		if !ok || c == '\n' {
			return
		}
		l.advance()
	}
}

// number scans an integer or decimal literal. The token text keeps the
// dot, which is how the parser distinguishes float literals.
func (l *lexer) number(line, col int) token {
	var text []rune
	for {
		c, ok := l.cur()
		if !ok || !isDigit(c) {
			break
		}
		text = append(text, c)
		l.advance()
	}
	if c, ok := l.cur(); ok && c == '.' {
		if p, ok := l.peek(); ok && isDigit(p) {
			text = append(text, c)
			l.advance()
			for {
				c, ok := l.cur()
				if !ok || !isDigit(c) {
					break
				}
				text = append(text, c)
				l.advance()
			}
		}
	}
	return token{Kind: numberToken, Text: string(text), Line: line, Col: col}
}

func (l *lexer) string(line, col int) token {
	var text []rune
	l.advance() // opening quote
	for {
		c, ok := l.cur()
		if !ok || c == '"' {
			break
		}
		if c == '\\' {
			l.advance()
			e, ok := l.cur()
			if !ok {
				break
			}
			switch e {
			case 'n':
				text = append(text, '\n')
			case 't':
				text = append(text, '\t')
			case 'r':
				text = append(text, '\r')
			case '\\':
				text = append(text, '\\')
			case '"':
				text = append(text, '"')
			default:
				// Unknown escape, keep it verbatim.
				text = append(text, '\\', e)
			}
			l.advance()
			continue
		}
		text = append(text, c)
		l.advance()
	}
	l.advance() // closing quote
	return token{Kind: stringToken, Text: string(text), Line: line, Col: col}
}

func (l *lexer) identifier(line, col int) token {
	var text []rune
	for {
		c, ok := l.cur()
		if !ok || !isIdentPart(c) {
			break
		}
		text = append(text, c)
		l.advance()
	}
	name := string(text)
	switch {
	case keywords[name]:
		return token{Kind: keywordToken, Text: name, Line: line, Col: col}
	case name == "true" || name == "false":
		return token{Kind: booleanToken, Text: name, Line: line, Col: col}
	case name == "null":
		return token{Kind: nullToken, Text: name, Line: line, Col: col}
	}
	return token{Kind: identToken, Text: name, Line: line, Col: col}
}

// pair emits a two-character token when the next rune matches, falling
// back to the single-character kind.
func (l *lexer) pair(next rune, two tokenKind, twoText string, one tokenKind, oneText string, line, col int) token {
	l.advance()
	if c, ok := l.cur(); ok && c == next {
		l.advance()
		return token{Kind: two, Text: twoText, Line: line, Col: col}
	}
	return token{Kind: one, Text: oneText, Line: line, Col: col}
}

var singleOperators = map[rune]tokenKind{
	'-': minusToken,
	'*': starToken,
	'/': slashToken,
	'%': percentToken,
	'(': lparenToken,
	')': rparenToken,
	'{': lbraceToken,
	'}': rbraceToken,
	'[': lbracketToken,
	']': rbracketToken,
	';': semicolonToken,
	',': commaToken,
	'.': dotToken,
	':': colonToken,
}

func (l *lexer) operator(c rune, line, col int) (token, *Failure) {
	switch c {
	case '!':
		return l.pair('=', neToken, "!=", notToken, "!", line, col), nil
	case '<':
		return l.pair('=', leToken, "<=", ltToken, "<", line, col), nil
	case '>':
		return l.pair('=', geToken, ">=", gtToken, ">", line, col), nil
	case '+':
		return l.pair('+', incrementToken, "++", plusToken, "+", line, col), nil
	case '=':
		l.advance()
		if n, ok := l.cur(); ok {
			switch n {
			case '=':
				l.advance()
				return token{Kind: eqToken, Text: "==", Line: line, Col: col}, nil
			case '>':
				l.advance()
				return token{Kind: arrowToken, Text: "=>", Line: line, Col: col}, nil
			}
		}
		return token{Kind: assignToken, Text: "=", Line: line, Col: col}, nil
	case '&':
		l.advance()
		if n, ok := l.cur(); ok && n == '&' {
			l.advance()
			return token{Kind: andToken, Text: "&&", Line: line, Col: col}, nil
		}
		return token{}, NewFailuref(SyntaxFailure, l.line, l.col, "Invalid character '&'")
	case '|':
		l.advance()
		if n, ok := l.cur(); ok && n == '|' {
			l.advance()
			return token{Kind: orToken, Text: "||", Line: line, Col: col}, nil
		}
		return token{}, NewFailuref(SyntaxFailure, l.line, l.col, "Invalid character '|'")
	}
	if kind, ok := singleOperators[c]; ok {
		l.advance()
		return token{Kind: kind, Text: string(c), Line: line, Col: col}, nil
	}
	return token{}, NewFailuref(SyntaxFailure, l.line, l.col, "Invalid character %q", c)
}
