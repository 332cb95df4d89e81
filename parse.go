package hazel

import "strconv"

// parser builds the AST from a token stream. Blocks come in four
// equivalent shapes: an indented block, a colon followed by an indented
// or braced block or a single inline statement, a braced block, and a
// bare statement run. indentLevel is the width of the innermost open
// indented block and decides which DEDENT tokens end it.
type parser struct {
	tokens      []token
	pos         int
	indentLevel int
}

// parseBlockTokens parses a token stream as a statement block. Function
// and method bodies enter here.
func parseBlockTokens(tokens []token) (*BlockStmt, *Failure) {
	p := &parser{tokens: tokens}
	return p.parseBlock()
}

func (p *parser) cur() token {
	if p.pos >= len(p.tokens) {
		if n := len(p.tokens); n > 0 {
			return p.tokens[n-1]
		}
		return token{Kind: eofToken}
	}
	return p.tokens[p.pos]
}

func (p *parser) peek(offset int) token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return token{Kind: eofToken}
	}
	return p.tokens[i]
}

func (p *parser) advance() { p.pos++ }

func (p *parser) at(kind tokenKind) bool { return p.cur().Kind == kind }

func (p *parser) atKeyword(words ...string) bool {
	t := p.cur()
	if t.Kind != keywordToken {
		return false
	}
	for _, w := range words {
		if t.Text == w {
			return true
		}
	}
	return false
}

func (p *parser) position() pos {
	t := p.cur()
	return pos{Line: t.Line, Col: t.Col}
}

func (p *parser) expect(kind tokenKind) (token, *Failure) {
	t := p.cur()
	if t.Kind != kind {
		return t, NewFailuref(SyntaxFailure, t.Line, t.Col, "Expected %v, got %v", kind, t)
	}
	p.advance()
	return t, nil
}

func (p *parser) expectKeyword(word string) *Failure {
	t := p.cur()
	if t.Kind != keywordToken || t.Text != word {
		return NewFailuref(SyntaxFailure, t.Line, t.Col, "Expected keyword %q, got %v", word, t)
	}
	p.advance()
	return nil
}

// skipDedentsAtLeast consumes DEDENT tokens that stay at or above the
// given width. A DEDENT below it ends an enclosing block and is left
// for the caller.
func (p *parser) skipDedentsAtLeast(level int) {
	for p.at(dedentToken) && p.cur().Indent >= level {
		p.advance()
	}
}

func (p *parser) skipDedentsAll() {
	for p.at(dedentToken) {
		p.advance()
	}
}

func (p *parser) skipIndents() {
	for p.at(indentToken) {
		p.advance()
	}
}

func (p *parser) consumeIndent() {
	if p.at(indentToken) {
		p.advance()
	}
}

// withIndentLevel runs fn with the block indentation threshold set to
// level, restoring the previous threshold afterward.
func (p *parser) withIndentLevel(level int, fn func() *Failure) *Failure {
	old := p.indentLevel
	p.indentLevel = level
	defer func() { p.indentLevel = old }()
	return fn()
}

// ---------- blocks ----------

func (p *parser) parseBlock() (*BlockStmt, *Failure) {
	switch p.cur().Kind {
	case indentToken:
		return p.parseIndentBlock()
	case colonToken:
		return p.parseColonBlock()
	case lbraceToken:
		return p.parseBraceBlock()
	}
	at := p.position()
	stmts, fail := p.parseStatementsUntilEnd()
	if fail != nil {
		return nil, fail
	}
	return &BlockStmt{pos: at, Stmts: stmts}, nil
}

func (p *parser) parseIndentBlock() (*BlockStmt, *Failure) {
	at := p.position()
	level := p.cur().Indent
	var stmts []Stmt
	fail := p.withIndentLevel(level, func() *Failure {
		if _, fail := p.expect(indentToken); fail != nil {
			return fail
		}
		var fail *Failure
		stmts, fail = p.parseStatementsUntilEnd()
		return fail
	})
	if fail != nil {
		return nil, fail
	}
	p.skipDedentsAtLeast(p.indentLevel)
	return &BlockStmt{pos: at, Stmts: stmts}, nil
}

func (p *parser) parseColonBlock() (*BlockStmt, *Failure) {
	at := p.position()
	if _, fail := p.expect(colonToken); fail != nil {
		return nil, fail
	}
	if p.at(lbraceToken) {
		return p.parseBraceBlock()
	}
	if p.at(indentToken) {
		return p.parseIndentBlock()
	}
	// One inline statement.
	var stmts []Stmt
	for !p.at(rbraceToken) && !p.at(eofToken) {
		if p.atKeyword("else", "catch", "finally") {
			break
		}
		if p.at(dedentToken) && p.cur().Indent < p.indentLevel {
			break
		}
		s, fail := p.parseStatement()
		if fail != nil {
			return nil, fail
		}
		if s != nil {
			stmts = append(stmts, s)
		}
		break
	}
	p.skipDedentsAtLeast(p.indentLevel)
	return &BlockStmt{pos: at, Stmts: stmts}, nil
}

func (p *parser) parseBraceBlock() (*BlockStmt, *Failure) {
	at := p.position()
	if _, fail := p.expect(lbraceToken); fail != nil {
		return nil, fail
	}
	p.skipIndents()
	var stmts []Stmt
	for !p.at(rbraceToken) && !p.at(eofToken) {
		// Indentation inside braces is free-form.
		if p.at(dedentToken) {
			p.advance()
			continue
		}
		p.skipIndents()
		if p.at(rbraceToken) || p.at(eofToken) {
			break
		}
		if p.atKeyword("else", "catch", "finally") {
			break
		}
		s, fail := p.parseStatement()
		if fail != nil {
			return nil, fail
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.skipDedentsAll()
	if p.at(rbraceToken) {
		p.advance()
	}
	return &BlockStmt{pos: at, Stmts: stmts}, nil
}

func (p *parser) parseStatementsUntilEnd() ([]Stmt, *Failure) {
	var stmts []Stmt
	for !p.at(rbraceToken) && !p.at(eofToken) {
		if p.atKeyword("else", "catch", "finally") {
			return stmts, nil
		}
		if p.at(dedentToken) {
			if p.cur().Indent < p.indentLevel {
				return stmts, nil
			}
			p.advance()
			continue
		}
		p.consumeIndent()
		if p.at(rbraceToken) || p.at(eofToken) {
			break
		}
		if p.at(dedentToken) {
			if p.cur().Indent < p.indentLevel {
				break
			}
			p.advance()
			continue
		}
		if p.atKeyword("else", "catch", "finally") {
			break
		}
		s, fail := p.parseStatement()
		if fail != nil {
			return nil, fail
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts, nil
}

// ---------- statements ----------

// stmtKeywords dispatches keyword statements. Initialized in init to
// break the reference cycle with the parse methods.
var stmtKeywords map[string]func(*parser) (Stmt, *Failure)

func init() {
	stmtKeywords = map[string]func(*parser) (Stmt, *Failure){
		"return":   (*parser).parseReturn,
		"break":    (*parser).parseBreak,
		"continue": (*parser).parseContinue,
		"throw":    (*parser).parseThrow,
		"import":   (*parser).parseImport,
		"if":       (*parser).parseIf,
		"for":      (*parser).parseForIn,
		"while":    (*parser).parseWhile,
		"try":      (*parser).parseTry,
	}
}

func (p *parser) parseStatement() (Stmt, *Failure) {
	p.skipIndents()
	p.skipDedentsAtLeast(p.indentLevel)
	for p.at(semicolonToken) {
		p.advance()
	}
	t := p.cur()
	switch t.Kind {
	case eofToken:
		return nil, nil
	case keywordToken:
		if handler, ok := stmtKeywords[t.Text]; ok {
			return handler(p)
		}
	case identToken:
		if t.Text == "echo" {
			return p.parseEcho()
		}
		return p.parseIdentifierStatement()
	}
	at := p.position()
	x, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	return &ExprStmt{pos: at, X: x}, nil
}

// atStatementEnd reports whether the current token ends a valueless
// statement like return or throw.
func (p *parser) atStatementEnd() bool {
	switch p.cur().Kind {
	case semicolonToken, rbraceToken, eofToken, dedentToken:
		return true
	}
	return false
}

func (p *parser) parseReturn() (Stmt, *Failure) {
	at := p.position()
	p.advance()
	var value Expr
	if !p.atStatementEnd() {
		var fail *Failure
		value, fail = p.parseExpression()
		if fail != nil {
			return nil, fail
		}
	}
	return &ReturnStmt{pos: at, Value: value}, nil
}

func (p *parser) parseBreak() (Stmt, *Failure) {
	at := p.position()
	p.advance()
	return &BreakStmt{pos: at}, nil
}

func (p *parser) parseContinue() (Stmt, *Failure) {
	at := p.position()
	p.advance()
	return &ContinueStmt{pos: at}, nil
}

func (p *parser) parseThrow() (Stmt, *Failure) {
	at := p.position()
	p.advance()
	var value Expr
	if !p.atStatementEnd() {
		var fail *Failure
		value, fail = p.parseExpression()
		if fail != nil {
			return nil, fail
		}
	}
	return &ThrowStmt{pos: at, Value: value}, nil
}

func (p *parser) parseEcho() (Stmt, *Failure) {
	at := p.position()
	p.advance()
	value, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	return &EchoStmt{pos: at, Value: value}, nil
}

func (p *parser) parseImport() (Stmt, *Failure) {
	at := p.position()
	if fail := p.expectKeyword("import"); fail != nil {
		return nil, fail
	}
	t := p.cur()
	if t.Kind != identToken {
		return nil, NewFailuref(SyntaxFailure, t.Line, t.Col, "Expected module name after 'import', got %v", t)
	}
	module := t.Text
	p.advance()
	alias := ""
	if p.at(identToken) && p.cur().Text == "as" {
		p.advance()
		t := p.cur()
		if t.Kind != identToken {
			return nil, NewFailuref(SyntaxFailure, t.Line, t.Col, "Expected alias name after 'as', got %v", t)
		}
		alias = t.Text
		p.advance()
	}
	return &ImportStmt{pos: at, Module: module, Alias: alias}, nil
}

func (p *parser) parseIf() (Stmt, *Failure) {
	at := p.position()
	if fail := p.expectKeyword("if"); fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(lparenToken); fail != nil {
		return nil, fail
	}
	cond, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(rparenToken); fail != nil {
		return nil, fail
	}
	p.skipDedentsAtLeast(p.indentLevel)
	then, fail := p.parseBlock()
	if fail != nil {
		return nil, fail
	}
	// An else at the enclosing indentation arrives behind a DEDENT;
	// consume exactly that one so the clause attaches to this if. A
	// DEDENT below the threshold ends the construct instead.
	for p.at(dedentToken) {
		if n := p.peek(1); n.Kind == keywordToken && n.Text == "else" {
			p.advance()
			break
		}
		if p.cur().Indent < p.indentLevel {
			break
		}
		p.advance()
	}
	var elseBlock *BlockStmt
	if p.atKeyword("else") {
		p.advance()
		if p.at(dedentToken) {
			p.advance()
		}
		elseBlock, fail = p.parseBlock()
		if fail != nil {
			return nil, fail
		}
	}
	return &IfStmt{pos: at, Cond: cond, Then: then, Else: elseBlock}, nil
}

func (p *parser) parseForIn() (Stmt, *Failure) {
	at := p.position()
	if fail := p.expectKeyword("for"); fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(lparenToken); fail != nil {
		return nil, fail
	}
	name, fail := p.expect(identToken)
	if fail != nil {
		return nil, fail
	}
	if fail := p.expectKeyword("in"); fail != nil {
		return nil, fail
	}
	iterable, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(rparenToken); fail != nil {
		return nil, fail
	}
	body, fail := p.parseBlock()
	if fail != nil {
		return nil, fail
	}
	return &ForInStmt{pos: at, Var: name.Text, Iterable: iterable, Body: body}, nil
}

func (p *parser) parseWhile() (Stmt, *Failure) {
	at := p.position()
	if fail := p.expectKeyword("while"); fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(lparenToken); fail != nil {
		return nil, fail
	}
	cond, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(rparenToken); fail != nil {
		return nil, fail
	}
	body, fail := p.parseBlock()
	if fail != nil {
		return nil, fail
	}
	return &WhileStmt{pos: at, Cond: cond, Body: body}, nil
}

func (p *parser) parseTry() (Stmt, *Failure) {
	at := p.position()
	if fail := p.expectKeyword("try"); fail != nil {
		return nil, fail
	}
	try, fail := p.parseBlock()
	if fail != nil {
		return nil, fail
	}
	var catches []CatchClause
	for {
		// Same DEDENT dance as if/else for catch and finally clauses.
		for p.at(dedentToken) {
			if n := p.peek(1); n.Kind == keywordToken && (n.Text == "catch" || n.Text == "finally") {
				p.advance()
				break
			}
			if p.cur().Indent < p.indentLevel {
				break
			}
			p.advance()
		}
		if !p.atKeyword("catch") {
			break
		}
		p.advance()
		if _, fail := p.expect(lparenToken); fail != nil {
			return nil, fail
		}
		first, fail := p.expect(identToken)
		if fail != nil {
			return nil, fail
		}
		kind, bind := "", first.Text
		if p.at(identToken) {
			// Two identifiers: a failure kind and the bound name.
			kind, bind = first.Text, p.cur().Text
			p.advance()
		}
		if _, fail := p.expect(rparenToken); fail != nil {
			return nil, fail
		}
		body, fail := p.parseBlock()
		if fail != nil {
			return nil, fail
		}
		catches = append(catches, CatchClause{Kind: kind, Var: bind, Body: body})
	}
	var finally *BlockStmt
	if p.atKeyword("finally") {
		p.advance()
		finally, fail = p.parseBlock()
		if fail != nil {
			return nil, fail
		}
	}
	return &TryStmt{pos: at, Try: try, Catches: catches, Finally: finally}, nil
}

// parseIdentifierStatement handles statements that begin with a name:
// assignment, indexed assignment, dotted assignment, nested function
// definition, increment, or a plain expression statement.
func (p *parser) parseIdentifierStatement() (Stmt, *Failure) {
	at := p.position()
	name := p.cur().Text
	switch p.peek(1).Kind {
	case colonToken:
		// name: (params) => body is sugar for assigning a closure.
		if p.peek(2).Kind == lparenToken {
			p.advance()
			p.advance()
			fn, fail := p.parseArrowFunction()
			if fail != nil {
				return nil, fail
			}
			return &AssignStmt{pos: at, Target: name, Value: fn}, nil
		}
	case assignToken:
		p.advance()
		p.advance()
		value, fail := p.parseExpression()
		if fail != nil {
			return nil, fail
		}
		return &AssignStmt{pos: at, Target: name, Value: value}, nil
	case lbracketToken:
		p.advance()
		p.advance()
		index, fail := p.parseExpression()
		if fail != nil {
			return nil, fail
		}
		if _, fail := p.expect(rbracketToken); fail != nil {
			return nil, fail
		}
		if p.at(assignToken) {
			p.advance()
			value, fail := p.parseExpression()
			if fail != nil {
				return nil, fail
			}
			return &IndexAssignStmt{pos: at, Target: name, Index: index, Value: value}, nil
		}
		access := &IndexExpr{pos: at, Target: &VariableExpr{pos: at, Name: name}, Index: index}
		x, fail := p.parseExpressionSuffix(access)
		if fail != nil {
			return nil, fail
		}
		return &ExprStmt{pos: at, X: x}, nil
	case dotToken:
		p.advance()
		p.advance()
		prop, fail := p.expect(identToken)
		if fail != nil {
			return nil, fail
		}
		if p.at(lbracketToken) {
			p.advance()
			index, fail := p.parseExpression()
			if fail != nil {
				return nil, fail
			}
			if _, fail := p.expect(rbracketToken); fail != nil {
				return nil, fail
			}
			if p.at(assignToken) {
				p.advance()
				value, fail := p.parseExpression()
				if fail != nil {
					return nil, fail
				}
				return &IndexAssignStmt{pos: at, Target: name + "." + prop.Text, Index: index, Value: value}, nil
			}
			propAccess := &MethodCallExpr{pos: at, Recv: &VariableExpr{pos: at, Name: name}, Method: prop.Text}
			access := &IndexExpr{pos: at, Target: propAccess, Index: index}
			x, fail := p.parseExpressionSuffix(access)
			if fail != nil {
				return nil, fail
			}
			return &ExprStmt{pos: at, X: x}, nil
		}
		if p.at(assignToken) {
			p.advance()
			value, fail := p.parseExpression()
			if fail != nil {
				return nil, fail
			}
			return &AssignStmt{pos: at, Target: name + "." + prop.Text, Value: value}, nil
		}
		propAccess := &MethodCallExpr{pos: at, Recv: &VariableExpr{pos: at, Name: name}, Method: prop.Text}
		x, fail := p.parseExpressionSuffix(propAccess)
		if fail != nil {
			return nil, fail
		}
		return &ExprStmt{pos: at, X: x}, nil
	case incrementToken:
		p.advance()
		p.advance()
		return &IncrementStmt{pos: at, Name: name}, nil
	}
	x, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	return &ExprStmt{pos: at, X: x}, nil
}

// parseExpressionSuffix chains member access, calls, indexing and
// postfix increment onto an already-parsed expression.
func (p *parser) parseExpressionSuffix(x Expr) (Expr, *Failure) {
	for {
		switch p.cur().Kind {
		case dotToken:
			p.advance()
			member, fail := p.expect(identToken)
			if fail != nil {
				return nil, fail
			}
			if p.at(lparenToken) {
				at := p.position()
				p.advance()
				args, fail := p.parseArgumentList()
				if fail != nil {
					return nil, fail
				}
				x = &MethodCallExpr{pos: at, Recv: x, Method: member.Text, Args: args}
			} else {
				x = &MethodCallExpr{pos: pos{Line: member.Line, Col: member.Col}, Recv: x, Method: member.Text}
			}
		case lparenToken:
			at := p.position()
			p.advance()
			args, fail := p.parseArgumentList()
			if fail != nil {
				return nil, fail
			}
			if mc, ok := x.(*MethodCallExpr); ok {
				// A member read followed by arguments is the call.
				x = &MethodCallExpr{pos: at, Recv: mc.Recv, Method: mc.Method, Args: args}
			} else {
				x = &CallExpr{pos: at, Callee: x, Args: args}
			}
		case lbracketToken:
			at := p.position()
			p.advance()
			index, fail := p.parseExpression()
			if fail != nil {
				return nil, fail
			}
			if _, fail := p.expect(rbracketToken); fail != nil {
				return nil, fail
			}
			x = &IndexExpr{pos: at, Target: x, Index: index}
		case incrementToken:
			p.advance()
			switch x.(type) {
			case *VariableExpr, *IndexExpr:
				return &PostfixIncExpr{pos: pos{}, Operand: x}, nil
			}
			return x, nil
		default:
			return x, nil
		}
	}
}

func (p *parser) parseArgumentList() ([]Expr, *Failure) {
	var args []Expr
	if !p.at(rparenToken) {
		arg, fail := p.parseExpression()
		if fail != nil {
			return nil, fail
		}
		args = append(args, arg)
		for p.at(commaToken) {
			p.advance()
			arg, fail := p.parseExpression()
			if fail != nil {
				return nil, fail
			}
			args = append(args, arg)
		}
	}
	if _, fail := p.expect(rparenToken); fail != nil {
		return nil, fail
	}
	return args, nil
}

// ---------- expressions ----------

func (p *parser) parseExpression() (Expr, *Failure) {
	p.skipDedentsAtLeast(p.indentLevel)
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, *Failure) {
	left, fail := p.parseAnd()
	if fail != nil {
		return nil, fail
	}
	for p.at(orToken) {
		at := p.position()
		p.advance()
		right, fail := p.parseAnd()
		if fail != nil {
			return nil, fail
		}
		left = &BinaryExpr{pos: at, Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, *Failure) {
	left, fail := p.parseEquality()
	if fail != nil {
		return nil, fail
	}
	for p.at(andToken) {
		at := p.position()
		p.advance()
		right, fail := p.parseEquality()
		if fail != nil {
			return nil, fail
		}
		left = &BinaryExpr{pos: at, Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseEquality() (Expr, *Failure) {
	left, fail := p.parseComparison()
	if fail != nil {
		return nil, fail
	}
	for p.at(eqToken) || p.at(neToken) {
		at := p.position()
		op := "=="
		if p.at(neToken) {
			op = "!="
		}
		p.advance()
		right, fail := p.parseComparison()
		if fail != nil {
			return nil, fail
		}
		left = &BinaryExpr{pos: at, Op: op, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[tokenKind]string{
	ltToken: "<", leToken: "<=", gtToken: ">", geToken: ">=",
}

func (p *parser) parseComparison() (Expr, *Failure) {
	left, fail := p.parseAdditive()
	if fail != nil {
		return nil, fail
	}
	for {
		op, ok := comparisonOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		at := p.position()
		p.advance()
		right, fail := p.parseAdditive()
		if fail != nil {
			return nil, fail
		}
		left = &BinaryExpr{pos: at, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAdditive() (Expr, *Failure) {
	left, fail := p.parseMultiplicative()
	if fail != nil {
		return nil, fail
	}
	for p.at(plusToken) || p.at(minusToken) {
		at := p.position()
		op := "+"
		if p.at(minusToken) {
			op = "-"
		}
		p.advance()
		right, fail := p.parseMultiplicative()
		if fail != nil {
			return nil, fail
		}
		left = &BinaryExpr{pos: at, Op: op, Left: left, Right: right}
	}
	return left, nil
}

var multiplicativeOps = map[tokenKind]string{
	starToken: "*", slashToken: "/", percentToken: "%",
}

func (p *parser) parseMultiplicative() (Expr, *Failure) {
	p.skipDedentsAtLeast(p.indentLevel)
	left, fail := p.parseUnary()
	if fail != nil {
		return nil, fail
	}
	for {
		op, ok := multiplicativeOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		at := p.position()
		p.advance()
		right, fail := p.parseUnary()
		if fail != nil {
			return nil, fail
		}
		left = &BinaryExpr{pos: at, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Expr, *Failure) {
	p.skipDedentsAtLeast(p.indentLevel)
	switch p.cur().Kind {
	case incrementToken:
		at := p.position()
		p.advance()
		operand, fail := p.parseUnary()
		if fail != nil {
			return nil, fail
		}
		switch operand.(type) {
		case *VariableExpr, *IndexExpr:
			return &PrefixIncExpr{pos: at, Operand: operand}, nil
		}
		return nil, NewFailuref(SyntaxFailure, at.Line, at.Col, "Prefix increment can only be applied to variables")
	case notToken:
		at := p.position()
		p.advance()
		operand, fail := p.parseUnary()
		if fail != nil {
			return nil, fail
		}
		return &UnaryExpr{pos: at, Op: "!", Operand: operand}, nil
	case minusToken:
		at := p.position()
		p.advance()
		operand, fail := p.parseUnary()
		if fail != nil {
			return nil, fail
		}
		// -x is sugar for 0 - x.
		return &BinaryExpr{pos: at, Op: "-", Left: &IntLit{pos: at}, Right: operand}, nil
	}
	return p.parsePrimary()
}

// primaryHandlers dispatches primary expressions by token kind.
var primaryHandlers map[tokenKind]func(*parser) (Expr, *Failure)

func init() {
	primaryHandlers = map[tokenKind]func(*parser) (Expr, *Failure){
		booleanToken:  (*parser).parseLiteral,
		numberToken:   (*parser).parseLiteral,
		stringToken:   (*parser).parseLiteral,
		nullToken:     (*parser).parseNullLiteral,
		identToken:    (*parser).parseIdentifierPrimary,
		lparenToken:   (*parser).parseParenExpression,
		lbracketToken: (*parser).parseArrayLiteral,
		lbraceToken:   (*parser).parseDictLiteral,
	}
}

func (p *parser) parsePrimary() (Expr, *Failure) {
	p.skipDedentsAtLeast(p.indentLevel)
	t := p.cur()
	if t.Kind == eofToken {
		return nil, NewFailuref(SyntaxFailure, t.Line, t.Col, "Unexpected end of input")
	}
	if handler, ok := primaryHandlers[t.Kind]; ok {
		x, fail := handler(p)
		if fail != nil {
			return nil, fail
		}
		// Literals take the same member, call and index suffixes as
		// identifiers: "abc".length(), [1, 2][0], {"k": 1}.keys().
		return p.parseExpressionSuffix(x)
	}
	return nil, NewFailuref(SyntaxFailure, t.Line, t.Col, "Unexpected token %v", t)
}

func (p *parser) parseLiteral() (Expr, *Failure) {
	t := p.cur()
	at := pos{Line: t.Line, Col: t.Col}
	p.advance()
	switch t.Kind {
	case booleanToken:
		return &BoolLit{pos: at, Value: t.Text == "true"}, nil
	case numberToken:
		return numberLit(t.Text, at)
	case stringToken:
		return &StringLit{pos: at, Value: t.Text}, nil
	}
	return nil, NewFailuref(SyntaxFailure, t.Line, t.Col, "Unexpected token %v", t)
}

func (p *parser) parseNullLiteral() (Expr, *Failure) {
	at := p.position()
	p.advance()
	return &NullLit{pos: at}, nil
}

func (p *parser) parseIdentifierPrimary() (Expr, *Failure) {
	t := p.cur()
	at := pos{Line: t.Line, Col: t.Col}
	name := t.Text
	p.advance()
	switch p.cur().Kind {
	case lparenToken:
		callAt := p.position()
		p.advance()
		args, fail := p.parseArgumentList()
		if fail != nil {
			return nil, fail
		}
		return p.parseExpressionSuffix(&CallExpr{pos: callAt, Name: name, Args: args})
	case dotToken:
		x := Expr(&VariableExpr{pos: at, Name: name})
		for p.at(dotToken) {
			p.advance()
			member, fail := p.expect(identToken)
			if fail != nil {
				return nil, fail
			}
			if p.at(lparenToken) {
				callAt := p.position()
				p.advance()
				args, fail := p.parseArgumentList()
				if fail != nil {
					return nil, fail
				}
				x = &MethodCallExpr{pos: callAt, Recv: x, Method: member.Text, Args: args}
			} else {
				x = &MethodCallExpr{pos: at, Recv: x, Method: member.Text}
			}
		}
		return p.parseExpressionSuffix(x)
	case incrementToken:
		p.advance()
		return &PostfixIncExpr{pos: at, Operand: &VariableExpr{pos: at, Name: name}}, nil
	case lbracketToken:
		brAt := p.position()
		p.advance()
		index, fail := p.parseExpression()
		if fail != nil {
			return nil, fail
		}
		if _, fail := p.expect(rbracketToken); fail != nil {
			return nil, fail
		}
		return &IndexExpr{pos: brAt, Target: &VariableExpr{pos: at, Name: name}, Index: index}, nil
	}
	return &VariableExpr{pos: at, Name: name}, nil
}

// isArrowAhead decides, by pure lookahead from an already-consumed
// opening paren, whether the parenthesized form is a closure parameter
// list: () => or (a, b, ...) =>.
func (p *parser) isArrowAhead() bool {
	i := 0
	if p.peek(i).Kind == rparenToken {
		return p.peek(i+1).Kind == arrowToken
	}
	for {
		if p.peek(i).Kind != identToken {
			return false
		}
		i++
		switch p.peek(i).Kind {
		case commaToken:
			i++
		case rparenToken:
			return p.peek(i+1).Kind == arrowToken
		default:
			return false
		}
	}
}

func (p *parser) parseParenExpression() (Expr, *Failure) {
	at := p.position()
	p.advance() // (
	if p.isArrowAhead() {
		var params []string
		for !p.at(rparenToken) {
			t, fail := p.expect(identToken)
			if fail != nil {
				return nil, fail
			}
			params = append(params, t.Text)
			if p.at(commaToken) {
				p.advance()
			}
		}
		p.advance() // )
		p.advance() // =>
		body, fail := p.parseBlock()
		if fail != nil {
			return nil, fail
		}
		return &ArrowFuncExpr{pos: at, Params: params, Body: body}, nil
	}
	if p.at(rparenToken) {
		t := p.cur()
		return nil, NewFailuref(SyntaxFailure, t.Line, t.Col, "Unexpected token %v", t)
	}
	x, fail := p.parseExpression()
	if fail != nil {
		return nil, fail
	}
	if _, fail := p.expect(rparenToken); fail != nil {
		return nil, fail
	}
	return x, nil
}

// parseArrowFunction parses (params) => body where the opening paren
// has not been consumed. Used by the name: (params) => body statement
// form.
func (p *parser) parseArrowFunction() (Expr, *Failure) {
	at := p.position()
	var params []string
	if p.at(lparenToken) {
		p.advance()
		if !p.at(rparenToken) {
			t, fail := p.expect(identToken)
			if fail != nil {
				return nil, fail
			}
			params = append(params, t.Text)
			for p.at(commaToken) {
				p.advance()
				t, fail := p.expect(identToken)
				if fail != nil {
					return nil, fail
				}
				params = append(params, t.Text)
			}
		}
		if _, fail := p.expect(rparenToken); fail != nil {
			return nil, fail
		}
	}
	if _, fail := p.expect(arrowToken); fail != nil {
		return nil, fail
	}
	body, fail := p.parseBlock()
	if fail != nil {
		return nil, fail
	}
	return &ArrowFuncExpr{pos: at, Params: params, Body: body}, nil
}

func (p *parser) parseArrayLiteral() (Expr, *Failure) {
	at := p.position()
	p.advance() // [
	var elems []Expr
	if !p.at(rbracketToken) {
		e, fail := p.parseExpression()
		if fail != nil {
			return nil, fail
		}
		elems = append(elems, e)
		for p.at(commaToken) {
			p.advance()
			e, fail := p.parseExpression()
			if fail != nil {
				return nil, fail
			}
			elems = append(elems, e)
		}
	}
	if _, fail := p.expect(rbracketToken); fail != nil {
		return nil, fail
	}
	return &ArrayLit{pos: at, Elems: elems}, nil
}

func (p *parser) parseDictLiteral() (Expr, *Failure) {
	at := p.position()
	p.advance() // {
	p.skipIndents()
	lit := &DictLit{pos: at}
	if !p.at(rbraceToken) {
		if fail := p.parseDictPair(lit); fail != nil {
			return nil, fail
		}
		for p.at(commaToken) {
			p.advance()
			p.skipIndents()
			if p.at(rbraceToken) {
				break
			}
			if fail := p.parseDictPair(lit); fail != nil {
				return nil, fail
			}
		}
	}
	p.skipDedentsAll()
	if _, fail := p.expect(rbraceToken); fail != nil {
		return nil, fail
	}
	return lit, nil
}

func (p *parser) parseDictPair(lit *DictLit) *Failure {
	key, fail := p.expect(stringToken)
	if fail != nil {
		return fail
	}
	if _, fail := p.expect(colonToken); fail != nil {
		return fail
	}
	value, fail := p.parseExpression()
	if fail != nil {
		return fail
	}
	lit.DictKeys = append(lit.DictKeys, key.Text)
	lit.Values = append(lit.Values, value)
	return nil
}

// numberLit converts a number token's text into an int or float
// literal; the presence of a dot selects float.
func numberLit(text string, at pos) (Expr, *Failure) {
	for _, c := range text {
		if c == '.' {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, NewFailuref(SyntaxFailure, at.Line, at.Col, "Invalid number %q", text)
			}
			return &FloatLit{pos: at, Value: f}, nil
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, NewFailuref(SyntaxFailure, at.Line, at.Col, "Invalid number %q", text)
	}
	return &IntLit{pos: at, Value: n}, nil
}
