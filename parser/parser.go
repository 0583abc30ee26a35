// Package parser implements the recursive-descent parser that turns a
// token stream into an *ast.Node tree: automatic semicolon insertion,
// precedence-climbing expressions, the full statement grammar, and the
// version-gated XML-literal deprecation check.
package parser

import (
	"strconv"

	"github.com/legacyscript/jscore/ast"
	"github.com/legacyscript/jscore/errs"
	"github.com/legacyscript/jscore/scanner"
	"github.com/legacyscript/jscore/token"
)

// bailout unwinds the parser to its entry point on the first error,
// mirroring the single-error-aborts-parsing propagation policy: nothing
// downstream of a failure is worth continuing to build.
type bailout struct{}

type parser struct {
	sc      *scanner.Scanner
	list    *errs.List
	version Version

	lastScanErr *errs.Diagnostic
}

func newParser(text string, base token.Offset, version Version, list *errs.List) *parser {
	p := &parser{list: list, version: version}
	p.sc = scanner.New(text, base, p.onScanErr)
	return p
}

// onScanErr is wired in as the scanner's error handler. It only records
// the diagnostic; the parser decides whether and when to act on it, once
// it actually advances past the ERROR token the diagnostic describes.
func (p *parser) onScanErr(offset token.Offset, code errs.Code, args map[string]any) {
	p.lastScanErr = &errs.Diagnostic{Offset: offset, Code: code, Args: args}
}

// fail records a diagnostic and aborts the current parse.
func (p *parser) fail(offset token.Offset, code errs.Code, args map[string]any) {
	p.list.AddNewf(offset, code, args)
	panic(bailout{})
}

// failScan aborts using the most recently scanned diagnostic, for the case
// where advance() itself reports a lexical ERROR token.
func (p *parser) failScan() {
	d := p.lastScanErr
	if d == nil {
		d = &errs.Diagnostic{Code: errs.SyntaxError}
	}
	p.fail(d.Offset, d.Code, d.Args)
}

func (p *parser) peek() token.Token         { return p.sc.Peek() }
func (p *parser) peekSameLine() token.Token { return p.sc.PeekSameLine() }

// advance consumes and returns the next significant token, aborting the
// parse if the scanner reports it as an ERROR token.
func (p *parser) advance() token.Token {
	t, err := p.sc.Advance()
	if err != nil {
		p.failScan()
	}
	return t
}

// advanceRegexp forces the upcoming "/" (if any) to rescan as a regexp
// literal before consuming it, per the scanner's regexp-vs-divide contract.
func (p *parser) advanceRegexp() token.Token {
	p.sc.NextWithRegexp()
	return p.advance()
}

// expect consumes the next token and fails with expected_tok if its Kind
// doesn't match.
func (p *parser) expect(kind token.Kind) token.Token {
	t := p.advance()
	if t.Kind != kind {
		p.fail(t.Start, errs.ExpectedTok, map[string]any{"token": kind.String()})
	}
	return t
}

// autoSemicolon implements §4.3.1: same-line peek decides between ASI and
// a mandatory explicit semicolon.
func (p *parser) autoSemicolon(tentativeEnd token.Offset) (end token.Offset, noSemi bool) {
	t := p.peekSameLine()
	switch t.Kind {
	case token.EOF, token.EOL, token.RC:
		return tentativeEnd, true
	}
	semi := p.advance()
	if semi.Kind != token.SEMI {
		p.fail(semi.Start, errs.SemiBeforeStmnt, nil)
	}
	return semi.End, false
}

func leaf(kind ast.NodeKind, t token.Token) *ast.Node {
	n := ast.NewNode(kind, t.Start, t.End)
	if t.HasAtom() {
		n.Atom = t.Atom
		n.HasAtom = true
	}
	return n
}

// reserved builds the null-offset "grouping" node §9 describes, used for
// the for-header bundle and the try/catch lexical-scope wrapper.
func reserved(kind ast.NodeKind) *ast.Node {
	return &ast.Node{Kind: kind, ChildIndex: -1}
}

func numberNode(t token.Token) *ast.Node {
	n := leaf(ast.NUMBER, t)
	n.NumericValue = parseNumericValue(t.Atom)
	n.HasValue = true
	return n
}

// parseNumericValue computes the float64 value of a NUMBER lexeme per the
// data model's base-selection invariant: base 16 for a 0x/0X prefix, base
// 8 for a leading-zero all-digit literal, decimal otherwise. A
// leading-zero literal containing 8 or 9 isn't valid octal; it is treated
// as decimal, matching how real engines long ago handled "non-octal
// decimal" legacy literals.
func parseNumericValue(lit string) float64 {
	if len(lit) > 1 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		v, _ := strconv.ParseUint(lit[2:], 16, 64)
		return float64(v)
	}
	if len(lit) > 1 && lit[0] == '0' && isAllDecimalDigits(lit[1:]) {
		if v, err := strconv.ParseUint(lit[1:], 8, 64); err == nil {
			return float64(v)
		}
	}
	v, _ := strconv.ParseFloat(lit, 64)
	return v
}

func isAllDecimalDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------

func (p *parser) parseScript() *ast.Node {
	start := p.peek().Start
	var stmts []*ast.Node
	for p.peek().Kind != token.EOF {
		stmts = append(stmts, p.parseStatement(true))
	}
	end := start
	if len(stmts) > 0 && stmts[len(stmts)-1] != nil {
		end = stmts[len(stmts)-1].End
	}
	n := ast.NewNode(ast.SCRIPT, start, end)
	for _, s := range stmts {
		n.AddChild(s)
	}
	return n
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// parseStatement parses one statement. topLevel is true at the script top
// level and at the top of a function body; a FUNCTION keyword anywhere
// else in statement position is still accepted but flagged with the
// closure-hoist opcode per §4.3.3's edge case.
func (p *parser) parseStatement(topLevel bool) *ast.Node {
	t := p.peek()
	switch t.Kind {
	case token.EOF:
		p.fail(t.Start, errs.EOF, nil)
	case token.LC:
		return p.parseBlock(false)
	case token.SEMI:
		p.advance()
		return ast.NewNode(ast.EMPTY, t.Start, t.End)
	case token.VAR:
		return p.parseVarStatement()
	case token.IF:
		return p.parseIf()
	case token.DO:
		return p.parseDoWhile()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.CONTINUE:
		return p.parseContinueBreak(ast.CONTINUE)
	case token.BREAK:
		return p.parseContinueBreak(ast.BREAK)
	case token.RETURN:
		return p.parseReturn()
	case token.WITH:
		return p.parseWith()
	case token.SWITCH:
		return p.parseSwitch()
	case token.THROW:
		return p.parseThrow()
	case token.TRY:
		return p.parseTry()
	case token.FUNCTION:
		return p.parseFunction(true, topLevel)
	case token.DEBUGGER:
		p.advance()
		end, noSemi := p.autoSemicolon(t.End)
		n := ast.NewNode(ast.DEBUGGER, t.Start, end)
		n.NoSemi = noSemi
		return n
	}
	return p.parseExpressionStatement()
}

// parseBlock parses a "{ ... }" statement list. topLevel is forwarded to
// each direct child's parseStatement call; it is true only when this
// block is a function body, per §4.3.3's closure-hoist edge case.
func (p *parser) parseBlock(topLevel bool) *ast.Node {
	open := p.expect(token.LC)
	var stmts []*ast.Node
	for p.peek().Kind != token.RC {
		stmts = append(stmts, p.parseStatement(topLevel))
	}
	closeTok := p.expect(token.RC)
	n := ast.NewNode(ast.BLOCK, open.Start, closeTok.End)
	for _, s := range stmts {
		n.AddChild(s)
	}
	return n
}

func (p *parser) parseVarStatement() *ast.Node {
	start := p.advance().Start // VAR
	decls := p.parseVarDeclList(true)
	last := start
	if len(decls) > 0 {
		last = decls[len(decls)-1].End
	}
	end, noSemi := p.autoSemicolon(last)
	n := ast.NewNode(ast.VAR, start, end)
	n.NoSemi = noSemi
	for _, d := range decls {
		n.AddChild(d)
	}
	return n
}

// parseVarDeclList parses comma-separated NAME(=init)? entries. Each
// binding is itself represented as a NAME node, carrying the initializer
// (if any) as its single child, matching the grammar's production that
// lets a bare NAME and a NAME-with-initializer share one node shape.
// allowIn is threaded through to each initializer's expression grammar so
// a for-header's "var i = a in b" parses i's initializer as just "a",
// leaving "in b" for the enclosing for-in rewrite to recognize.
func (p *parser) parseVarDeclList(allowIn bool) []*ast.Node {
	var decls []*ast.Node
	for {
		nameTok := p.expect(token.NAME)
		decl := leaf(ast.NAME, nameTok)
		if p.peek().Kind == token.ASSIGN {
			p.advance()
			init := p.parseAssignExpr(allowIn)
			decl.End = init.End
			decl.AddChild(init)
		}
		decls = append(decls, decl)
		if p.peek().Kind != token.COMMA {
			break
		}
		p.advance()
	}
	return decls
}

func (p *parser) parseIf() *ast.Node {
	start := p.advance().Start // IF
	p.expect(token.LP)
	cond := p.parseExpr(true)
	p.expect(token.RP)
	then := p.parseStatement(false)
	end := then.End
	var elseStmt *ast.Node
	if p.peek().Kind == token.ELSE {
		p.advance()
		elseStmt = p.parseStatement(false)
		end = elseStmt.End
	}
	n := ast.NewNode(ast.IF, start, end)
	n.AddChild(cond)
	n.AddChild(then)
	n.AddChild(elseStmt)
	return n
}

func (p *parser) parseDoWhile() *ast.Node {
	start := p.advance().Start // DO
	body := p.parseStatement(false)
	p.expect(token.WHILE)
	p.expect(token.LP)
	cond := p.parseExpr(true)
	closeTok := p.expect(token.RP)
	end, noSemi := p.autoSemicolon(closeTok.End)
	n := ast.NewNode(ast.DOWHILE, start, end)
	n.NoSemi = noSemi
	n.AddChild(body)
	n.AddChild(cond)
	return n
}

func (p *parser) parseWhile() *ast.Node {
	start := p.advance().Start // WHILE
	p.expect(token.LP)
	cond := p.parseExpr(true)
	p.expect(token.RP)
	body := p.parseStatement(false)
	n := ast.NewNode(ast.WHILE, start, body.End)
	n.AddChild(cond)
	n.AddChild(body)
	return n
}

// parseFor implements §4.3.3's three-branch dispatch and the for-in
// rewrite.
func (p *parser) parseFor() *ast.Node {
	start := p.advance().Start // FOR
	p.expect(token.LP)

	var head *ast.Node // VAR decl-list node, or an expression, parsed with allowin=false
	switch p.peek().Kind {
	case token.VAR:
		varStart := p.advance().Start
		decls := p.parseVarDeclList(false)
		v := ast.NewNode(ast.VAR, varStart, varStart)
		if len(decls) > 0 {
			v.End = decls[len(decls)-1].End
		}
		for _, d := range decls {
			v.AddChild(d)
		}
		head = v
	case token.SEMI:
		head = nil
	default:
		head = p.parseExpr(false)
	}

	if p.peek().Kind == token.IN {
		p.advance()
		obj := p.parseExpr(true)
		p.expect(token.RP)
		body := p.parseStatement(false)
		n := ast.NewNode(ast.FOR, start, body.End)
		n.Opcode = ast.FORIN
		n.AddChild(head)
		n.AddChild(obj)
		n.AddChild(body)
		return n
	}

	p.expect(token.SEMI)
	var cond *ast.Node
	if p.peek().Kind != token.SEMI {
		cond = p.parseExpr(true)
	}
	p.expect(token.SEMI)
	var update *ast.Node
	if p.peek().Kind != token.RP {
		update = p.parseExpr(true)
	}
	p.expect(token.RP)
	body := p.parseStatement(false)

	bundle := reserved(ast.BLOCK)
	bundle.AddChild(head)
	bundle.AddChild(cond)
	bundle.AddChild(update)

	n := ast.NewNode(ast.FOR, start, body.End)
	n.Opcode = ast.FOROP
	n.AddChild(bundle)
	n.AddChild(body)
	return n
}

func (p *parser) parseContinueBreak(kind ast.NodeKind) *ast.Node {
	start := p.advance().Start
	var label *ast.Node
	end := start
	// A label is recognised only on the same line (§4.3.3).
	if t := p.peekSameLine(); t.Kind == token.NAME {
		lt := p.advance()
		label = leaf(ast.NAME, lt)
		end = lt.End
	}
	e, noSemi := p.autoSemicolon(end)
	n := ast.NewNode(kind, start, e)
	n.NoSemi = noSemi
	n.AddChild(label)
	return n
}

func (p *parser) parseReturn() *ast.Node {
	start := p.advance().Start
	var expr *ast.Node
	end := start
	switch t := p.peekSameLine(); t.Kind {
	case token.EOF, token.EOL, token.SEMI, token.RC:
		// no expression
	default:
		expr = p.parseExpr(true)
		end = expr.End
	}
	e, noSemi := p.autoSemicolon(end)
	n := ast.NewNode(ast.RETURN, start, e)
	n.NoSemi = noSemi
	n.AddChild(expr)
	return n
}

func (p *parser) parseWith() *ast.Node {
	start := p.advance().Start
	p.expect(token.LP)
	obj := p.parseExpr(true)
	p.expect(token.RP)
	body := p.parseStatement(false)
	n := ast.NewNode(ast.WITH, start, body.End)
	n.AddChild(obj)
	n.AddChild(body)
	return n
}

func (p *parser) parseSwitch() *ast.Node {
	start := p.advance().Start
	p.expect(token.LP)
	disc := p.parseExpr(true)
	p.expect(token.RP)
	p.expect(token.LC)
	var cases []*ast.Node
	seenDefault := false
	for p.peek().Kind != token.RC {
		switch p.peek().Kind {
		case token.CASE:
			caseStart := p.advance().Start
			test := p.parseExpr(true)
			colon := p.expect(token.COLON)
			body, bodyEnd := p.parseCaseBody(colon.End)
			c := ast.NewNode(ast.CASE, caseStart, bodyEnd)
			c.AddChild(test)
			c.AddChild(body)
			cases = append(cases, c)
		case token.DEFAULT:
			if seenDefault {
				p.fail(p.peek().Start, errs.InvalidCase, nil)
			}
			seenDefault = true
			caseStart := p.advance().Start
			colon := p.expect(token.COLON)
			body, bodyEnd := p.parseCaseBody(colon.End)
			c := ast.NewNode(ast.DEFAULT, caseStart, bodyEnd)
			c.AddChild(body)
			cases = append(cases, c)
		default:
			p.fail(p.peek().Start, errs.InvalidCase, nil)
		}
	}
	closeTok := p.expect(token.RC)
	n := ast.NewNode(ast.SWITCH, start, closeTok.End)
	n.AddChild(disc)
	for _, c := range cases {
		n.AddChild(c)
	}
	return n
}

// parseCaseBody collects a case's statement list into a synthetic block
// whose offsets span the enclosed statements, or collapse to the colon's
// offset when the case is empty, per §4.3.3.
func (p *parser) parseCaseBody(colonEnd token.Offset) (*ast.Node, token.Offset) {
	start := colonEnd
	var stmts []*ast.Node
	for {
		switch p.peek().Kind {
		case token.CASE, token.DEFAULT, token.RC, token.EOF:
			end := colonEnd
			if len(stmts) > 0 {
				start = stmts[0].Start
				end = stmts[len(stmts)-1].End
			}
			block := ast.NewNode(ast.BLOCK, start, end)
			for _, s := range stmts {
				block.AddChild(s)
			}
			return block, end
		default:
			stmts = append(stmts, p.parseStatement(false))
		}
	}
}

func (p *parser) parseThrow() *ast.Node {
	start := p.advance().Start
	if t := p.peekSameLine(); t.Kind == token.EOL {
		p.fail(t.Start, errs.ExpectedStatement, nil)
	}
	expr := p.parseExpr(true)
	end, noSemi := p.autoSemicolon(expr.End)
	n := ast.NewNode(ast.THROW, start, end)
	n.NoSemi = noSemi
	n.AddChild(expr)
	return n
}

func (p *parser) parseTry() *ast.Node {
	start := p.advance().Start
	block := p.parseBlock(false)
	var catchNode, finallyNode *ast.Node
	if p.peek().Kind == token.CATCH {
		catchStart := p.advance().Start
		p.expect(token.LP)
		paramTok := p.expect(token.NAME)
		param := leaf(ast.NAME, paramTok)
		p.expect(token.RP)
		body := p.parseBlock(false)
		inner := ast.NewNode(ast.CATCH, catchStart, body.End)
		inner.AddChild(param)
		inner.AddChild(body)
		scope := reserved(ast.LEXICALSCOPE)
		scope.Start, scope.End = inner.Start, inner.End
		scope.AddChild(inner)
		catchNode = scope
	}
	if p.peek().Kind == token.FINALLY {
		p.advance()
		finallyNode = p.parseBlock(false)
	}
	if catchNode == nil && finallyNode == nil {
		p.fail(start, errs.InvalidCatch, nil)
	}
	end := block.End
	if finallyNode != nil {
		end = finallyNode.End
	} else if catchNode != nil {
		end = catchNode.End
	}
	n := ast.NewNode(ast.TRY, start, end)
	n.AddChild(block)
	n.AddChild(catchNode)
	n.AddChild(finallyNode)
	return n
}

// parseFunction parses a function, either in declaration position
// (named, statement-level) or as a primary expression (named or
// anonymous). topLevel controls the declaration opcode per §4.3.3's
// closure-hoist edge case; it is ignored when used as an expression.
func (p *parser) parseFunction(declaration, topLevel bool) *ast.Node {
	start := p.advance().Start // FUNCTION
	var nameTok *token.Token
	if p.peek().Kind == token.NAME {
		t := p.advance()
		nameTok = &t
	}
	p.expect(token.LP)
	args := p.parseFnArgs()
	p.expect(token.RP)
	body := p.parseBlock(true)

	n := ast.NewNode(ast.FUNCTION, start, body.End)
	if nameTok != nil {
		n.Atom = nameTok.Atom
		n.HasAtom = true
	}
	n.FnArgs = args
	n.AddChild(body)

	switch {
	case !declaration:
		if nameTok != nil {
			n.Opcode = ast.NAMEDFUNOBJ
		} else {
			n.Opcode = ast.ANONFUNOBJ
		}
	case topLevel:
		n.Opcode = ast.FUNCDECL
	default:
		n.Opcode = ast.CLOSURE
	}
	return n
}

func (p *parser) parseFnArgs() []*ast.Node {
	var args []*ast.Node
	if p.peek().Kind == token.RP {
		return args
	}
	for {
		t := p.expect(token.NAME)
		args = append(args, leaf(ast.NAME, t))
		if p.peek().Kind != token.COMMA {
			break
		}
		p.advance()
	}
	return args
}

// parseExpressionStatement also covers labelled statements: a bare NAME
// expression immediately followed by ":" is reinterpreted as a label,
// since the grammar can't tell the two apart until that second token is
// seen.
func (p *parser) parseExpressionStatement() *ast.Node {
	start := p.peek().Start
	expr := p.parseExpr(true)
	if expr.Kind == ast.NAME && len(expr.Children) == 0 && p.peek().Kind == token.COLON {
		p.advance()
		stmt := p.parseStatement(false)
		n := ast.NewNode(ast.LABEL, expr.Start, stmt.End)
		n.Atom = expr.Atom
		n.HasAtom = true
		n.AddChild(stmt)
		return n
	}
	end, noSemi := p.autoSemicolon(expr.End)
	n := ast.NewNode(ast.EXPRSTMT, start, end)
	n.NoSemi = noSemi
	n.AddChild(expr)
	return n
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (p *parser) parseExpr(allowIn bool) *ast.Node {
	first := p.parseAssignExpr(allowIn)
	if p.peek().Kind != token.COMMA {
		return first
	}
	n := ast.NewNode(ast.COMMA, first.Start, first.End)
	n.AddChild(first)
	for p.peek().Kind == token.COMMA {
		p.advance()
		next := p.parseAssignExpr(allowIn)
		n.AddChild(next)
		n.End = next.End
	}
	return n
}

var assignOps = map[token.Kind]ast.Opcode{
	token.ASSIGN:  ast.ASSIGNOP,
	token.PLUSEQ:  ast.ADD_ASSIGN,
	token.MINUSEQ: ast.SUB_ASSIGN,
	token.MULEQ:   ast.MUL_ASSIGN,
	token.DIVEQ:   ast.DIV_ASSIGN,
	token.MODEQ:   ast.MOD_ASSIGN,
	token.LSHEQA:  ast.LSH_ASSIGN,
	token.RSHEQ:   ast.RSH_ASSIGN,
	token.URSHEQ:  ast.URSH_ASSIGN,
	token.BANDEQ:  ast.BITAND_ASSIGN,
	token.BOREQ:   ast.BITOR_ASSIGN,
	token.BXOREQ:  ast.BITXOR_ASSIGN,
}

func (p *parser) parseAssignExpr(allowIn bool) *ast.Node {
	lhs := p.parseConditional(allowIn)
	op, ok := assignOps[p.peek().Kind]
	if !ok {
		return lhs
	}
	p.advance()
	if !lhs.RewriteAsTarget() {
		p.fail(lhs.Start, errs.InvalidAssign, nil)
	}
	rhs := p.parseAssignExpr(allowIn)
	n := ast.NewNode(ast.ASSIGN, lhs.Start, rhs.End)
	n.Opcode = op
	n.AddChild(lhs)
	n.AddChild(rhs)
	return n
}

func (p *parser) parseConditional(allowIn bool) *ast.Node {
	cond := p.parseLogicalOr(allowIn)
	if p.peek().Kind != token.HOOK {
		return cond
	}
	p.advance()
	then := p.parseAssignExpr(true)
	p.expect(token.COLON)
	els := p.parseAssignExpr(allowIn)
	n := ast.NewNode(ast.HOOK, cond.Start, els.End)
	n.AddChild(cond)
	n.AddChild(then)
	n.AddChild(els)
	return n
}

func (p *parser) parseLogicalOr(allowIn bool) *ast.Node {
	left := p.parseLogicalAnd(allowIn)
	for p.peek().Kind == token.OR {
		p.advance()
		right := p.parseLogicalAnd(allowIn)
		n := ast.NewNode(ast.OR, left.Start, right.End)
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
	return left
}

func (p *parser) parseLogicalAnd(allowIn bool) *ast.Node {
	left := p.parseBitOr(allowIn)
	for p.peek().Kind == token.AND {
		p.advance()
		right := p.parseBitOr(allowIn)
		n := ast.NewNode(ast.AND, left.Start, right.End)
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
	return left
}

func (p *parser) parseBitOr(allowIn bool) *ast.Node {
	left := p.parseBitXor(allowIn)
	for p.peek().Kind == token.BOR {
		p.advance()
		right := p.parseBitXor(allowIn)
		n := ast.NewNode(ast.BITOR, left.Start, right.End)
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
	return left
}

func (p *parser) parseBitXor(allowIn bool) *ast.Node {
	left := p.parseBitAnd(allowIn)
	for p.peek().Kind == token.BXOR {
		p.advance()
		right := p.parseBitAnd(allowIn)
		n := ast.NewNode(ast.BITXOR, left.Start, right.End)
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
	return left
}

func (p *parser) parseBitAnd(allowIn bool) *ast.Node {
	left := p.parseEquality(allowIn)
	for p.peek().Kind == token.BAND {
		p.advance()
		right := p.parseEquality(allowIn)
		n := ast.NewNode(ast.BITAND, left.Start, right.End)
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
	return left
}

var equalityOps = map[token.Kind]ast.Opcode{
	token.EQ:       ast.EQ,
	token.NE:       ast.NE,
	token.STRICTEQ: ast.NEW_EQ,
	token.STRICTNE: ast.NEW_NE,
}

func (p *parser) parseEquality(allowIn bool) *ast.Node {
	left := p.parseRelational(allowIn)
	for {
		op, ok := equalityOps[p.peek().Kind]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseRelational(allowIn)
		n := ast.NewNode(ast.EQOP, left.Start, right.End)
		n.Opcode = op
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
}

var relationalOps = map[token.Kind]ast.Opcode{
	token.LT:         ast.LT,
	token.LE:         ast.LE,
	token.GT:         ast.GT,
	token.GE:         ast.GE,
	token.INSTANCEOF: ast.INSTANCEOF,
}

func (p *parser) parseRelational(allowIn bool) *ast.Node {
	left := p.parseShift(allowIn)
	for {
		k := p.peek().Kind
		op, ok := relationalOps[k]
		if !ok && k == token.IN && allowIn {
			op, ok = ast.IN, true
		}
		if !ok {
			return left
		}
		p.advance()
		right := p.parseShift(allowIn)
		n := ast.NewNode(ast.RELOP, left.Start, right.End)
		n.Opcode = op
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
}

var shiftOps = map[token.Kind]ast.Opcode{
	token.LSH:  ast.LSH,
	token.RSH:  ast.RSH,
	token.URSH: ast.URSH,
}

func (p *parser) parseShift(allowIn bool) *ast.Node {
	left := p.parseAdditive(allowIn)
	for {
		op, ok := shiftOps[p.peek().Kind]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseAdditive(allowIn)
		n := ast.NewNode(ast.SHOP, left.Start, right.End)
		n.Opcode = op
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
}

func (p *parser) parseAdditive(allowIn bool) *ast.Node {
	left := p.parseMultiplicative(allowIn)
	for {
		k := p.peek().Kind
		if k != token.PLUS && k != token.MINUS {
			return left
		}
		p.advance()
		right := p.parseMultiplicative(allowIn)
		kind := ast.PLUS
		if k == token.MINUS {
			kind = ast.MINUS
		}
		n := ast.NewNode(kind, left.Start, right.End)
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
}

var mulOps = map[token.Kind]ast.Opcode{
	token.MUL: ast.MUL,
	token.DIV: ast.DIVOP,
	token.MOD: ast.MOD,
}

func (p *parser) parseMultiplicative(allowIn bool) *ast.Node {
	left := p.parseUnary(allowIn)
	for {
		op, ok := mulOps[p.peek().Kind]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseUnary(allowIn)
		n := ast.NewNode(ast.MULOP, left.Start, right.End)
		n.Opcode = op
		n.AddChild(left)
		n.AddChild(right)
		left = n
	}
}

var unaryOps = map[token.Kind]ast.Opcode{
	token.DELETE: ast.DELETE,
	token.VOID:   ast.VOID,
	token.TYPEOF: ast.TYPEOF,
	token.PLUS:   ast.UPLUS,
	token.MINUS:  ast.UMINUS,
	token.BNOT:   ast.BITNOT,
	token.NOT:    ast.NOT,
}

func (p *parser) parseUnary(allowIn bool) *ast.Node {
	t := p.peek()
	if op, ok := unaryOps[t.Kind]; ok {
		p.advance()
		operand := p.parseUnary(allowIn)
		n := ast.NewNode(ast.UNARYOP, t.Start, operand.End)
		n.Opcode = op
		n.AddChild(operand)
		return n
	}
	if t.Kind == token.INC || t.Kind == token.DEC {
		p.advance()
		operand := p.parseUnary(allowIn)
		if !operand.RewriteAsTarget() {
			p.fail(operand.Start, errs.InvalidAssign, nil)
		}
		kind, op := ast.INC, ast.PREINC
		if t.Kind == token.DEC {
			kind, op = ast.DEC, ast.PREDEC
		}
		n := ast.NewNode(kind, t.Start, operand.End)
		n.Opcode = op
		n.AddChild(operand)
		return n
	}
	return p.parsePostfix(allowIn)
}

func (p *parser) parsePostfix(allowIn bool) *ast.Node {
	operand := p.parseCallOrMember(allowIn)
	t := p.peekSameLine()
	if t.Kind != token.INC && t.Kind != token.DEC {
		return operand
	}
	if !operand.RewriteAsTarget() {
		return operand
	}
	p.advance()
	kind, op := ast.INC, ast.POSTINC
	if t.Kind == token.DEC {
		kind, op = ast.DEC, ast.POSTDEC
	}
	n := ast.NewNode(kind, operand.Start, t.End)
	n.Opcode = op
	n.AddChild(operand)
	return n
}

// parseCallOrMember covers both the Member and Call precedence levels:
// after an initial "new"-prefixed or primary expression, ".", "[...]",
// and "(...)" chain in a single loop, since distinguishing which are
// grammatically legal at a given point doesn't change the resulting
// tree shape.
func (p *parser) parseCallOrMember(allowIn bool) *ast.Node {
	var expr *ast.Node
	if p.peek().Kind == token.NEW {
		expr = p.parseNew(allowIn)
	} else {
		expr = p.parsePrimary(allowIn)
	}
	for {
		switch p.peek().Kind {
		case token.DOT:
			p.advance()
			nameTok := p.expect(token.NAME)
			n := ast.NewNode(ast.GETPROP, expr.Start, nameTok.End)
			n.Opcode = ast.GET
			n.LeftHandSide = true
			n.AddChild(expr)
			n.Atom = nameTok.Atom
			n.HasAtom = true
			expr = n
		case token.LB:
			p.advance()
			idx := p.parseExpr(true)
			closeTok := p.expect(token.RB)
			n := ast.NewNode(ast.GETELEM, expr.Start, closeTok.End)
			n.Opcode = ast.GET
			n.LeftHandSide = true
			n.AddChild(expr)
			n.AddChild(idx)
			expr = n
		case token.LP:
			args, closeTok := p.parseArgs()
			n := ast.NewNode(ast.CALL, expr.Start, closeTok.End)
			n.Opcode = ast.CALLOP
			n.AddChild(expr)
			for _, a := range args {
				n.AddChild(a)
			}
			expr = n
		default:
			return expr
		}
	}
}

// parseNew consumes "new" and a member expression, greedily binding any
// immediately-following "(args)" to the construction itself; further
// ".", "[...]", "(...)" chain onto the result at the caller's loop.
func (p *parser) parseNew(allowIn bool) *ast.Node {
	start := p.advance().Start // NEW
	var callee *ast.Node
	if p.peek().Kind == token.NEW {
		callee = p.parseNew(allowIn)
	} else {
		callee = p.parsePrimary(allowIn)
	}
	for {
		switch p.peek().Kind {
		case token.DOT:
			p.advance()
			nameTok := p.expect(token.NAME)
			n := ast.NewNode(ast.GETPROP, callee.Start, nameTok.End)
			n.Opcode = ast.GET
			n.LeftHandSide = true
			n.AddChild(callee)
			n.Atom = nameTok.Atom
			n.HasAtom = true
			callee = n
			continue
		case token.LB:
			p.advance()
			idx := p.parseExpr(true)
			closeTok := p.expect(token.RB)
			n := ast.NewNode(ast.GETELEM, callee.Start, closeTok.End)
			n.Opcode = ast.GET
			n.LeftHandSide = true
			n.AddChild(callee)
			n.AddChild(idx)
			callee = n
			continue
		}
		break
	}
	end := callee.End
	var args []*ast.Node
	if p.peek().Kind == token.LP {
		var closeTok token.Token
		args, closeTok = p.parseArgs()
		end = closeTok.End
	}
	n := ast.NewNode(ast.NEW, start, end)
	n.Opcode = ast.NEWOP
	n.AddChild(callee)
	for _, a := range args {
		n.AddChild(a)
	}
	return n
}

func (p *parser) parseArgs() ([]*ast.Node, token.Token) {
	p.expect(token.LP)
	var args []*ast.Node
	if p.peek().Kind != token.RP {
		for {
			args = append(args, p.parseAssignExpr(true))
			if p.peek().Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	return args, p.expect(token.RP)
}

func (p *parser) parsePrimary(allowIn bool) *ast.Node {
	t := p.peek()
	switch t.Kind {
	case token.THIS:
		p.advance()
		return ast.NewNode(ast.THIS, t.Start, t.End)
	case token.TRUE:
		p.advance()
		return ast.NewNode(ast.TRUE, t.Start, t.End)
	case token.FALSE:
		p.advance()
		return ast.NewNode(ast.FALSE, t.Start, t.End)
	case token.NULL:
		p.advance()
		return ast.NewNode(ast.NULL, t.Start, t.End)
	case token.NAME:
		p.advance()
		n := leaf(ast.NAME, t)
		n.Opcode = ast.GET
		n.LeftHandSide = true
		return n
	case token.NUMBER:
		p.advance()
		return numberNode(t)
	case token.STRING:
		p.advance()
		return leaf(ast.STRING, t)
	case token.DIV, token.DIVEQ:
		t = p.advanceRegexp()
		if t.Kind != token.REGEXP {
			p.fail(t.Start, errs.SyntaxError, nil)
		}
		return leaf(ast.REGEXP, t)
	case token.LP:
		p.advance()
		inner := p.parseExpr(true)
		closeTok := p.expect(token.RP)
		n := ast.NewNode(ast.GROUP, t.Start, closeTok.End)
		n.LeftHandSide = inner.LeftHandSide
		n.AddChild(inner)
		return n
	case token.LB:
		return p.parseArrayLiteral()
	case token.LC:
		return p.parseObjectLiteral()
	case token.FUNCTION:
		return p.parseFunction(false, false)
	case token.ERROR:
		// The scanner already has the real diagnostic for this token
		// (an unterminated string/comment/regexp, or a stray
		// character); advancing past it surfaces that one instead of
		// masking it with a generic syntax_error.
		p.advance()
	}
	p.fail(t.Start, errs.SyntaxError, nil)
	panic("unreachable: fail always panics")
}

func (p *parser) parseArrayLiteral() *ast.Node {
	open := p.expect(token.LB)
	n := ast.NewNode(ast.ARRAYINIT, open.Start, open.End)
	for p.peek().Kind != token.RB {
		if p.peek().Kind == token.COMMA {
			commaTok := p.advance()
			n.AddChild(nil)
			if p.peek().Kind == token.RB {
				n.EndComma = leaf(ast.COMMA, commaTok)
				break
			}
			continue
		}
		n.AddChild(p.parseAssignExpr(true))
		if p.peek().Kind == token.COMMA {
			commaTok := p.advance()
			if p.peek().Kind == token.RB {
				n.EndComma = leaf(ast.COMMA, commaTok)
				break
			}
			continue
		}
		break
	}
	closeTok := p.expect(token.RB)
	n.End = closeTok.End
	return n
}

func (p *parser) parseObjectLiteral() *ast.Node {
	open := p.expect(token.LC)
	n := ast.NewNode(ast.OBJECTINIT, open.Start, open.End)
	for p.peek().Kind != token.RC {
		prop := p.parseObjectProperty()
		n.AddChild(prop)
		if p.peek().Kind == token.COMMA {
			commaTok := p.advance()
			if p.peek().Kind == token.RC {
				n.EndComma = leaf(ast.COMMA, commaTok)
				break
			}
			continue
		}
		break
	}
	closeTok := p.expect(token.RC)
	n.End = closeTok.End
	return n
}

// parseObjectProperty recognizes the supplemented getter/setter form
// ("get name() {...}" / "set name(v) {...}") ahead of the plain
// "key: value" form; since both start with a NAME, the getter/setter form
// is distinguished by what follows that NAME (another property-name token
// rather than ":").
func (p *parser) parseObjectProperty() *ast.Node {
	t := p.peek()
	if t.Kind == token.NAME && (t.Atom == "get" || t.Atom == "set") {
		accessor := p.advance()
		if keyTok := p.peek(); keyTok.Kind == token.NAME || keyTok.Kind == token.STRING || keyTok.Kind == token.NUMBER {
			nameTok := p.advance()
			p.expect(token.LP)
			var args []*ast.Node
			if accessor.Atom == "set" {
				args = p.parseFnArgs()
			}
			p.expect(token.RP)
			body := p.parseBlock(true)
			fn := ast.NewNode(ast.FUNCTION, accessor.Start, body.End)
			fn.FnArgs = args
			fn.Opcode = ast.ANONFUNOBJ
			fn.AddChild(body)
			prop := ast.NewNode(ast.PROPERTY, accessor.Start, body.End)
			if accessor.Atom == "get" {
				prop.Opcode = ast.GETTER
			} else {
				prop.Opcode = ast.SETTER
			}
			key := leaf(ast.NAME, nameTok)
			prop.AddChild(key)
			prop.AddChild(fn)
			return prop
		}
		// "get"/"set" was itself the plain key of a key:value pair.
		return p.finishPlainProperty(leaf(ast.NAME, accessor))
	}
	var key *ast.Node
	switch t.Kind {
	case token.NAME:
		key = leaf(ast.NAME, p.advance())
	case token.STRING:
		key = leaf(ast.STRING, p.advance())
	case token.NUMBER:
		key = numberNode(p.advance())
	case token.ERROR:
		p.advance() // surfaces the scanner's own diagnostic
	default:
		p.fail(t.Start, errs.SyntaxError, nil)
	}
	return p.finishPlainProperty(key)
}

func (p *parser) finishPlainProperty(key *ast.Node) *ast.Node {
	p.expect(token.COLON)
	value := p.parseAssignExpr(true)
	n := ast.NewNode(ast.PROPERTY, key.Start, value.End)
	n.Opcode = ast.INITPROP
	n.AddChild(key)
	n.AddChild(value)
	return n
}

// parse runs a single parse, returning the root (nil on failure) and the
// diagnostic list: at most one error, per the single-error-aborts policy,
// preceded by an e4x_deprecated warning when the XML-literal extension is
// enabled on a version that supports it.
func parse(text string, opts Options) (root *ast.Node, list *errs.List) {
	list = &errs.List{}
	p := newParser(text, opts.Base, opts.Version, list)

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); ok {
				root = nil
				return
			}
			panic(r)
		}
	}()

	if opts.EnableXMLLiteral && opts.Version.supportsXMLLiteral() {
		list.AddNewf(opts.Base, errs.E4XDeprecated, nil)
	}
	root = p.parseScript()
	return root, list
}
