package syntax

import (
	"github.com/jward/pawnls/internal/diag"
	"github.com/jward/pawnls/internal/lexer"
)

// declKeywords are top-level modifier keywords that precede a declaration's
// type, consumed but not otherwise modeled — the item tree only needs the
// declaration's kind, name, and body.
var declKeywords = map[string]bool{
	"public": true, "stock": true, "static": true, "const": true,
	"forward": true, "native": true, "new": true, "decl": true,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true, ">>>=": true,
}

var binaryPrec = map[string]int{
	"*": 10, "/": 10, "%": 10,
	"+": 9, "-": 9,
	"<<": 8, ">>": 8, ">>>": 8,
	"<": 7, "<=": 7, ">": 7, ">=": 7,
	"==": 6, "!=": 6,
	"&": 5, "^": 4, "|": 3,
	"&&": 2, "||": 1,
}

var unaryOps = map[string]bool{"!": true, "~": true, "-": true, "+": true}

type parser struct {
	toks  []lexer.Token
	pos   int
	diags []diag.Diagnostic
}

// Parse builds a CST over already-preprocessed source text, per spec.md
// §4.3. Parse errors are recovered locally into Error nodes plus a
// diag.SyntaxError diagnostic; Parse never fails outright.
func Parse(src []byte) (*Node, []diag.Diagnostic) {
	raw := lexer.Tokenize(src)
	toks := make([]lexer.Token, 0, len(raw))
	for _, t := range raw {
		if t.IsTrivia || t.Kind == lexer.KindEOF {
			continue
		}
		toks = append(toks, t)
	}
	p := &parser{toks: toks}
	root := newNode(KindFile, lexer.Range{Start: 0, End: len(src)})
	for !p.atEnd() {
		item := p.parseTopLevelItem()
		if item != nil {
			root.addChild(item, "")
		}
	}
	return root, p.diags
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (lexer.Token, bool) {
	if p.atEnd() {
		return lexer.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) peekAt(n int) (lexer.Token, bool) {
	if p.pos+n >= len(p.toks) {
		return lexer.Token{}, false
	}
	return p.toks[p.pos+n], true
}

func (p *parser) next() (lexer.Token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) isKind(k lexer.Kind) bool {
	t, ok := p.peek()
	return ok && t.Kind == k
}

func (p *parser) isIdentText(s string) bool {
	t, ok := p.peek()
	return ok && t.Kind == lexer.KindIdent && t.Text == s
}

func (p *parser) isOperatorText(s string) bool {
	t, ok := p.peek()
	return ok && t.Kind == lexer.KindOperator && t.Text == s
}

func (p *parser) errorNode(msg string) *Node {
	t, ok := p.next()
	r := lexer.Range{}
	if ok {
		r = t.Range
	}
	p.diags = append(p.diags, diag.Diagnostic{
		Kind:    diag.SyntaxError,
		Range:   diag.Range{Start: r.Start, End: r.End},
		Message: msg,
	})
	n := newNode(KindError, r)
	if ok {
		n.text = t.Text
	}
	return n
}

func (p *parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.isKind(k) {
		return p.next()
	}
	return lexer.Token{}, false
}

func (p *parser) parseTopLevelItem() *Node {
	for p.isIdentText("public") || p.isIdentText("stock") || p.isIdentText("static") ||
		p.isIdentText("forward") || p.isIdentText("native") {
		p.next()
	}
	if p.atEnd() {
		return nil
	}

	switch {
	case p.isIdentText("enum"):
		return p.parseEnum()
	case p.isIdentText("methodmap"):
		return p.parseMethodmap()
	case p.isIdentText("typedef"):
		return p.parseSimpleNamedDecl(KindTypedef)
	case p.isIdentText("typeset"):
		return p.parseSimpleNamedDecl(KindTypeset)
	case p.isIdentText("functag"):
		return p.parseSimpleNamedDecl(KindFunctag)
	case p.isIdentText("funcenum"):
		return p.parseSimpleNamedDecl(KindFuncenum)
	}

	if p.looksLikeFunction() {
		return p.parseFunction()
	}
	return p.parseVariableDeclarationStatement()
}

// looksLikeFunction scans forward for the first top-level '(' before a ';'
// or '{', which in a type-then-name declaration grammar can only be a
// parameter list.
func (p *parser) looksLikeFunction() bool {
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case lexer.KindLParen:
			return true
		case lexer.KindSemicolon, lexer.KindLBrace:
			return false
		}
	}
	return false
}

func (p *parser) parseFunction() *Node {
	start, _ := p.peek()
	parenIdx := -1
	for i := p.pos; i < len(p.toks); i++ {
		if p.toks[i].Kind == lexer.KindLParen {
			parenIdx = i
			break
		}
	}
	nameIdx := parenIdx - 1
	if nameIdx < p.pos || p.toks[nameIdx].Kind != lexer.KindIdent {
		return p.errorNode("expected function name before parameter list")
	}
	name := p.toks[nameIdx]
	p.pos = nameIdx + 1

	params := p.parseParameterList()

	var body *Node
	if p.isKind(lexer.KindLBrace) {
		body = p.parseBlock()
	} else {
		p.expect(lexer.KindSemicolon)
	}

	end := name.Range
	if body != nil {
		end = body.byteRange
	} else if params != nil {
		end = params.byteRange
	}
	n := newNode(KindFunctionDeclaration, lexer.Range{Start: start.Range.Start, End: end.End})
	nameNode := newNode(KindIdentifier, name.Range)
	nameNode.text = name.Text
	n.addChild(nameNode, "name")
	if params != nil {
		n.addChild(params, "parameters")
	}
	if body != nil {
		n.addChild(body, "body")
	}
	return n
}

func (p *parser) parseParameterList() *Node {
	open, ok := p.expect(lexer.KindLParen)
	if !ok {
		return nil
	}
	node := newNode(KindParameterList, open.Range)
	for !p.atEnd() && !p.isKind(lexer.KindRParen) {
		param := p.parseParameter()
		if param != nil {
			node.addChild(param, "")
		}
		if p.isKind(lexer.KindComma) {
			p.next()
			continue
		}
		break
	}
	if close, ok := p.expect(lexer.KindRParen); ok {
		node.byteRange.End = close.Range.End
	} else {
		node.addChild(p.errorNode("expected ')' to close parameter list"), "")
	}
	return node
}

func (p *parser) parseParameter() *Node {
	start, ok := p.peek()
	if !ok {
		return nil
	}
	// Collect this parameter's tokens up to ',' or ')' at depth 0.
	depth := 0
	end := p.pos
	specialIdx := -1
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		switch t.Kind {
		case lexer.KindLParen, lexer.KindLBracket:
			depth++
		case lexer.KindRParen:
			if depth == 0 {
				end = i
				goto scanned
			}
			depth--
		case lexer.KindRBracket:
			depth--
		case lexer.KindComma:
			if depth == 0 {
				end = i
				goto scanned
			}
		}
		if depth == 0 && specialIdx < 0 && (t.Kind == lexer.KindLBracket ||
			(t.Kind == lexer.KindOperator && t.Text == "=")) {
			specialIdx = i
		}
		end = i + 1
	}
scanned:
	limit := end
	if specialIdx >= 0 && specialIdx < limit {
		limit = specialIdx
	}
	var nameTok lexer.Token
	haveName := false
	for i := p.pos; i < limit; i++ {
		if p.toks[i].Kind == lexer.KindIdent {
			nameTok = p.toks[i]
			haveName = true
		}
	}
	p.pos = end
	n := newNode(KindParameterDeclaration, lexer.Range{Start: start.Range.Start, End: p.toks[end-1].Range.End})
	if haveName {
		id := newNode(KindIdentifier, nameTok.Range)
		id.text = nameTok.Text
		n.addChild(id, "name")
	}
	return n
}

func (p *parser) parseBlock() *Node {
	open, _ := p.expect(lexer.KindLBrace)
	node := newNode(KindBlock, open.Range)
	for !p.atEnd() && !p.isKind(lexer.KindRBrace) {
		stmt := p.parseStatement()
		if stmt != nil {
			node.addChild(stmt, "")
		}
	}
	if close, ok := p.expect(lexer.KindRBrace); ok {
		node.byteRange.End = close.Range.End
	}
	return node
}

func (p *parser) parseStatement() *Node {
	if p.isKind(lexer.KindLBrace) {
		return p.parseBlock()
	}
	if p.isIdentText("if") {
		return p.parseIf()
	}
	if p.isIdentText("while") {
		return p.parseWhile()
	}
	if p.isIdentText("for") {
		return p.parseFor()
	}
	if p.isIdentText("return") {
		return p.parseReturn()
	}
	if p.looksLikeDeclaration() {
		return p.parseVariableDeclarationStatement()
	}
	return p.parseExpressionStatement()
}

// looksLikeDeclaration recognises the common "Type name" shape: two
// directly consecutive identifiers, the second of which does not start a
// call. Array-typed declarations ("int[] x") and other less common shapes
// are not recognised and fall through to expression parsing, a known
// simplification given no full type grammar is modeled.
func (p *parser) looksLikeDeclaration() bool {
	first, ok := p.peek()
	if !ok || first.Kind != lexer.KindIdent {
		return false
	}
	if declKeywords[first.Text] {
		return true
	}
	second, ok := p.peekAt(1)
	return ok && second.Kind == lexer.KindIdent
}

func (p *parser) parseIf() *Node {
	start, _ := p.next() // "if"
	p.expect(lexer.KindLParen)
	cond := p.parseExpression()
	p.expect(lexer.KindRParen)
	then := p.parseStatement()
	n := newNode(KindIfStatement, lexer.Range{Start: start.Range.Start})
	if cond != nil {
		n.addChild(cond, "condition")
	}
	if then != nil {
		n.addChild(then, "consequence")
	}
	if p.isIdentText("else") {
		p.next()
		alt := p.parseStatement()
		if alt != nil {
			n.addChild(alt, "alternative")
		}
	}
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

func (p *parser) parseWhile() *Node {
	start, _ := p.next()
	p.expect(lexer.KindLParen)
	cond := p.parseExpression()
	p.expect(lexer.KindRParen)
	body := p.parseStatement()
	n := newNode(KindWhileStatement, lexer.Range{Start: start.Range.Start})
	if cond != nil {
		n.addChild(cond, "condition")
	}
	if body != nil {
		n.addChild(body, "body")
	}
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

func (p *parser) parseFor() *Node {
	start, _ := p.next()
	p.expect(lexer.KindLParen)
	n := newNode(KindForStatement, lexer.Range{Start: start.Range.Start})
	if !p.isKind(lexer.KindSemicolon) {
		init := p.parseStatement()
		if init != nil {
			n.addChild(init, "initializer")
		}
	} else {
		p.next()
	}
	if !p.isKind(lexer.KindSemicolon) {
		cond := p.parseExpression()
		if cond != nil {
			n.addChild(cond, "condition")
		}
	}
	p.expect(lexer.KindSemicolon)
	if !p.isKind(lexer.KindRParen) {
		step := p.parseExpression()
		if step != nil {
			n.addChild(step, "update")
		}
	}
	p.expect(lexer.KindRParen)
	body := p.parseStatement()
	if body != nil {
		n.addChild(body, "body")
	}
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

func (p *parser) parseReturn() *Node {
	start, _ := p.next()
	n := newNode(KindReturnStatement, lexer.Range{Start: start.Range.Start})
	if !p.isKind(lexer.KindSemicolon) {
		expr := p.parseExpression()
		if expr != nil {
			n.addChild(expr, "value")
		}
	}
	p.expect(lexer.KindSemicolon)
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

func (p *parser) parseVariableDeclarationStatement() *Node {
	start, ok := p.peek()
	if !ok {
		return nil
	}
	for declKeywords[start.Text] {
		p.next()
		start, ok = p.peek()
		if !ok {
			return nil
		}
	}
	// Consume the type token(s): a leading identifier, plus an optional
	// "[]" array-type suffix.
	if p.isKind(lexer.KindIdent) {
		p.next()
	}
	for p.isKind(lexer.KindLBracket) {
		p.next()
		for !p.atEnd() && !p.isKind(lexer.KindRBracket) {
			p.next()
		}
		p.expect(lexer.KindRBracket)
	}

	node := newNode(KindVariableDeclarationStatement, lexer.Range{Start: start.Range.Start})
	for {
		decl := p.parseDeclarator()
		if decl != nil {
			node.addChild(decl, "")
		} else {
			break
		}
		if p.isKind(lexer.KindComma) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.KindSemicolon)
	node.byteRange.End = p.lastEnd(start.Range.End)
	return node
}

func (p *parser) parseDeclarator() *Node {
	name, ok := p.expect(lexer.KindIdent)
	if !ok {
		return p.skipToStatementEnd()
	}
	n := newNode(KindVariableDeclaration, name.Range)
	id := newNode(KindIdentifier, name.Range)
	id.text = name.Text
	n.addChild(id, "name")

	for p.isKind(lexer.KindLBracket) {
		p.next()
		if !p.isKind(lexer.KindRBracket) {
			p.parseExpression()
		}
		p.expect(lexer.KindRBracket)
	}

	if t, ok := p.peek(); ok && t.Kind == lexer.KindOperator && t.Text == "=" {
		p.next()
		val := p.parseAssignment()
		if val != nil {
			n.addChild(val, "value")
		}
	}
	n.byteRange.End = p.lastEnd(name.Range.End)
	return n
}

func (p *parser) skipToStatementEnd() *Node {
	for !p.atEnd() && !p.isKind(lexer.KindSemicolon) {
		p.next()
	}
	return nil
}

func (p *parser) parseExpressionStatement() *Node {
	start, ok := p.peek()
	if !ok {
		return nil
	}
	expr := p.parseExpression()
	p.expect(lexer.KindSemicolon)
	n := newNode(KindExpressionStatement, lexer.Range{Start: start.Range.Start, End: p.lastEnd(start.Range.End)})
	if expr != nil {
		n.addChild(expr, "expression")
	}
	return n
}

func (p *parser) lastEnd(fallback int) int {
	if p.pos > 0 {
		return p.toks[p.pos-1].Range.End
	}
	return fallback
}

func (p *parser) parseExpression() *Node { return p.parseAssignment() }

func (p *parser) parseAssignment() *Node {
	lhs := p.parseBinary(1)
	if lhs == nil {
		return nil
	}
	if t, ok := p.peek(); ok && t.Kind == lexer.KindOperator && assignOps[t.Text] {
		p.next()
		rhs := p.parseAssignment()
		n := newNode(KindAssignmentExpression, lexer.Range{Start: lhs.byteRange.Start})
		n.addChild(lhs, "left")
		if rhs != nil {
			n.addChild(rhs, "right")
		}
		n.byteRange.End = p.lastEnd(lhs.byteRange.End)
		return n
	}
	return lhs
}

func (p *parser) parseBinary(minPrec int) *Node {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	for {
		t, ok := p.peek()
		if !ok || t.Kind != lexer.KindOperator {
			break
		}
		prec, known := binaryPrec[t.Text]
		if !known || prec < minPrec {
			break
		}
		p.next()
		rhs := p.parseBinary(prec + 1)
		n := newNode(KindBinaryExpression, lexer.Range{Start: lhs.byteRange.Start})
		n.text = t.Text
		n.addChild(lhs, "left")
		if rhs != nil {
			n.addChild(rhs, "right")
		}
		n.byteRange.End = p.lastEnd(lhs.byteRange.End)
		lhs = n
	}
	return lhs
}

func (p *parser) parseUnary() *Node {
	if t, ok := p.peek(); ok && t.Kind == lexer.KindOperator && unaryOps[t.Text] {
		p.next()
		operand := p.parseUnary()
		n := newNode(KindUnaryExpression, t.Range)
		n.text = t.Text
		if operand != nil {
			n.addChild(operand, "operand")
			n.byteRange.End = operand.byteRange.End
		}
		return n
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() *Node {
	e := p.parsePrimary()
	if e == nil {
		return nil
	}
	for {
		switch {
		case p.isOperatorText("."):
			p.next()
			name, ok := p.expect(lexer.KindIdent)
			if !ok {
				break
			}
			if p.isKind(lexer.KindLParen) {
				args := p.parseArgumentList()
				n := newNode(KindMethodCallExpression, lexer.Range{Start: e.byteRange.Start})
				n.text = name.Text
				n.addChild(e, "receiver")
				if args != nil {
					n.addChild(args, "arguments")
					n.byteRange.End = args.byteRange.End
				}
				e = n
			} else {
				n := newNode(KindFieldAccessExpression, lexer.Range{Start: e.byteRange.Start, End: name.Range.End})
				n.text = name.Text
				n.addChild(e, "receiver")
				e = n
			}
		case p.isKind(lexer.KindLParen):
			args := p.parseArgumentList()
			n := newNode(KindCallExpression, lexer.Range{Start: e.byteRange.Start})
			n.addChild(e, "callee")
			if args != nil {
				n.addChild(args, "arguments")
				n.byteRange.End = args.byteRange.End
			}
			e = n
		case p.isKind(lexer.KindLBracket):
			p.next()
			idx := p.parseExpression()
			p.expect(lexer.KindRBracket)
			n := newNode(KindArrayIndexExpression, lexer.Range{Start: e.byteRange.Start, End: p.lastEnd(e.byteRange.End)})
			n.addChild(e, "receiver")
			if idx != nil {
				n.addChild(idx, "index")
			}
			e = n
		default:
			return e
		}
	}
}

func (p *parser) parseArgumentList() *Node {
	open, _ := p.expect(lexer.KindLParen)
	node := newNode(KindArgumentList, open.Range)
	for !p.atEnd() && !p.isKind(lexer.KindRParen) {
		arg := p.parseAssignment()
		if arg != nil {
			node.addChild(arg, "")
		}
		if p.isKind(lexer.KindComma) {
			p.next()
			continue
		}
		break
	}
	if close, ok := p.expect(lexer.KindRParen); ok {
		node.byteRange.End = close.Range.End
	}
	return node
}

func (p *parser) parsePrimary() *Node {
	t, ok := p.peek()
	if !ok {
		return nil
	}
	switch t.Kind {
	case lexer.KindIdent:
		p.next()
		n := newNode(KindIdentifier, t.Range)
		n.text = t.Text
		return n
	case lexer.KindIntLiteral:
		p.next()
		n := newNode(KindIntLiteral, t.Range)
		n.text = t.Text
		return n
	case lexer.KindFloatLiteral:
		p.next()
		n := newNode(KindFloatLiteral, t.Range)
		n.text = t.Text
		return n
	case lexer.KindStringLiteral:
		p.next()
		n := newNode(KindStringLiteral, t.Range)
		n.text = t.Text
		return n
	case lexer.KindCharLiteral:
		p.next()
		n := newNode(KindCharLiteral, t.Range)
		n.text = t.Text
		return n
	case lexer.KindTrue, lexer.KindFalse:
		p.next()
		n := newNode(KindBoolLiteral, t.Range)
		n.text = t.Text
		return n
	case lexer.KindLParen:
		p.next()
		inner := p.parseExpression()
		p.expect(lexer.KindRParen)
		return inner
	default:
		return p.errorNode("unexpected token in expression")
	}
}

func (p *parser) parseEnum() *Node {
	start, _ := p.next() // "enum"
	n := newNode(KindEnum, start.Range)
	if p.isIdentText("struct") {
		p.next()
		n.kind = KindEnumStruct
	}
	if t, ok := p.peek(); ok && t.Kind == lexer.KindIdent {
		p.next()
		id := newNode(KindIdentifier, t.Range)
		id.text = t.Text
		n.addChild(id, "name")
	}
	if n.kind == KindEnumStruct {
		body := p.parseBlock()
		n.addChild(body, "body")
	} else if p.isKind(lexer.KindLBrace) {
		entries := p.parseEnumEntries()
		n.addChild(entries, "body")
	}
	p.expect(lexer.KindSemicolon)
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

func (p *parser) parseEnumEntries() *Node {
	open, _ := p.expect(lexer.KindLBrace)
	node := newNode(KindEnumEntries, open.Range)
	for !p.atEnd() && !p.isKind(lexer.KindRBrace) {
		if name, ok := p.expect(lexer.KindIdent); ok {
			entry := newNode(KindEnumEntry, name.Range)
			id := newNode(KindIdentifier, name.Range)
			id.text = name.Text
			entry.addChild(id, "name")
			if t, ok := p.peek(); ok && t.Kind == lexer.KindOperator && t.Text == "=" {
				p.next()
				val := p.parseAssignment()
				if val != nil {
					entry.addChild(val, "value")
				}
			}
			entry.byteRange.End = p.lastEnd(name.Range.End)
			node.addChild(entry, "")
		} else {
			p.next()
		}
		if p.isKind(lexer.KindComma) {
			p.next()
		}
	}
	if close, ok := p.expect(lexer.KindRBrace); ok {
		node.byteRange.End = close.Range.End
	}
	return node
}

func (p *parser) parseMethodmap() *Node {
	start, _ := p.next() // "methodmap"
	n := newNode(KindMethodmap, start.Range)
	if t, ok := p.peek(); ok && t.Kind == lexer.KindIdent {
		p.next()
		id := newNode(KindIdentifier, t.Range)
		id.text = t.Text
		n.addChild(id, "name")
	}
	if p.isOperatorText("<") {
		p.next()
		if t, ok := p.peek(); ok && t.Kind == lexer.KindIdent {
			p.next()
			parent := newNode(KindIdentifier, t.Range)
			parent.text = t.Text
			n.addChild(parent, "parent")
		}
	}
	if p.isKind(lexer.KindLBrace) {
		body := p.parseMethodmapBody()
		n.addChild(body, "body")
	}
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

func (p *parser) parseMethodmapBody() *Node {
	open, _ := p.expect(lexer.KindLBrace)
	node := newNode(KindMethodmapBody, open.Range)
	for !p.atEnd() && !p.isKind(lexer.KindRBrace) {
		if p.isIdentText("property") {
			node.addChild(p.parseMethodmapProperty(), "")
			continue
		}
		// method: skip leading modifiers, then behaves like a function decl
		// but nested.
		if p.looksLikeFunction() {
			node.addChild(p.parseMethodmapMethod(), "")
			continue
		}
		p.next()
	}
	if close, ok := p.expect(lexer.KindRBrace); ok {
		node.byteRange.End = close.Range.End
	}
	return node
}

func (p *parser) parseMethodmapMethod() *Node {
	fn := p.parseFunction()
	fn.kind = KindMethodmapMethod
	return fn
}

func (p *parser) parseMethodmapProperty() *Node {
	start, _ := p.next() // "property"
	n := newNode(KindMethodmapProperty, start.Range)
	// type token
	if p.isKind(lexer.KindIdent) {
		p.next()
	}
	if t, ok := p.peek(); ok && t.Kind == lexer.KindIdent {
		p.next()
		id := newNode(KindIdentifier, t.Range)
		id.text = t.Text
		n.addChild(id, "name")
	}
	if p.isKind(lexer.KindLBrace) {
		p.next()
		for !p.atEnd() && !p.isKind(lexer.KindRBrace) {
			if p.looksLikeFunction() {
				acc := p.parseFunction()
				acc.kind = KindMethodmapPropertyAccessor
				n.addChild(acc, "")
				continue
			}
			p.next()
		}
		p.expect(lexer.KindRBrace)
	}
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}

// parseSimpleNamedDecl handles typedef/typeset/functag/funcenum: a keyword,
// a name, and an opaque body up to the matching ';' (typedef/functag) or
// '{'...'}' (typeset/funcenum) — the item tree only needs the name.
func (p *parser) parseSimpleNamedDecl(kind Kind) *Node {
	start, _ := p.next()
	n := newNode(kind, start.Range)
	if t, ok := p.peek(); ok && t.Kind == lexer.KindIdent {
		p.next()
		id := newNode(KindIdentifier, t.Range)
		id.text = t.Text
		n.addChild(id, "name")
	}
	if p.isKind(lexer.KindLBrace) {
		depth := 0
		for !p.atEnd() {
			t, _ := p.next()
			if t.Kind == lexer.KindLBrace {
				depth++
			}
			if t.Kind == lexer.KindRBrace {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	} else {
		for !p.atEnd() && !p.isKind(lexer.KindSemicolon) {
			p.next()
		}
		p.expect(lexer.KindSemicolon)
	}
	n.byteRange.End = p.lastEnd(start.Range.End)
	return n
}
