// Package hir lowers a function-like item's CST body into an arena of
// expressions plus a lexically nested scope tree, per spec.md §4.7.
// Grounded on the teacher's (mvp-joe-canopy) arena-of-ids style query
// outputs, generalized from its call-graph arenas to expression arenas.
package hir

import "github.com/jward/pawnls/internal/syntax"

// ExprId indexes into a Body's expression arena.
type ExprId int

// ScopeId indexes into a Body's scope arena.
type ScopeId int

// ExprKind tags an expression's shape, per spec.md §4.7's covered set.
type ExprKind uint8

const (
	ExprMissing ExprKind = iota // error-recovery sentinel
	ExprBlock
	ExprDecl
	ExprBinding
	ExprIdentifier
	ExprFieldAccess
	ExprMethodCall
	ExprCall
	ExprBinary
	ExprAssignment
	ExprLiteral
)

// Expr is one lowered expression node.
type Expr struct {
	Kind     ExprKind
	Node     *syntax.Node // originating CST node, or nil for ExprMissing
	Name     string       // identifier text / field or method name / binding name
	Children []ExprId
	Scope    ScopeId // the scope in force when this expression was lowered
}

// Binding is a local variable or parameter introduced in some scope.
type Binding struct {
	Name string
	Expr ExprId // the ExprDecl or parameter expression that introduced it
}

// Scope is one lexical scope: a block, or the function's top-level scope.
type Scope struct {
	Parent   ScopeId // -1 for the body's root scope
	Bindings []Binding
}

const noParent ScopeId = -1

// Body is one function-like item's lowered form.
type Body struct {
	Exprs      []Expr
	Scopes     []Scope
	NodeToExpr map[*syntax.Node]ExprId
	RootScope  ScopeId
}

type lowering struct {
	body *Body
}

// Lower builds a Body from a function declaration's CST node. Parameters
// are bound in the root scope; when the declaration has no "body" field,
// the Body holds only that root scope and its parameter bindings.
func Lower(fn *syntax.Node) *Body {
	b := &Body{NodeToExpr: make(map[*syntax.Node]ExprId)}
	l := &lowering{body: b}

	root := l.newScope(noParent)
	b.RootScope = root

	if params := fn.ChildByField("parameters"); params != nil {
		for _, param := range params.Children() {
			if name := param.ChildByField("name"); name != nil {
				l.bind(root, name.Text(), l.newExpr(ExprBinding, name, name.Text(), root))
			}
		}
	}

	block := fn.ChildByField("body")
	if block == nil {
		return b
	}
	l.lowerBlock(block, root)
	return b
}

func (l *lowering) newScope(parent ScopeId) ScopeId {
	l.body.Scopes = append(l.body.Scopes, Scope{Parent: parent})
	return ScopeId(len(l.body.Scopes) - 1)
}

func (l *lowering) bind(scope ScopeId, name string, expr ExprId) {
	s := &l.body.Scopes[scope]
	s.Bindings = append(s.Bindings, Binding{Name: name, Expr: expr})
}

func (l *lowering) newExpr(kind ExprKind, node *syntax.Node, name string, scope ScopeId) ExprId {
	id := ExprId(len(l.body.Exprs))
	l.body.Exprs = append(l.body.Exprs, Expr{Kind: kind, Node: node, Name: name, Scope: scope})
	if node != nil {
		l.body.NodeToExpr[node] = id
	}
	return id
}

func (l *lowering) missing(scope ScopeId) ExprId {
	return l.newExpr(ExprMissing, nil, "", scope)
}

func (l *lowering) lowerBlock(block *syntax.Node, parent ScopeId) ExprId {
	scope := l.newScope(parent)
	id := l.newExpr(ExprBlock, block, "", scope)
	var children []ExprId
	for _, stmt := range block.Children() {
		children = append(children, l.lowerStatement(stmt, scope))
	}
	l.body.Exprs[id].Children = children
	return id
}

func (l *lowering) lowerStatement(stmt *syntax.Node, scope ScopeId) ExprId {
	switch stmt.Kind() {
	case syntax.KindBlock:
		return l.lowerBlock(stmt, scope)
	case syntax.KindVariableDeclarationStatement:
		var decls []ExprId
		for _, d := range stmt.Children() {
			decls = append(decls, l.lowerDeclarator(d, scope))
		}
		id := l.newExpr(ExprDecl, stmt, "", scope)
		l.body.Exprs[id].Children = decls
		return id
	case syntax.KindExpressionStatement:
		if e := stmt.ChildByField("expression"); e != nil {
			return l.lowerExpr(e, scope)
		}
		return l.missing(scope)
	case syntax.KindIfStatement:
		id := l.newExpr(ExprBlock, stmt, "if", scope)
		var children []ExprId
		if c := stmt.ChildByField("condition"); c != nil {
			children = append(children, l.lowerExpr(c, scope))
		}
		if c := stmt.ChildByField("consequence"); c != nil {
			children = append(children, l.lowerStatement(c, scope))
		}
		if a := stmt.ChildByField("alternative"); a != nil {
			children = append(children, l.lowerStatement(a, scope))
		}
		l.body.Exprs[id].Children = children
		return id
	case syntax.KindWhileStatement, syntax.KindForStatement, syntax.KindReturnStatement:
		id := l.newExpr(ExprBlock, stmt, stmt.Kind().String(), scope)
		var children []ExprId
		for _, field := range []string{"initializer", "condition", "update", "value", "body"} {
			if c := stmt.ChildByField(field); c != nil {
				if c.Kind() == syntax.KindBlock || c.Kind() == syntax.KindVariableDeclarationStatement ||
					c.Kind() == syntax.KindExpressionStatement || c.Kind() == syntax.KindIfStatement {
					children = append(children, l.lowerStatement(c, scope))
				} else {
					children = append(children, l.lowerExpr(c, scope))
				}
			}
		}
		l.body.Exprs[id].Children = children
		return id
	default:
		return l.missing(scope)
	}
}

func (l *lowering) lowerDeclarator(d *syntax.Node, scope ScopeId) ExprId {
	name := ""
	if n := d.ChildByField("name"); n != nil {
		name = n.Text()
	}
	id := l.newExpr(ExprBinding, d, name, scope)
	l.bind(scope, name, id)
	if v := d.ChildByField("value"); v != nil {
		l.body.Exprs[id].Children = []ExprId{l.lowerExpr(v, scope)}
	}
	return id
}

func (l *lowering) lowerExpr(e *syntax.Node, scope ScopeId) ExprId {
	switch e.Kind() {
	case syntax.KindIdentifier:
		return l.newExpr(ExprIdentifier, e, e.Text(), scope)
	case syntax.KindIntLiteral, syntax.KindFloatLiteral, syntax.KindStringLiteral,
		syntax.KindCharLiteral, syntax.KindBoolLiteral:
		return l.newExpr(ExprLiteral, e, e.Text(), scope)
	case syntax.KindFieldAccessExpression:
		id := l.newExpr(ExprFieldAccess, e, e.Text(), scope)
		if r := e.ChildByField("receiver"); r != nil {
			l.body.Exprs[id].Children = []ExprId{l.lowerExpr(r, scope)}
		}
		return id
	case syntax.KindMethodCallExpression:
		id := l.newExpr(ExprMethodCall, e, e.Text(), scope)
		var children []ExprId
		if r := e.ChildByField("receiver"); r != nil {
			children = append(children, l.lowerExpr(r, scope))
		}
		if args := e.ChildByField("arguments"); args != nil {
			for _, a := range args.Children() {
				children = append(children, l.lowerExpr(a, scope))
			}
		}
		l.body.Exprs[id].Children = children
		return id
	case syntax.KindCallExpression:
		id := l.newExpr(ExprCall, e, "", scope)
		var children []ExprId
		if callee := e.ChildByField("callee"); callee != nil {
			children = append(children, l.lowerExpr(callee, scope))
		}
		if args := e.ChildByField("arguments"); args != nil {
			for _, a := range args.Children() {
				children = append(children, l.lowerExpr(a, scope))
			}
		}
		l.body.Exprs[id].Children = children
		return id
	case syntax.KindBinaryExpression:
		id := l.newExpr(ExprBinary, e, e.Text(), scope)
		var children []ExprId
		if left := e.ChildByField("left"); left != nil {
			children = append(children, l.lowerExpr(left, scope))
		}
		if right := e.ChildByField("right"); right != nil {
			children = append(children, l.lowerExpr(right, scope))
		}
		l.body.Exprs[id].Children = children
		return id
	case syntax.KindUnaryExpression:
		id := l.newExpr(ExprBinary, e, e.Text(), scope)
		if operand := e.ChildByField("operand"); operand != nil {
			l.body.Exprs[id].Children = []ExprId{l.lowerExpr(operand, scope)}
		}
		return id
	case syntax.KindAssignmentExpression:
		id := l.newExpr(ExprAssignment, e, "", scope)
		var children []ExprId
		if left := e.ChildByField("left"); left != nil {
			children = append(children, l.lowerExpr(left, scope))
		}
		if right := e.ChildByField("right"); right != nil {
			children = append(children, l.lowerExpr(right, scope))
		}
		l.body.Exprs[id].Children = children
		return id
	case syntax.KindArrayIndexExpression:
		id := l.newExpr(ExprCall, e, "[]", scope)
		var children []ExprId
		if r := e.ChildByField("receiver"); r != nil {
			children = append(children, l.lowerExpr(r, scope))
		}
		if idx := e.ChildByField("index"); idx != nil {
			children = append(children, l.lowerExpr(idx, scope))
		}
		l.body.Exprs[id].Children = children
		return id
	default:
		return l.missing(scope)
	}
}

// ScopeFor returns the scope in force when expr was lowered.
func (b *Body) ScopeFor(expr ExprId) ScopeId {
	return b.Exprs[expr].Scope
}

// ScopeChain returns scope's ancestors, innermost first, ending at the
// body's root scope, per spec.md §4.7.
func (b *Body) ScopeChain(scope ScopeId) []ScopeId {
	var chain []ScopeId
	for s := scope; s != noParent; s = b.Scopes[s].Parent {
		chain = append(chain, s)
	}
	return chain
}

// ResolveNameInScope walks scope's chain for the first binding named name.
func (b *Body) ResolveNameInScope(scope ScopeId, name string) (Binding, bool) {
	for _, s := range b.ScopeChain(scope) {
		for i := len(b.Scopes[s].Bindings) - 1; i >= 0; i-- {
			if b.Scopes[s].Bindings[i].Name == name {
				return b.Scopes[s].Bindings[i], true
			}
		}
	}
	return Binding{}, false
}
