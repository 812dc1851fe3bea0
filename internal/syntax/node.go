// Package syntax wraps a concrete syntax tree behind the typed-node
// interface spec.md §4.3 describes for an external grammar-based parser:
// Kind, ByteRange, field lookup, and Walk. No SourcePawn tree-sitter
// grammar exists as a fetchable Go package, so the tree underneath is
// built by a hand-rolled recursive-descent parser (parser.go), grounded on
// original_source's crates/parser/src/{enum_parser,variable_parser}.rs node
// kind names — but every caller outside this package talks only to Node,
// never to the parser's internals, so a real grammar could be dropped in
// later without touching them.
package syntax

import "github.com/jward/pawnls/internal/lexer"

// Kind identifies a node's syntactic category, named after the tree-sitter
// node kinds the grammar it is modeled on already uses.
type Kind uint8

const (
	KindFile Kind = iota
	KindFunctionDeclaration
	KindParameterList
	KindParameterDeclaration
	KindBlock
	KindVariableDeclaration
	KindVariableDeclarationStatement
	KindOldVariableDeclaration
	KindEnum
	KindEnumEntries
	KindEnumEntry
	KindEnumStruct
	KindMethodmap
	KindMethodmapBody
	KindMethodmapMethod
	KindMethodmapProperty
	KindMethodmapPropertyAccessor
	KindTypedef
	KindTypeset
	KindFunctag
	KindFuncenum
	KindExpressionStatement
	KindIfStatement
	KindWhileStatement
	KindForStatement
	KindReturnStatement
	KindBinaryExpression
	KindUnaryExpression
	KindAssignmentExpression
	KindCallExpression
	KindArgumentList
	KindFieldAccessExpression
	KindMethodCallExpression
	KindArrayIndexExpression
	KindIdentifier
	KindIntLiteral
	KindFloatLiteral
	KindStringLiteral
	KindCharLiteral
	KindBoolLiteral
	KindComment
	KindPreprocPragma
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "source_file"
	case KindFunctionDeclaration:
		return "function_declaration"
	case KindParameterList:
		return "parameter_list"
	case KindParameterDeclaration:
		return "parameter_declaration"
	case KindBlock:
		return "block"
	case KindVariableDeclaration:
		return "variable_declaration"
	case KindVariableDeclarationStatement:
		return "variable_declaration_statement"
	case KindOldVariableDeclaration:
		return "old_variable_declaration"
	case KindEnum:
		return "enum"
	case KindEnumEntries:
		return "enum_entries"
	case KindEnumEntry:
		return "enum_entry"
	case KindEnumStruct:
		return "enum_struct"
	case KindMethodmap:
		return "methodmap"
	case KindMethodmapBody:
		return "methodmap_body"
	case KindMethodmapMethod:
		return "methodmap_method"
	case KindMethodmapProperty:
		return "methodmap_property"
	case KindMethodmapPropertyAccessor:
		return "methodmap_property_getter"
	case KindTypedef:
		return "typedef"
	case KindTypeset:
		return "typeset"
	case KindFunctag:
		return "functag"
	case KindFuncenum:
		return "funcenum"
	case KindExpressionStatement:
		return "expression_statement"
	case KindIfStatement:
		return "if_statement"
	case KindWhileStatement:
		return "while_statement"
	case KindForStatement:
		return "for_statement"
	case KindReturnStatement:
		return "return_statement"
	case KindBinaryExpression:
		return "binary_expression"
	case KindUnaryExpression:
		return "unary_expression"
	case KindAssignmentExpression:
		return "assignment_expression"
	case KindCallExpression:
		return "call_expression"
	case KindArgumentList:
		return "argument_list"
	case KindFieldAccessExpression:
		return "field_access_expression"
	case KindMethodCallExpression:
		return "method_call_expression"
	case KindArrayIndexExpression:
		return "array_index_expression"
	case KindIdentifier:
		return "identifier"
	case KindIntLiteral:
		return "int_literal"
	case KindFloatLiteral:
		return "float_literal"
	case KindStringLiteral:
		return "string_literal"
	case KindCharLiteral:
		return "char_literal"
	case KindBoolLiteral:
		return "bool_literal"
	case KindComment:
		return "comment"
	case KindPreprocPragma:
		return "preproc_pragma"
	case KindError:
		return "ERROR"
	default:
		return "unknown"
	}
}

// Node is one CST node. Children carry an optional Field role so callers can
// do child_by_field_name-style lookups (ChildByField) the way the grammar
// this is modeled on exposes "name", "type", "body", "value" fields.
type Node struct {
	kind     Kind
	byteRange lexer.Range
	text     string // only meaningful for leaf (token) nodes
	parent   *Node
	children []*Node
	fields   []string // fields[i] is children[i]'s field role, "" if none
}

func newNode(kind Kind, r lexer.Range) *Node {
	return &Node{kind: kind, byteRange: r}
}

// Kind returns the node's syntactic category.
func (n *Node) Kind() Kind { return n.kind }

// ByteRange returns the node's half-open byte span in the preprocessed text.
func (n *Node) ByteRange() lexer.Range { return n.byteRange }

// Text returns a leaf node's literal text. Empty for non-leaf nodes.
func (n *Node) Text() string { return n.text }

// Parent returns the enclosing node, or nil for the file root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns this node's direct children, in source order.
func (n *Node) Children() []*Node { return n.children }

// ChildByField returns the first child registered under the given field
// name (e.g. "name", "type", "body"), or nil if none.
func (n *Node) ChildByField(field string) *Node {
	for i, f := range n.fields {
		if f == field {
			return n.children[i]
		}
	}
	return nil
}

func (n *Node) addChild(c *Node, field string) {
	c.parent = n
	n.children = append(n.children, c)
	n.fields = append(n.fields, field)
}

// Walk performs a pre-order traversal of the tree rooted at n, calling visit
// for every node including n itself. Returning false from visit skips that
// node's children.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// IsError reports whether n is (or was synthesized for) a parse error,
// backing the syntax-error diagnostic query in spec.md §7.
func (n *Node) IsError() bool { return n.kind == KindError }
