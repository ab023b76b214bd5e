package symbols

// Symbol is any resolved member or type: *Type, *Method, *Property, *Field
// or *Event.
type Symbol interface {
	Key() string
}

// Expr is a node of a discovery-site body. Nodes carry the symbol the host
// resolved for them; a nil symbol means the reference did not resolve.
type Expr interface {
	exprNode()
}

// Invocation calls Method on Target (nil for static calls).
type Invocation struct {
	Method *Method
	Target Expr
	Args   []Expr
}

// MemberAccess reads a property, field or event of Target.
type MemberAccess struct {
	Member Symbol
	Target Expr
}

// ObjectCreation is a `new T(...)` expression.
type ObjectCreation struct {
	Constructor *Method
	Args        []Expr
}

// Identifier is a bare name. Symbol is a *Type when the name denotes a type.
type Identifier struct {
	Name   string
	Symbol Symbol
}

// Assignment is `Left Op Right` where Op is "=", "+=" or "-=".
type Assignment struct {
	Left  Expr
	Op    string
	Right Expr
}

// Cast is `(Type)Operand`.
type Cast struct {
	Type    *Type
	Operand Expr
}

// LocalDeclaration declares a local variable of Type.
type LocalDeclaration struct {
	Name string
	Type *Type
	Init Expr
}

// Literal is a constant.
type Literal struct {
	Value string
	Type  *Type
}

func (*Invocation) exprNode()       {}
func (*MemberAccess) exprNode()     {}
func (*ObjectCreation) exprNode()   {}
func (*Identifier) exprNode()       {}
func (*Assignment) exprNode()       {}
func (*Cast) exprNode()             {}
func (*LocalDeclaration) exprNode() {}
func (*Literal) exprNode()          {}
