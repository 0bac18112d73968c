package glslin

// Module represents a parsed GLSL translation unit.
type Module struct {
	Version       int // #version directive value, 0 if absent
	Structs       []*StructDecl
	Functions     []*FunctionDecl
	GlobalVars    []*VarDecl
	UniformBlocks []*BlockDecl
	WorkgroupSize [3]uint32 // from layout(local_size_*) in; zero if absent
}

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() Span
}

// Decl is the interface for declarations.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// StorageQualifier classifies a global declaration.
type StorageQualifier uint8

const (
	QualifierNone StorageQualifier = iota
	QualifierConst
	QualifierUniform
	QualifierIn
	QualifierOut
)

// LayoutQualifier carries the values of a layout(...) qualifier.
// Has* flags distinguish "absent" from an explicit zero.
type LayoutQualifier struct {
	Set         uint32
	Binding     uint32
	Location    uint32
	HasSet      bool
	HasBinding  bool
	HasLocation bool
	LocalSize   [3]uint32
	HasSize     [3]bool
	Span        Span
}

// StructDecl represents a struct declaration.
type StructDecl struct {
	Name    string
	Members []*StructMember
	Span    Span
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

// StructMember represents a struct or uniform-block member.
type StructMember struct {
	Name      string
	Type      Type
	ArraySize Expr // nil if not an array
	Span      Span
}

// BlockDecl represents a uniform block declaration.
// Members without an instance name are addressed directly by member
// name, GLSL-style.
type BlockDecl struct {
	Layout       *LayoutQualifier
	Name         string // block type name
	InstanceName string // optional
	Members      []*StructMember
	Span         Span
}

func (b *BlockDecl) Pos() Span { return b.Span }
func (b *BlockDecl) declNode() {}

// FunctionDecl represents a function declaration.
type FunctionDecl struct {
	Name       string
	Params     []*Parameter
	ReturnType Type
	Body       *BlockStmt
	Span       Span
}

func (f *FunctionDecl) Pos() Span { return f.Span }
func (f *FunctionDecl) declNode() {}

// Parameter represents a function parameter.
type Parameter struct {
	Name string
	Type Type
	Span Span
}

// VarDecl represents a variable declaration, global or local.
type VarDecl struct {
	Name      string
	Type      Type
	ArraySize Expr // nil if not an array
	Init      Expr
	Qualifier StorageQualifier
	Layout    *LayoutQualifier
	Flat      bool // flat interpolation on in/out
	Varying   bool // declared with the legacy varying keyword
	Span      Span
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}
func (v *VarDecl) stmtNode() {}

// Type represents a type.
type Type interface {
	Node
	typeNode()
}

// NamedType represents a named type (float, vec3, mat4, sampler2D, or a
// user struct name).
type NamedType struct {
	Name string
	Span Span
}

func (n *NamedType) Pos() Span { return n.Span }
func (n *NamedType) typeNode() {}

// ArrayType represents an array type.
type ArrayType struct {
	Element Type
	Size    Expr // nil for unsized
	Span    Span
}

func (a *ArrayType) Pos() Span { return a.Span }
func (a *ArrayType) typeNode() {}

// Statements

// BlockStmt represents a block statement.
type BlockStmt struct {
	Statements []Stmt
	Span       Span
}

func (b *BlockStmt) Pos() Span { return b.Span }
func (b *BlockStmt) stmtNode() {}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}

// IfStmt represents an if statement.
type IfStmt struct {
	Condition Expr
	Body      *BlockStmt
	Else      Stmt // *BlockStmt or *IfStmt
	Span      Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt represents a for loop.
type ForStmt struct {
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      *BlockStmt
	Span      Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Span      Span
}

func (w *WhileStmt) Pos() Span { return w.Span }
func (w *WhileStmt) stmtNode() {}

// BreakStmt represents a break statement.
type BreakStmt struct {
	Span Span
}

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	Span Span
}

func (c *ContinueStmt) Pos() Span { return c.Span }
func (c *ContinueStmt) stmtNode() {}

// DiscardStmt represents a discard statement.
type DiscardStmt struct {
	Span Span
}

func (d *DiscardStmt) Pos() Span { return d.Span }
func (d *DiscardStmt) stmtNode() {}

// AssignStmt represents an assignment statement.
// Postfix and prefix increment/decrement statements are desugared into
// this form by the parser (i++ becomes i += 1).
type AssignStmt struct {
	Left  Expr
	Op    TokenKind // =, +=, -=, etc.
	Right Expr
	Span  Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}

// ExprStmt represents an expression statement.
type ExprStmt struct {
	Expr Expr
	Span Span
}

func (e *ExprStmt) Pos() Span { return e.Span }
func (e *ExprStmt) stmtNode() {}

// SwitchStmt represents a switch statement.
type SwitchStmt struct {
	Selector Expr
	Cases    []*SwitchCaseClause
	Span     Span
}

func (s *SwitchStmt) Pos() Span { return s.Span }
func (s *SwitchStmt) stmtNode() {}

// SwitchCaseClause represents a case clause in a switch statement.
type SwitchCaseClause struct {
	Selectors []Expr // case selectors (empty for default)
	IsDefault bool
	Body      []Stmt
	Span      Span
}

// Expressions

// Ident represents an identifier.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// Literal represents a literal value.
type Literal struct {
	Kind  TokenKind // IntLiteral, FloatLiteral, BoolLiteral
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    TokenKind
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// UnaryExpr represents a prefix unary expression.
type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// TernaryExpr represents a conditional expression (cond ? a : b).
type TernaryExpr struct {
	Condition Expr
	Accept    Expr
	Reject    Expr
	Span      Span
}

func (t *TernaryExpr) Pos() Span { return t.Span }
func (t *TernaryExpr) exprNode() {}

// CallExpr represents a function call.
type CallExpr struct {
	Func *Ident
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// IndexExpr represents an index expression.
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// MemberExpr represents a member access or swizzle expression.
type MemberExpr struct {
	Expr   Expr
	Member string
	Span   Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// ConstructExpr represents a type constructor expression (vec4(...)).
type ConstructExpr struct {
	Type Type
	Args []Expr
	Span Span
}

func (c *ConstructExpr) Pos() Span { return c.Span }
func (c *ConstructExpr) exprNode() {}
