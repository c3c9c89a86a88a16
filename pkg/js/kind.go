package js

// Kind is the type of a Node.
type Kind uint8

// Node kinds. They follow the productions of ECMAScript 5, plus a few
// helpers: Statements is a flat statement list that vanishes when nested in
// another list, Nil renders nothing, and the _Multi kinds are n-ary versions
// of the left-associative binary operators.
const (
	Identifier Kind = iota
	Literal
	ArrayLiteral
	ObjectLiteral
	Paren
	PropertyAssignment
	FunctionExpression
	FormalParameterList
	Bracket
	Dot
	New
	Call
	IdentifierName
	Arguments

	PostInc
	PostDec
	Delete
	Void
	Typeof
	PreInc
	PreDec
	UnaryPlus
	UnaryMinus
	BitNot
	Not

	Mul
	Div
	Mod
	Add
	Sub
	LShift
	SRShift
	URShift
	Lt
	Gt
	Le
	Ge
	Instanceof
	In
	Eq
	Ne
	StrictEq
	StrictNe
	BitAnd
	BitXor
	BitOr
	And
	Or
	Conditional

	Assign
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	LShiftAssign
	SRShiftAssign
	URShiftAssign
	BitAndAssign
	BitXorAssign
	BitOrAssign
	Comma

	MulMulti
	DivMulti
	ModMulti
	AddMulti
	SubMulti
	LShiftMulti
	SRShiftMulti
	URShiftMulti
	BitAndMulti
	BitXorMulti
	BitOrMulti
	AndMulti
	OrMulti
	CommaMulti

	Statements
	Block
	VariableStatement
	VariableDeclarationList
	VariableDeclaration
	VariableStatementDirect
	VariableStatementNoAssign
	EmptyStatement
	Nil
	ExpressionStatement
	IfStatement
	DoStatement
	WhileStatement
	ForStatement
	ForInStatement
	ContinueStatement
	BreakStatement
	ReturnStatement
	ThrowStatement
	LabelledStatement
	SwitchStatement
	CaseClause
	DefaultClause
	TryStatement
	Catch
	Finally
	DebuggerStatement
	SourceElements

	numKinds
)

// Operator precedences, from ECMA 262 5th A.3. `in` gets the lowest so that
// it is always parenthesized, which removes the need for the NoIn
// productions.
const (
	PrecPrimary = iota
	PrecMember
	PrecPostfix
	PrecUnary
	PrecMultiplicative
	PrecAdditive
	PrecShift
	PrecRelational
	PrecEquality
	PrecBitwiseAND
	PrecBitwiseXOR
	PrecBitwiseOR
	PrecLogicalAND
	PrecLogicalOR
	PrecConditional
	PrecAssignment
	PrecExpression

	PrecIn = 100
)

type class uint8

const (
	classPlain class = iota
	classExpr
	classStatement
	classJump
	classClause
)

type slotType uint8

const (
	slotPrec slotType = iota
	slotKind
	slotLeaf
	slotStatement
	slotClause
)

type slot struct {
	typ  slotType
	prec int
	kind Kind
}

func p(prec int) slot  { return slot{typ: slotPrec, prec: prec} }
func k(kind Kind) slot { return slot{typ: slotKind, kind: kind} }

var (
	leaf      = slot{typ: slotLeaf}
	statement = slot{typ: slotStatement}
	clause    = slot{typ: slotClause}
)

type kindInfo struct {
	name   string
	class  class
	prec   int
	multi  bool
	slots  []slot
	varlen bool
	// tmpl is a template whose ### are replaced by the children's code.
	tmpl string
}

var kinds [numKinds]kindInfo

func expr(kind Kind, name string, prec int, tmpl string, slots ...slot) {
	kinds[kind] = kindInfo{name: name, class: classExpr, prec: prec, tmpl: tmpl, slots: slots}
}

func exprVar(kind Kind, name string, prec int, tmpl string, slots ...slot) {
	expr(kind, name, prec, tmpl, slots...)
	kinds[kind].varlen = true
}

func multi(kind Kind, name string, prec int, sep string, elem slot) {
	kinds[kind] = kindInfo{name: name, class: classExpr, prec: prec, multi: true,
		tmpl: sep, slots: []slot{elem}, varlen: true}
}

func stmt(kind Kind, name string, cls class, varlen bool, tmpl string, slots ...slot) {
	kinds[kind] = kindInfo{name: name, class: cls, prec: -1, tmpl: tmpl, slots: slots, varlen: varlen}
}

func init() {
	expr(Identifier, "Identifier", PrecPrimary, "", leaf)
	expr(Literal, "Literal", PrecPrimary, "", leaf)
	exprVar(ArrayLiteral, "ArrayLiteral", PrecPrimary, "", p(PrecAssignment))
	exprVar(ObjectLiteral, "ObjectLiteral", PrecPrimary, "", k(PropertyAssignment))
	expr(Paren, "Paren", PrecPrimary, "(###)", p(PrecIn))
	stmt(PropertyAssignment, "PropertyAssignment", classPlain, false, "", leaf, p(PrecAssignment))
	expr(FunctionExpression, "FunctionExpression", PrecPrimary, "",
		k(Identifier), k(FormalParameterList), k(SourceElements))
	stmt(FormalParameterList, "FormalParameterList", classPlain, true, "", k(Identifier))
	expr(Bracket, "Bracket", PrecMember, "###[###]", p(PrecMember), p(PrecExpression))
	expr(Dot, "Dot", PrecMember, "###.###", p(PrecMember), k(IdentifierName))
	expr(New, "New", PrecMember, "new ###(###)", p(PrecMember), k(Arguments))
	expr(Call, "Call", PrecMember, "###(###)", p(PrecMember), k(Arguments))
	stmt(IdentifierName, "IdentifierName", classPlain, false, "", leaf)
	stmt(Arguments, "Arguments", classPlain, true, "", p(PrecAssignment))

	expr(PostInc, "PostInc", PrecPostfix, "###++", p(PrecMember))
	expr(PostDec, "PostDec", PrecPostfix, "###--", p(PrecMember))
	for _, u := range []struct {
		kind Kind
		name string
		op   string
	}{
		{Delete, "Delete", "delete "}, {Void, "Void", "void "}, {Typeof, "Typeof", "typeof "},
		{PreInc, "PreInc", "++"}, {PreDec, "PreDec", "--"},
		{UnaryPlus, "UnaryPlus", "+"}, {UnaryMinus, "UnaryMinus", "-"},
		{BitNot, "BitNot", "~"}, {Not, "Not", "!"},
	} {
		expr(u.kind, u.name, PrecUnary, u.op+"###", p(PrecUnary))
	}

	for _, b := range []struct {
		kind        Kind
		name, op    string
		prec, right int
	}{
		{Mul, "Mul", "*", PrecMultiplicative, PrecUnary},
		{Div, "Div", "/", PrecMultiplicative, PrecUnary},
		{Mod, "Mod", "%", PrecMultiplicative, PrecUnary},
		{Add, "Add", "+", PrecAdditive, PrecMultiplicative},
		{Sub, "Sub", "-", PrecAdditive, PrecMultiplicative},
		{LShift, "LShift", "<<", PrecShift, PrecAdditive},
		{SRShift, "SRShift", ">>", PrecShift, PrecAdditive},
		{URShift, "URShift", ">>>", PrecShift, PrecAdditive},
		{Lt, "Lt", "<", PrecRelational, PrecShift},
		{Gt, "Gt", ">", PrecRelational, PrecShift},
		{Le, "Le", "<=", PrecRelational, PrecShift},
		{Ge, "Ge", ">=", PrecRelational, PrecShift},
		{Instanceof, "Instanceof", "instanceof", PrecRelational, PrecShift},
		{Eq, "Eq", "==", PrecEquality, PrecRelational},
		{Ne, "Ne", "!=", PrecEquality, PrecRelational},
		{StrictEq, "StrictEq", "===", PrecEquality, PrecRelational},
		{StrictNe, "StrictNe", "!==", PrecEquality, PrecRelational},
		{BitAnd, "BitAnd", "&", PrecBitwiseAND, PrecEquality},
		{BitXor, "BitXor", "^", PrecBitwiseXOR, PrecBitwiseAND},
		{BitOr, "BitOr", "|", PrecBitwiseOR, PrecBitwiseXOR},
		{And, "And", "&&", PrecLogicalAND, PrecBitwiseOR},
		{Or, "Or", "||", PrecLogicalOR, PrecLogicalAND},
	} {
		expr(b.kind, b.name, b.prec, "### "+b.op+" ###", p(b.prec), p(b.right))
	}
	expr(In, "In", PrecIn, "### in ###", p(PrecRelational), p(PrecShift))
	expr(Conditional, "Conditional", PrecConditional, "### ? ### : ###",
		p(PrecLogicalOR), p(PrecAssignment), p(PrecAssignment))

	for _, a := range []struct {
		kind     Kind
		name, op string
	}{
		{Assign, "Assign", "="}, {AddAssign, "AddAssign", "+="}, {SubAssign, "SubAssign", "-="},
		{MulAssign, "MulAssign", "*="}, {DivAssign, "DivAssign", "/="}, {ModAssign, "ModAssign", "%="},
		{LShiftAssign, "LShiftAssign", "<<="}, {SRShiftAssign, "SRShiftAssign", ">>="},
		{URShiftAssign, "URShiftAssign", ">>>="}, {BitAndAssign, "BitAndAssign", "&="},
		{BitXorAssign, "BitXorAssign", "^="}, {BitOrAssign, "BitOrAssign", "|="},
	} {
		expr(a.kind, a.name, PrecAssignment, "### "+a.op+" ###", p(PrecMember), p(PrecAssignment))
	}
	expr(Comma, "Comma", PrecExpression, "###, ###", p(PrecExpression), p(PrecAssignment))

	multi(MulMulti, "Mul_Multi", PrecMultiplicative, " * ", p(PrecUnary))
	multi(DivMulti, "Div_Multi", PrecMultiplicative, " / ", p(PrecUnary))
	multi(ModMulti, "Mod_Multi", PrecMultiplicative, " % ", p(PrecUnary))
	multi(AddMulti, "Add_Multi", PrecAdditive, " + ", p(PrecMultiplicative))
	multi(SubMulti, "Sub_Multi", PrecAdditive, " - ", p(PrecMultiplicative))
	multi(LShiftMulti, "LShift_Multi", PrecShift, " << ", p(PrecAdditive))
	multi(SRShiftMulti, "SRShift_Multi", PrecShift, " >> ", p(PrecAdditive))
	multi(URShiftMulti, "URShift_Multi", PrecShift, " >>> ", p(PrecAdditive))
	multi(BitAndMulti, "BitAnd_Multi", PrecBitwiseAND, " & ", p(PrecEquality))
	multi(BitXorMulti, "BitXor_Multi", PrecBitwiseXOR, " ^ ", p(PrecBitwiseAND))
	multi(BitOrMulti, "BitOr_Multi", PrecBitwiseOR, " | ", p(PrecBitwiseXOR))
	multi(AndMulti, "And_Multi", PrecLogicalAND, " && ", p(PrecBitwiseOR))
	multi(OrMulti, "Or_Multi", PrecLogicalOR, " || ", p(PrecLogicalAND))
	multi(CommaMulti, "Comma_Multi", PrecExpression, ", ", p(PrecAssignment))

	stmt(Statements, "Statements", classStatement, true, "", statement)
	stmt(Block, "Block", classStatement, true, "", statement)
	stmt(VariableStatement, "VariableStatement", classStatement, false, "var ###;", k(VariableDeclarationList))
	stmt(VariableDeclarationList, "VariableDeclarationList", classPlain, true, "", k(VariableDeclaration))
	stmt(VariableDeclaration, "VariableDeclaration", classPlain, false, "", k(Identifier), p(PrecAssignment))
	stmt(VariableStatementDirect, "VariableStatement_Direct", classStatement, true, "", k(VariableDeclaration))
	stmt(VariableStatementNoAssign, "VariableStatement_NoAssign", classStatement, true, "", k(Identifier))
	stmt(EmptyStatement, "EmptyStatement", classStatement, false, ";")
	stmt(Nil, "Nil", classStatement, false, "")
	stmt(ExpressionStatement, "ExpressionStatement", classStatement, false, "###;", p(PrecExpression))
	stmt(IfStatement, "IfStatement", classStatement, false, "", p(PrecIn), statement, statement)
	stmt(DoStatement, "DoStatement", classStatement, false, "do ### while (###);", statement, p(PrecExpression))
	stmt(WhileStatement, "WhileStatement", classStatement, false, "while (###) ###", p(PrecExpression), statement)
	stmt(ForStatement, "ForStatement", classStatement, false, "",
		p(PrecExpression), p(PrecExpression), p(PrecExpression), statement)
	stmt(ForInStatement, "ForInStatement", classStatement, false, "for (### in ###) ###",
		p(PrecMember), p(PrecExpression), statement)
	stmt(ContinueStatement, "ContinueStatement", classJump, false, "", k(Identifier))
	stmt(BreakStatement, "BreakStatement", classJump, false, "", k(Identifier))
	stmt(ReturnStatement, "ReturnStatement", classJump, false, "", p(PrecExpression))
	stmt(ThrowStatement, "ThrowStatement", classJump, false, "throw ###;", p(PrecExpression))
	stmt(LabelledStatement, "LabelledStatement", classStatement, false, "###: ###", k(Identifier), statement)
	stmt(SwitchStatement, "SwitchStatement", classStatement, true, "", p(PrecExpression), clause)
	stmt(CaseClause, "CaseClause", classClause, true, "", p(PrecExpression), statement)
	stmt(DefaultClause, "DefaultClause", classClause, true, "", statement)
	stmt(TryStatement, "TryStatement", classStatement, false, "", k(Block), k(Catch), k(Finally))
	stmt(Catch, "Catch", classPlain, false, "catch (###) ###", k(Identifier), k(Block))
	stmt(Finally, "Finally", classPlain, false, "finally ###", k(Block))
	stmt(DebuggerStatement, "DebuggerStatement", classStatement, false, "debugger;")
	stmt(SourceElements, "SourceElements", classPlain, true, "", statement)
}

func (k Kind) String() string {
	if k < numKinds {
		return kinds[k].name
	}
	return "Kind(?)"
}

// IsStatement reports whether nodes of kind k are statements.
func (k Kind) IsStatement() bool {
	c := kinds[k].class
	return c == classStatement || c == classJump
}

// IsUpdate reports whether k assigns to its first child: the assignment
// operators and the increments and decrements.
func (k Kind) IsUpdate() bool {
	switch k {
	case PreInc, PreDec, PostInc, PostDec, VariableDeclaration, ForInStatement:
		return true
	}
	return k >= Assign && k <= BitOrAssign
}

// IsJump reports whether k is one of break, continue, return and throw.
func (k Kind) IsJump() bool { return kinds[k].class == classJump }

// IsExpression reports whether k is an expression kind.
func (k Kind) IsExpression() bool { return kinds[k].class == classExpr }
