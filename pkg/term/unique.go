package term

// Unique is the identity of a hygienic symbol. Its textual name is decided
// by a Namer, usually once every declaration of the scope it lives in is
// known. After the name is read it never changes.
type Unique struct {
	Hint string
	// Home is owned by the Namer; it records where the symbol is declared.
	Home any

	name  string
	namer Namer
}

// Namer decides the name of a hygienic symbol.
type Namer interface {
	NameUnique(u *Unique) string
}

// NewUnique makes a new hygienic symbol identity.
func NewUnique(hint string, home any, namer Namer) *Unique {
	return &Unique{Hint: hint, Home: home, namer: namer}
}

// Name returns the name, deciding it if needed.
func (u *Unique) Name() string {
	if u.name == "" {
		if u.namer == nil {
			u.name = u.Hint
		} else {
			u.name = u.namer.NameUnique(u)
		}
	}
	return u.name
}

// Resolved reports whether the name is already decided.
func (u *Unique) Resolved() bool { return u.name != "" }

// Rehome moves an unresolved symbol to another home. It has no effect once
// the name is decided.
func (u *Unique) Rehome(home any) {
	if u.name == "" {
		u.Home = home
	}
}

// NewUniqueSym makes a symbol term carrying u.
func NewUniqueSym(u *Unique, p Pos) *Term {
	return &Term{Kind: Sym, Unique: u, Pos: p}
}
