package scope

import (
	"fmt"

	"github.com/izreit/sifon/pkg/js"
	"github.com/izreit/sifon/pkg/logutil"
	"github.com/izreit/sifon/pkg/stage"
)

// EvalError is a failure of compile-time code.
type EvalError struct {
	Err error
	// Code is the evaluated code.
	Code string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%v (evaluating %s)", e.Err, e.Code)
}

func (e *EvalError) Unwrap() error { return e.Err }

// AddCompileTimeCode queues a compiled program to run in the compile-time
// namespace of the current scope. Queued programs run, in order, before the
// next evaluation in the scope or a scope nested in it, and when the scope
// is left.
func (e *Env) AddCompileTimeCode(prog *js.Node) {
	e.top.pending.PushBack(prog)
}

// CompileTimeEval runs the queued programs of the current scope and its
// ancestors, and then prog, returning the completion value of prog.
func (e *Env) CompileTimeEval(prog *js.Node) (stage.Value, error) {
	var chain []*Scope
	for s := e.top; s != nil; s = s.parent {
		chain = append(chain, s)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if err := e.flush(chain[i]); err != nil {
			return nil, err
		}
	}
	logger.Println("evaluate:", logutil.Lazy(prog.OneLine))
	v, err := e.interp.Run(e.top.ns, prog)
	if err != nil {
		return nil, &EvalError{err, prog.OneLine()}
	}
	return v, nil
}

func (e *Env) flush(s *Scope) error {
	for !s.pending.Empty() {
		prog := s.pending.Front().(*js.Node)
		s.pending.PopFront()
		logger.Println("run:", logutil.Lazy(prog.OneLine))
		if _, err := e.interp.Run(s.ns, prog); err != nil {
			return &EvalError{err, prog.OneLine()}
		}
	}
	return nil
}
