package diag

import "github.com/segmentio/fasthash/fnv1a"

// Receiver collects the messages of one compilation. It drops a message
// whose rendered text equals one received before, and counts errors.
//
// Compilation units can be nested with EnterUnit and LeaveUnit. The messages
// and the error count of a nested unit are merged into its parent when it is
// left.
type Receiver struct {
	seen  map[uint64]struct{}
	msgs  []*Message
	errs  int
	stack []unitState
}

type unitState struct {
	msgs []*Message
	errs int
}

// NewReceiver makes an empty Receiver.
func NewReceiver() *Receiver {
	r := &Receiver{}
	r.Reset()
	return r
}

// Reset drops everything received.
func (r *Receiver) Reset() {
	r.seen = make(map[uint64]struct{})
	r.msgs = nil
	r.errs = 0
	r.stack = nil
}

// Report receives a message.
func (r *Receiver) Report(m *Message) {
	key := fnv1a.HashString64(m.Error())
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	if m.Kind == Error {
		r.errs++
	}
	r.msgs = append(r.msgs, m)
}

// Messages returns the messages received in the current unit.
func (r *Receiver) Messages() []*Message { return r.msgs }

// ErrorCount returns the number of errors received in the current unit.
func (r *Receiver) ErrorCount() int { return r.errs }

// EnterUnit starts a nested compilation unit.
func (r *Receiver) EnterUnit() {
	r.stack = append(r.stack, unitState{r.msgs, r.errs})
	r.msgs = nil
	r.errs = 0
}

// LeaveUnit ends the innermost unit, merges it into its parent and returns
// the number of errors it received.
func (r *Receiver) LeaveUnit() int {
	n := len(r.stack)
	if n == 0 {
		panic("diag: LeaveUnit without EnterUnit")
	}
	parent := r.stack[n-1]
	r.stack = r.stack[:n-1]
	errs := r.errs
	r.msgs = append(parent.msgs, r.msgs...)
	r.errs += parent.errs
	return errs
}

// Reporter receives messages. *Receiver implements it.
type Reporter interface {
	Report(m *Message)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(m *Message)

// Report calls f.
func (f ReporterFunc) Report(m *Message) { f(m) }
