package evm

// Step is the information a hook sees around each executed instruction:
// the current frame and the opcode about to run (or just run).
type Step struct {
	Call   *Call
	Op     *Operation
	Pc     uint64
	Code   []byte
}

// hook mirrors the teacher's own interface shape, trimmed of the
// JSON-persisted debugger registry: batch fixture runs attach hooks once at
// startup rather than saving/loading a live session.
type hook interface {
	PreRun(step *Step) error
	PostRun(step *Step) error
}

// EmptyHook is the teacher's no-op base, kept for hooks that only care
// about one side of the step.
type EmptyHook struct{}

func (h *EmptyHook) PreRun(step *Step) error  { return nil }
func (h *EmptyHook) PostRun(step *Step) error { return nil }

// Hooks is a Context's list of attached step callbacks. The zero value is a
// no-op, matching the teacher's EmptyHook default.
type Hooks struct {
	arr []hook
}

func (hks *Hooks) PreRunAll(step *Step) error {
	for _, h := range hks.arr {
		if e := h.PreRun(step); e != nil {
			return e
		}
	}
	return nil
}

func (hks *Hooks) PostRunAll(step *Step) error {
	for _, h := range hks.arr {
		if e := h.PostRun(step); e != nil {
			return e
		}
	}
	return nil
}

func (hks *Hooks) Attach(h hook) {
	hks.arr = append(hks.arr, h)
}

func (hks *Hooks) Detach(i int) {
	if i >= 0 && i < len(hks.arr) {
		hks.arr = append(hks.arr[:i], hks.arr[i+1:]...)
	}
}

func (hks *Hooks) List() []hook {
	return hks.arr
}
