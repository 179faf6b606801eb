package capture

import (
	"io"
	"os"
	"sync"
)

// Recorder intercepts process-wide stdout/stderr for the span of a run so
// each test case's output can be attached to its result record. Between
// Install and Uninstall the streams behave normally except while a case
// is open, when writes are teed into per-case buffers.
//
// Capture is a reporting enhancement: any OS-level hiccup (pipe creation
// failing) degrades to empty captured text instead of failing the run.
type Recorder struct {
	mu        sync.Mutex
	installed bool
	limit     int
	origOut   *os.File
	origErr   *os.File
	active    *activeCase
}

type activeCase struct {
	outW, errW *os.File
	out, err   *tailBuffer
	degraded   bool
	wg         sync.WaitGroup
}

func NewRecorder() *Recorder {
	return &Recorder{limit: defaultTailBytes}
}

// NewRecorderWithLimit caps each per-case stream buffer at limit bytes.
func NewRecorderWithLimit(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Install arms the recorder. Idempotent: a second Install while armed is
// a no-op.
func (r *Recorder) Install() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.installed {
		return
	}
	r.origOut = os.Stdout
	r.origErr = os.Stderr
	r.installed = true
}

// Uninstall restores the exact prior stream behavior, discarding any
// open case. Safe to call when not installed.
func (r *Recorder) Uninstall() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.installed {
		return
	}
	r.finishActiveLocked()
	r.installed = false
}

// BeginCase starts collecting output for one test case. Writes keep
// flowing to the real streams as well, so a live progress reporter
// composes with capture.
func (r *Recorder) BeginCase() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.installed {
		return
	}
	r.finishActiveLocked()

	ac := &activeCase{
		out: newTailBuffer(r.limit),
		err: newTailBuffer(r.limit),
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		ac.degraded = true
		r.active = ac
		return
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		ac.degraded = true
		r.active = ac
		return
	}

	ac.outW, ac.errW = outW, errW
	ac.wg.Add(2)
	go drain(outR, r.origOut, ac.out, &ac.wg)
	go drain(errR, r.origErr, ac.err, &ac.wg)

	os.Stdout = outW
	os.Stderr = errW
	r.active = ac
}

// EndCase closes the open case and returns its captured text. Without a
// matching BeginCase (or when degraded) both strings are empty.
func (r *Recorder) EndCase() (stdout, stderr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishActiveLocked()
}

// Capture runs fn with a case open around it. The pairing is deferred,
// so a panicking fn still leaves the streams restored.
func (r *Recorder) Capture(fn func() error) (stdout, stderr string, err error) {
	r.BeginCase()
	defer func() {
		stdout, stderr = r.EndCase()
	}()
	err = fn()
	return
}

func (r *Recorder) finishActiveLocked() (string, string) {
	ac := r.active
	if ac == nil {
		return "", ""
	}
	r.active = nil
	if ac.degraded {
		return "", ""
	}

	os.Stdout = r.origOut
	os.Stderr = r.origErr
	ac.outW.Close()
	ac.errW.Close()
	ac.wg.Wait()
	return ac.out.String(), ac.err.String()
}

// drain tees everything from the pipe into the original stream and the
// case buffer until the write end closes.
func drain(src *os.File, orig *os.File, buf *tailBuffer, wg *sync.WaitGroup) {
	defer wg.Done()
	defer src.Close()
	w := io.MultiWriter(orig, buf)
	_, _ = io.Copy(w, src)
}
