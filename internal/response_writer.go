package internal

import (
	"bytes"
	"maps"
	"net/http"
	"sync"
)

// ResponseWriter is the per-request response builder.
// Handlers and middleware write into it; nothing reaches the client until
// Commit is called once the pipeline has finished. Headers are set on the
// underlying writer directly and are sent at commit time.
type ResponseWriter struct {
	w            http.ResponseWriter
	body         bytes.Buffer
	status       int
	touched      bool
	committed    bool
	beforeCommit []func()
	mu           sync.Mutex
}

// NewResponseWriter creates a response builder on top of w with status 200.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		w:      w,
		status: http.StatusOK,
	}
}

// Header returns the header map that will be sent on commit.
func (w *ResponseWriter) Header() http.Header {
	return w.w.Header()
}

// WriteHeader records the status code. The last call before commit wins.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed {
		return
	}
	w.status = code
	w.touched = true
}

// Write appends b to the buffered body.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed {
		return 0, http.ErrBodyNotAllowed
	}
	w.touched = true
	return w.body.Write(b)
}

// WriteString appends s to the buffered body.
func (w *ResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// presetStatus sets a default status without marking the response written.
func (w *ResponseWriter) presetStatus(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = code
}

// Status returns the status code that will be sent.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Body returns a copy of the buffered body.
func (w *ResponseWriter) Body() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Clone(w.body.Bytes())
}

// SetBody replaces the buffered body.
func (w *ResponseWriter) SetBody(b []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.body.Reset()
	w.body.Write(b)
	w.touched = true
}

// Reset discards the buffered body and restores status 200.
// Headers are kept.
func (w *ResponseWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.body.Reset()
	w.status = http.StatusOK
	w.touched = false
}

// Size returns the number of buffered body bytes.
func (w *ResponseWriter) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.body.Len()
}

// Written reports whether a status or body has been produced.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}

// Committed reports whether the response was sent to the client.
func (w *ResponseWriter) Committed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.committed
}

// OnBeforeCommit registers a hook run right before the response is sent.
// Hooks run in registration order and may still change headers.
func (w *ResponseWriter) OnBeforeCommit(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeCommit = append(w.beforeCommit, fn)
}

// Commit runs the hooks and sends status, headers and body. Only the first call has effect.
func (w *ResponseWriter) Commit() error {
	w.mu.Lock()
	if w.committed {
		w.mu.Unlock()
		return nil
	}
	hooks := w.beforeCommit
	w.beforeCommit = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.committed = true
	w.w.WriteHeader(w.status)
	if w.body.Len() == 0 || !bodyAllowed(w.status) {
		return nil
	}
	_, err := w.w.Write(w.body.Bytes())
	return err
}

// fork returns a builder detached from the client. It starts from w's
// status, body and a clone of its headers; hooks stay with w.
func (w *ResponseWriter) fork() *ResponseWriter {
	w.mu.Lock()
	defer w.mu.Unlock()

	header := w.w.Header().Clone()
	if header == nil {
		header = http.Header{}
	}
	f := &ResponseWriter{
		w:       &detachedWriter{header: header},
		status:  w.status,
		touched: w.touched,
	}
	f.body.Write(w.body.Bytes())
	return f
}

// adopt takes over the status, body, headers and hooks of a forked builder.
func (w *ResponseWriter) adopt(from *ResponseWriter) {
	from.mu.Lock()
	status, touched := from.status, from.touched
	body := bytes.Clone(from.body.Bytes())
	hooks := from.beforeCommit
	from.beforeCommit = nil
	from.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed {
		return
	}
	w.status = status
	w.touched = touched
	w.body.Reset()
	w.body.Write(body)
	w.beforeCommit = append(w.beforeCommit, hooks...)

	dst := w.w.Header()
	clear(dst)
	maps.Copy(dst, from.w.Header())
}

// discard seals the builder. Later writes fail and status changes are ignored.
func (w *ResponseWriter) discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.committed = true
	w.beforeCommit = nil
}

// Unwrap returns the underlying http.ResponseWriter.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.w
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

// detachedWriter backs a forked builder. It only holds headers.
type detachedWriter struct {
	header http.Header
}

func (d *detachedWriter) Header() http.Header       { return d.header }
func (d *detachedWriter) Write([]byte) (int, error) { return 0, http.ErrBodyNotAllowed }
func (d *detachedWriter) WriteHeader(int)           {}
