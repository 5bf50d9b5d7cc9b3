package logging

import (
	"io"
	"os"
	"sync"
)

// StreamWriter serialises log writes to an io.Writer. A writer opened by
// NewFileWriter owns its file: Flush syncs it and Close closes it. Console
// and stream writers never close what they were given.
type StreamWriter struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File // set only when owned
	name string
}

// NewConsoleWriter writes to a terminal stream such as os.Stderr
func NewConsoleWriter(f *os.File) *StreamWriter {
	return &StreamWriter{w: f, name: "console"}
}

// NewFileWriter opens path for appending
func NewFileWriter(path string) (*StreamWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{w: f, file: f, name: "file:" + path}, nil
}

// NewStreamWriter wraps w; used for buffers in tests
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w, name: "stream"}
}

func (w *StreamWriter) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.w.Write(data)
	return err
}

func (w *StreamWriter) Flush() error {
	if w.file == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

func (w *StreamWriter) Close() error {
	if w.file == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *StreamWriter) GetName() string {
	return w.name
}
