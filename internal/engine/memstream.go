package engine

import (
	"io"
	"sync"
)

// NewMemStream returns an empty in-memory stream
func NewMemStream() MemStream {
	return &memStream{}
}

type memStream struct {
	mu        sync.Mutex
	buf       []byte
	destroyed bool
}

// Write places data at offset, growing the buffer and zero-filling any gap
func (s *memStream) Write(offset int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return &StreamError{Message: "write to destroyed stream"}
	}
	if offset < 0 {
		return &StreamError{Message: "negative offset"}
	}

	end := offset + len(data)
	if end > len(s.buf) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[offset:end], data)
	return nil
}

// Read copies bytes starting at offset into p; io.EOF once offset reaches the end
func (s *memStream) Read(offset int, p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return 0, &StreamError{Message: "read from destroyed stream"}
	}
	if offset < 0 {
		return 0, &StreamError{Message: "negative offset"}
	}
	if offset >= len(s.buf) {
		return 0, io.EOF
	}
	return copy(p, s.buf[offset:]), nil
}

func (s *memStream) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Destroy releases the buffer. Calling it twice is harmless.
func (s *memStream) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
	s.destroyed = true
}

// ReadAll drains a stream from offset 0
func ReadAll(stm MemStream) ([]byte, error) {
	out := make([]byte, 0, stm.Size())
	chunk := make([]byte, 4096)
	offset := 0
	for {
		n, err := stm.Read(offset, chunk)
		out = append(out, chunk[:n]...)
		offset += n
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
