package credential

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TerminalSelector asks for a key on a terminal. The prompt is shown and a
// line is read at most once per selector; later resolutions reuse the answer.
// A caller that gives up waiting leaves the read pending, and the line it
// eventually returns still becomes the selected key.
type TerminalSelector struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string

	start    sync.Once
	answered chan struct{} // closed once the answer line was read
	readErr  error

	mu  sync.Mutex
	key string
}

// NewTerminalSelector creates a selector reading from in and prompting on out.
func NewTerminalSelector(in io.Reader, out io.Writer) *TerminalSelector {
	return &TerminalSelector{
		in:       bufio.NewReader(in),
		out:      out,
		prompt:   "Gemini API key: ",
		answered: make(chan struct{}),
	}
}

// HasSelectedKey implements KeySelector.
func (s *TerminalSelector) HasSelectedKey(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key != "", nil
}

// OpenSelectKey implements KeySelector. It blocks until the answer is read
// or ctx is done. An empty answer leaves the selection empty.
func (s *TerminalSelector) OpenSelectKey(ctx context.Context) error {
	s.start.Do(func() {
		if _, err := fmt.Fprint(s.out, s.prompt); err != nil {
			s.readErr = fmt.Errorf("failed to write prompt: %w", err)
			close(s.answered)
			return
		}
		go s.readAnswer()
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.answered:
		return s.readErr
	}
}

func (s *TerminalSelector) readAnswer() {
	line, err := s.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		s.readErr = fmt.Errorf("failed to read key: %w", err)
	}

	s.mu.Lock()
	s.key = strings.TrimSpace(line)
	s.mu.Unlock()
	close(s.answered)
}

// SelectedKey implements KeySelector.
func (s *TerminalSelector) SelectedKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, nil
}
