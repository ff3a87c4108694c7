package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrInputClosed is returned once the console input has reached EOF.
var ErrInputClosed = errors.New("console input closed")

// Console reads lines from a single reader goroutine, so that a blocked read
// never keeps a caller from being cancelled.
type Console struct {
	out   io.Writer
	lines chan string
	// closed is closed after the reader goroutine has exited.
	closed chan struct{}
	err    error

	outMu sync.Mutex
	start sync.Once
	in    io.Reader
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     in,
		out:    out,
		lines:  make(chan string),
		closed: make(chan struct{}),
	}
}

func (c *Console) run() {
	defer close(c.closed)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	c.err = scanner.Err()
}

// ReadLine waits for the next line of input. It returns ctx.Err() when ctx is
// done first and ErrInputClosed at end of input.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	c.start.Do(func() { go c.run() })

	select {
	case line := <-c.lines:
		return line, nil
	case <-c.closed:
		if c.err != nil {
			return "", fmt.Errorf("%w: %v", ErrInputClosed, c.err)
		}
		return "", ErrInputClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Prompt prints prompt without a trailing newline and reads the answer.
func (c *Console) Prompt(ctx context.Context, prompt string) (string, error) {
	c.Print(prompt)
	return c.ReadLine(ctx)
}

func (c *Console) Print(a ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprint(c.out, a...)
}

func (c *Console) Println(a ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Writer returns a writer that shares the console's output lock.
func (c *Console) Writer() io.Writer {
	return consoleWriter{c}
}

type consoleWriter struct {
	c *Console
}

func (w consoleWriter) Write(p []byte) (int, error) {
	w.c.outMu.Lock()
	defer w.c.outMu.Unlock()
	return w.c.out.Write(p)
}
