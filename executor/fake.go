package executor

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
	"sync"
)

// Fake is a scripted Executor for tests. It records every call and
// answers from configured responses, matching the full command line
// exactly first and then by substring, longest pattern first.
type Fake struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]Response
	queues    map[string][]Response
	binaries  map[string]string
}

// Call is one recorded command invocation.
type Call struct {
	Cmd  string
	Args []string
}

// Line returns the invocation as a single command line.
func (c Call) Line() string {
	if len(c.Args) == 0 {
		return c.Cmd
	}
	return c.Cmd + " " + strings.Join(c.Args, " ")
}

// Response is a scripted command result.
type Response struct {
	Output string
	Err    error
}

func NewFake() *Fake {
	return &Fake{
		responses: make(map[string]Response),
		queues:    make(map[string][]Response),
		binaries:  make(map[string]string),
	}
}

// SetResponse configures the sticky response for command lines matching
// pattern.
func (f *Fake) SetResponse(pattern, output string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[pattern] = Response{Output: output, Err: err}
}

// PushResponse queues a one-shot response for pattern. Queued responses
// are consumed in order before the sticky response applies.
func (f *Fake) PushResponse(pattern, output string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[pattern] = append(f.queues[pattern], Response{Output: output, Err: err})
}

// AddBinary registers name so LookPath resolves it.
func (f *Fake) AddBinary(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binaries[name] = "/usr/bin/" + name
}

func (f *Fake) Execute(ctx context.Context, cmd string, args ...string) (string, error) {
	resp := f.record(cmd, args)
	return resp.Output, resp.Err
}

func (f *Fake) Stream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) error {
	resp := f.record(cmd, args)
	if resp.Output != "" && stdout != nil {
		fmt.Fprintln(stdout, resp.Output)
	}
	return resp.Err
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path, ok := f.binaries[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (f *Fake) record(cmd string, args []string) Response {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Cmd: cmd, Args: args}
	f.calls = append(f.calls, call)
	key := call.Line()

	if resp, ok := f.pop(key); ok {
		return resp
	}
	if resp, ok := f.responses[key]; ok {
		return resp
	}

	// Substring matching over all patterns, longest first so the most
	// specific script wins.
	patterns := make([]string, 0, len(f.responses)+len(f.queues))
	for p := range f.responses {
		patterns = append(patterns, p)
	}
	for p := range f.queues {
		if _, ok := f.responses[p]; !ok {
			patterns = append(patterns, p)
		}
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})
	for _, p := range patterns {
		if !strings.Contains(key, p) {
			continue
		}
		if resp, ok := f.pop(p); ok {
			return resp
		}
		if resp, ok := f.responses[p]; ok {
			return resp
		}
	}
	return Response{}
}

func (f *Fake) pop(pattern string) (Response, bool) {
	q := f.queues[pattern]
	if len(q) == 0 {
		return Response{}, false
	}
	resp := q[0]
	f.queues[pattern] = q[1:]
	return resp, true
}

// Calls returns a copy of every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallLines returns every recorded invocation as a command line.
func (f *Fake) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Line()
	}
	return out
}

// Reset clears recorded calls and configured responses.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.responses = make(map[string]Response)
	f.queues = make(map[string][]Response)
	f.binaries = make(map[string]string)
}
