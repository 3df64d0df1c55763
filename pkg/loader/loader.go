// Package loader feeds a G-code program through the parser in bounded
// chunks, threading the modal state from one chunk to the next and giving
// the host a turn between chunks.
package loader

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/philipparndt/gcodeview/pkg/gcode"
)

// DefaultChunkSize is the number of lines parsed per chunk
const DefaultChunkSize = 10

// ErrCancelled is returned by Step and reported in Result.Err when Cancel
// was called or the context was done
var ErrCancelled = errors.New("loading cancelled")

// Progress is reported after every chunk
type Progress struct {
	Progress        float64 `json:"progress"`
	ProcessedChunks int     `json:"processedChunks"`
	TotalChunks     int     `json:"totalChunks"`
	SegmentCount    int     `json:"segmentCount"`
}

// Partial gives access to everything accumulated so far
type Partial struct {
	Toolpath *gcode.Toolpath
	Progress float64
}

// Options configures a Loader. Zero values select the defaults.
type Options struct {
	// ChunkSize is the number of lines per chunk (default 10)
	ChunkSize int
	// OnProgress is called after every chunk
	OnProgress func(Progress)
	// OnChunkProcessed is called after every chunk with the toolpath so far.
	// The toolpath keeps growing; clone it before handing it to another goroutine.
	OnChunkProcessed func(Partial)
	// Yield is called between chunks; the default yields the processor and
	// checks the context
	Yield func(ctx context.Context) error
	// KeepChunks retains every chunk result for Validate
	KeepChunks bool
	// Parser overrides the default parser
	Parser *gcode.Parser
}

// Chunk is one chunk's parse result tagged with its position
type Chunk struct {
	Index int `json:"chunkIndex"`
	*gcode.ChunkResult
}

// Result is the outcome of a load
type Result struct {
	Success    bool
	Cancelled  bool
	Err        error
	Toolpath   *gcode.Toolpath
	LineCount  int
	ChunkCount int
	Chunks     []Chunk
}

// Loader parses a program chunk by chunk
type Loader struct {
	opts   Options
	parser *gcode.Parser
	lines  []string

	totalChunks int
	next        int
	state       gcode.State
	toolpath    *gcode.Toolpath
	chunks      []Chunk

	cancelled atomic.Bool
}

// New prepares a loader for the given program text
func New(text string, opts Options) *Loader {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultChunkSize
	}
	parser := opts.Parser
	if parser == nil {
		parser = gcode.NewParser()
	}

	lines := gcode.SplitLines(text)
	tp := gcode.NewToolpath()
	tp.LineCount = len(lines)

	return &Loader{
		opts:        opts,
		parser:      parser,
		lines:       lines,
		totalChunks: (len(lines) + opts.ChunkSize - 1) / opts.ChunkSize,
		state:       gcode.DefaultState(),
		toolpath:    tp,
	}
}

// LineCount returns the number of lines in the program
func (l *Loader) LineCount() int {
	return len(l.lines)
}

// TotalChunks returns the number of chunks the program is split into
func (l *Loader) TotalChunks() int {
	return l.totalChunks
}

// ProcessedChunks returns how many chunks have been parsed
func (l *Loader) ProcessedChunks() int {
	return l.next
}

// Done reports whether every chunk has been parsed
func (l *Loader) Done() bool {
	return l.next >= l.totalChunks
}

// Toolpath returns the toolpath accumulated so far
func (l *Loader) Toolpath() *gcode.Toolpath {
	return l.toolpath
}

// Chunks returns the retained chunk results (see Options.KeepChunks)
func (l *Loader) Chunks() []Chunk {
	return l.chunks
}

// Cancel asks the loader to stop before the next chunk. It is safe to call
// from any goroutine; the chunk in progress always completes.
func (l *Loader) Cancel() {
	l.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called
func (l *Loader) Cancelled() bool {
	return l.cancelled.Load()
}

// Step parses exactly one chunk and reports progress. Hosts that drive
// their own frame loop call it once per frame. done is true when no chunks
// remain.
func (l *Loader) Step() (done bool, err error) {
	if l.Done() {
		return true, nil
	}
	if l.cancelled.Load() {
		return false, ErrCancelled
	}

	index := l.next
	start := index * l.opts.ChunkSize
	end := start + l.opts.ChunkSize
	if end > len(l.lines) {
		end = len(l.lines)
	}

	result, err := l.parser.ParseChunk(l.lines[start:end], l.state, start)
	if err != nil {
		return false, fmt.Errorf("failed to parse chunk %d: %w", index, err)
	}

	l.state = result.Final
	l.toolpath.Append(result)
	if l.opts.KeepChunks {
		l.chunks = append(l.chunks, Chunk{Index: index, ChunkResult: result})
	}
	l.next++

	progress := float64(l.next) / float64(l.totalChunks) * 100
	if l.opts.OnProgress != nil {
		l.opts.OnProgress(Progress{
			Progress:        progress,
			ProcessedChunks: l.next,
			TotalChunks:     l.totalChunks,
			SegmentCount:    l.toolpath.Len(),
		})
	}
	if l.opts.OnChunkProcessed != nil {
		l.opts.OnChunkProcessed(Partial{Toolpath: l.toolpath, Progress: progress})
	}

	return l.Done(), nil
}

// StepFor calls Step until no chunks remain or budget has elapsed. At
// least one chunk is parsed per call.
func (l *Loader) StepFor(budget time.Duration) (done bool, err error) {
	deadline := time.Now().Add(budget)
	for {
		done, err = l.Step()
		if err != nil || done || !time.Now().Before(deadline) {
			return done, err
		}
	}
}

// Run parses the remaining chunks strictly in order, yielding between
// them. Cancellation is checked before every chunk and leaves the partial
// toolpath in the result.
func (l *Loader) Run(ctx context.Context) *Result {
	yield := l.opts.Yield
	if yield == nil {
		yield = defaultYield
	}

	for !l.Done() {
		if ctx.Err() != nil {
			l.Cancel()
		}

		done, err := l.Step()
		if err != nil {
			return l.result(err)
		}
		if done {
			break
		}

		if err := yield(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				l.Cancel()
				continue
			}
			return l.result(fmt.Errorf("failed to yield after chunk %d: %w", l.next-1, err))
		}
	}

	return l.result(nil)
}

func (l *Loader) result(err error) *Result {
	r := &Result{
		Success:    err == nil,
		Err:        err,
		Toolpath:   l.toolpath,
		LineCount:  len(l.lines),
		ChunkCount: l.next,
		Chunks:     l.chunks,
	}
	if errors.Is(err, ErrCancelled) {
		r.Cancelled = true
	}
	return r
}

func defaultYield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Load parses text with a new loader
func Load(ctx context.Context, text string, opts Options) *Result {
	return New(text, opts).Run(ctx)
}
