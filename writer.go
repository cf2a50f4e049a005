package danton

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/soniakeys/meeus/julian"
)

// Writer is component G's text output sink: a single append-only
// stream of whitespace-aligned lines, fed from a channel by a
// background goroutine, in the style of a StreamStates-to-disk export
// loop but producing the line formats of spec.md §4.G/§6 instead of
// orbital-state CSV/XYZV records.
type Writer struct {
	f    *os.File
	w    *bufio.Writer
	ch   chan string
	done chan struct{}
}

// NewWriter opens the output file. If append is true and the file
// already exists with content, no new header is written, satisfying
// the append-safety property of spec.md §8 scenario 5 (the first
// invocation's records stay byte-identical in the appended file).
func NewWriter(path string, appendMode bool) (*Writer, error) {
	flags := os.O_CREATE | os.O_WRONLY
	var writeHeader bool
	if appendMode {
		flags |= os.O_APPEND
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			writeHeader = true
		}
	} else {
		flags |= os.O_TRUNC
		writeHeader = true
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening output %q: %v", ErrIO, path, err)
	}
	w := &Writer{f: f, w: bufio.NewWriter(f), ch: make(chan string, 1024), done: make(chan struct{})}
	if writeHeader {
		jd := julian.TimeToJD(time.Now().UTC())
		fmt.Fprintf(w.w, "# danton output, created JD %.6f\n", jd)
	}
	go w.loop()
	return w, nil
}

func (w *Writer) loop() {
	defer close(w.done)
	for line := range w.ch {
		fmt.Fprintln(w.w, line)
	}
	w.w.Flush()
}

func (w *Writer) emit(line string) { w.ch <- line }

// EmitAncestor writes the ancestor line if the latch allows it.
func (w *Writer) EmitAncestor(latch *PrimaryDumpedLatch, ancestor *ParticleState) {
	if latch.TryDump() {
		w.emit(FormatAncestorLine(ancestor))
	}
}

// EmitDecay writes a full decay record per spec.md §4.G: ancestor (if
// not already dumped), the τ production/decay pair, then the
// daughters.
func (w *Writer) EmitDecay(latch *PrimaryDumpedLatch, ancestor, production, decay *ParticleState, daughters []*ParticleState) {
	w.EmitAncestor(latch, ancestor)
	w.emit(FormatTauProductionLine(production))
	w.emit(FormatTauDecayLine(decay))
	for _, d := range daughters {
		w.emit(FormatDaughterLine(d))
	}
}

// EmitFlux writes a flux record: ancestor (if not already dumped),
// then the single crossing particle.
func (w *Writer) EmitFlux(latch *PrimaryDumpedLatch, ancestor, particle *ParticleState) {
	w.EmitAncestor(latch, ancestor)
	w.emit(FormatFluxLine(particle))
}

// EmitGrammage writes one grammage scan line.
func (w *Writer) EmitGrammage(angle, grammage float64) {
	w.emit(FormatGrammageLine(angle, grammage))
}

// Close drains the channel and closes the underlying file.
func (w *Writer) Close() error {
	close(w.ch)
	<-w.done
	return w.f.Close()
}
