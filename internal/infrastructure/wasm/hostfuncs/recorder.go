package hostfuncs

import (
	"maps"
	"math/rand/v2"
	"sync"
)

// randomSeed makes random() reproducible across verification runs.
const randomSeed = 0x5ce4e

// Rect is a recorded draw_rect call. X and Y are the rectangle center.
type Rect struct {
	X, Y, W, H float32
	R, G, B    uint8
	A          float32
}

// Polyline is a recorded draw_polyline call. Points holds x, y pairs.
type Polyline struct {
	Points  []float32
	Width   float32
	Fill    bool
	R, G, B uint8
	A       float32
}

// TextNode is a text element created with create_text.
type TextNode struct {
	ID      string
	Text    string
	Size    float32
	Visible bool
}

// Trace is the recorded outcome of a headless run.
type Trace struct {
	Width, Height int32
	// Calls counts invocations per import name.
	Calls map[string]int
	// Static holds polylines drawn during setup; they survive canvas_clear.
	Static []Polyline
	// Rects and Polylines are drawn since the last canvas_clear.
	Rects     []Rect
	Polylines []Polyline
	// Texts in creation order.
	Texts []TextNode
	// Callbacks lists the table indices passed to entry_function.
	Callbacks []uint32
}

// Recorder collects host calls for one module instance.
type Recorder struct {
	mu      sync.Mutex
	trace   Trace
	texts   map[string]int
	inSetup bool
	rng     *rand.Rand
	err     error
}

// NewRecorder creates a recorder with the given initial canvas size.
func NewRecorder(width, height int32) *Recorder {
	return &Recorder{
		trace: Trace{
			Width:  width,
			Height: height,
			Calls:  make(map[string]int),
		},
		texts:   make(map[string]int),
		inSetup: true,
		rng:     rand.New(rand.NewPCG(randomSeed, randomSeed)), //nolint:gosec // G404: reproducible output, not security sensitive
	}
}

// EndSetup marks the end of main; later polylines are no longer static.
func (r *Recorder) EndSetup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inSetup = false
}

// Err returns the first error raised inside a host function.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Trace returns a copy of everything recorded so far.
func (r *Recorder) Trace() Trace {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.trace
	t.Calls = maps.Clone(r.trace.Calls)
	t.Static = append([]Polyline(nil), r.trace.Static...)
	t.Rects = append([]Rect(nil), r.trace.Rects...)
	t.Polylines = append([]Polyline(nil), r.trace.Polylines...)
	t.Texts = append([]TextNode(nil), r.trace.Texts...)
	t.Callbacks = append([]uint32(nil), r.trace.Callbacks...)
	return t
}

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) count(name string) {
	r.trace.Calls[name]++
}

func (r *Recorder) resize(w, h int32) {
	r.trace.Width, r.trace.Height = w, h
}

func (r *Recorder) clear() {
	r.trace.Rects = r.trace.Rects[:0]
	r.trace.Polylines = r.trace.Polylines[:0]
}

func (r *Recorder) rect(rc Rect) {
	r.trace.Rects = append(r.trace.Rects, rc)
}

func (r *Recorder) polyline(p Polyline) {
	if r.inSetup {
		r.trace.Static = append(r.trace.Static, p)
		return
	}
	r.trace.Polylines = append(r.trace.Polylines, p)
}

func (r *Recorder) createText(n TextNode) {
	if i, ok := r.texts[n.ID]; ok {
		r.trace.Texts[i] = n
		return
	}
	r.texts[n.ID] = len(r.trace.Texts)
	r.trace.Texts = append(r.trace.Texts, n)
}

func (r *Recorder) updateText(id, text string) {
	if i, ok := r.texts[id]; ok {
		r.trace.Texts[i].Text = text
	}
}

func (r *Recorder) setVisible(id string, visible bool) {
	if i, ok := r.texts[id]; ok {
		r.trace.Texts[i].Visible = visible
	}
}

func (r *Recorder) random() float32 {
	return r.rng.Float32()
}

func (r *Recorder) entry(idx uint32) {
	r.trace.Callbacks = append(r.trace.Callbacks, idx)
}
