package assist

import (
	"context"
	"errors"
	"sync"

	"seoboard/internal/engine"
)

// Kind names an assistant request type. At most one request per kind is in
// flight at a time.
type Kind string

const (
	KindSuggest Kind = "suggest"
	KindAnalyze Kind = "analyze"
)

var ErrInFlight = errors.New("a request of this kind is already running")

// Ticket identifies one dispatched request and the category its result targets.
type Ticket struct {
	Kind     Kind
	Seq      uint64
	Category engine.Category
}

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeError
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Result is delivered back to the caller when a request finishes.
type Result struct {
	Ticket      Ticket
	Suggestions []string
	Analysis    string
	Err         error
}

// Dispatcher tracks in-flight requests and decides what happens to their
// results. It is safe for concurrent use.
type Dispatcher struct {
	mu       sync.Mutex
	seq      uint64
	inFlight map[Kind]uint64
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{inFlight: make(map[Kind]uint64)}
}

// Begin issues a ticket for a new request or returns ErrInFlight.
func (d *Dispatcher) Begin(kind Kind, target engine.Category) (Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, busy := d.inFlight[kind]; busy {
		return Ticket{}, ErrInFlight
	}
	d.seq++
	d.inFlight[kind] = d.seq
	return Ticket{Kind: kind, Seq: d.seq, Category: target}, nil
}

func (d *Dispatcher) InFlight(kind Kind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, busy := d.inFlight[kind]
	return busy
}

// Invalidate marks every pending request as stale; their results will be
// discarded and new requests may start immediately.
func (d *Dispatcher) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inFlight = make(map[Kind]uint64)
}

// Resolve settles a finished request. Results of superseded tickets, or whose
// target category is no longer valid, are discarded.
func (d *Dispatcher) Resolve(res Result, valid func(engine.Category) bool) Outcome {
	d.mu.Lock()
	cur, ok := d.inFlight[res.Ticket.Kind]
	current := ok && cur == res.Ticket.Seq
	if current {
		delete(d.inFlight, res.Ticket.Kind)
	}
	d.mu.Unlock()

	switch {
	case !current:
		return OutcomeDiscarded
	case valid != nil && !valid(res.Ticket.Category):
		return OutcomeDiscarded
	case res.Err != nil:
		return OutcomeError
	default:
		return OutcomeSuccess
	}
}

// Suggest performs a suggestion request for ticket t.
func Suggest(ctx context.Context, a Assistant, t Ticket, label string) Result {
	items, err := a.SuggestTasks(ctx, label)
	return Result{Ticket: t, Suggestions: items, Err: err}
}

// Analyze performs an analysis request for ticket t.
func Analyze(ctx context.Context, a Assistant, t Ticket, snap engine.ProgressSnapshot) Result {
	text, err := a.AnalyzeProgress(ctx, snap)
	return Result{Ticket: t, Analysis: text, Err: err}
}

// Run executes call on its own goroutine and delivers the result on the
// returned channel, which is closed afterwards.
func Run(ctx context.Context, call func(context.Context) Result) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- call(ctx)
	}()
	return ch
}
