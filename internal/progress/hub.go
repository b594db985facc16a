package progress

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Kind classifies an Update.
type Kind int

const (
	Created Kind = iota
	Position
	Message
	Finished
	Failed
	Skipped
)

var kindNames = map[Kind]string{
	Created:  "created",
	Position: "position",
	Message:  "message",
	Finished: "finished",
	Failed:   "failed",
	Skipped:  "skipped",
}

func (k Kind) String() string {
	return kindNames[k]
}

// MarshalText renders the kind by name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Terminal reports whether no further updates follow for the bar.
func (k Kind) Terminal() bool {
	return k == Finished || k == Failed || k == Skipped
}

// Update is one change to one bar.
type Update struct {
	ID       int       `json:"id"`
	Kind     Kind      `json:"kind"`
	Name     string    `json:"name"`
	Position int64     `json:"position"`
	Total    int64     `json:"total"`
	Message  string    `json:"message,omitempty"`
	At       time.Time `json:"at"`
}

// Bar is a single progress indicator.
type Bar interface {
	SetPosition(n int64)
	SetMessage(msg string)
	Finish(msg string)
	Fail(msg string)
	Skip(msg string)
}

// Reporter creates bars.
type Reporter interface {
	NewBar(name string, total int64) Bar
}

type subscriber struct {
	ch   chan Update
	done chan struct{}
	once sync.Once
}

// Hub is a Reporter that publishes Updates to subscribers. It also keeps
// the latest state of every bar for Snapshot.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	state  map[int]Update
	closed bool

	bars atomic.Int64
	now  func() time.Time
}

var _ Reporter = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:  make(map[int]*subscriber),
		state: make(map[int]Update),
		now:   time.Now,
	}
}

// Subscribe registers a subscriber with the given buffer size. The
// returned function unsubscribes; the channel is closed by Close.
// Lifecycle updates wait for the subscriber, so a subscriber must keep
// reading and must not call back into the Hub while doing so.
func (h *Hub) Subscribe(buffer int) (<-chan Update, func()) {
	sub := &subscriber{
		ch:   make(chan Update, max(buffer, 0)),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = sub

	return sub.ch, func() {
		sub.once.Do(func() { close(sub.done) })
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish records u and delivers it to every subscriber.
func (h *Hub) Publish(u Update) {
	if u.At.IsZero() {
		u.At = h.now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.record(u)

	for _, sub := range h.subs {
		if u.Kind == Position {
			select {
			case sub.ch <- u:
			default:
			}
			continue
		}
		select {
		case sub.ch <- u:
		case <-sub.done:
		}
	}
}

func (h *Hub) record(u Update) {
	prev, ok := h.state[u.ID]
	if ok {
		if u.Name == "" {
			u.Name = prev.Name
		}
		if u.Kind == Message {
			// a message does not change the bar's lifecycle state
			prev.Message = u.Message
			prev.At = u.At
			h.state[u.ID] = prev
			return
		}
	}
	h.state[u.ID] = u
}

// Snapshot returns the latest update of every bar, ordered by id.
func (h *Hub) Snapshot() []Update {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Update, 0, len(h.state))
	for _, u := range h.state {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close stops publishing and closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}

// NewBar implements Reporter.
func (h *Hub) NewBar(name string, total int64) Bar {
	b := &hubBar{hub: h, id: int(h.bars.Add(1)), name: name, total: total}
	h.Publish(Update{ID: b.id, Kind: Created, Name: name, Total: total})
	return b
}

type hubBar struct {
	hub   *Hub
	id    int
	name  string
	total int64

	position atomic.Int64
	done     atomic.Bool
}

func (b *hubBar) publish(kind Kind, msg string) {
	b.hub.Publish(Update{
		ID:       b.id,
		Kind:     kind,
		Name:     b.name,
		Position: b.position.Load(),
		Total:    b.total,
		Message:  msg,
	})
}

func (b *hubBar) SetPosition(n int64) {
	if b.done.Load() {
		return
	}
	b.position.Store(n)
	b.publish(Position, "")
}

func (b *hubBar) SetMessage(msg string) {
	if b.done.Load() {
		return
	}
	b.publish(Message, msg)
}

func (b *hubBar) Finish(msg string) { b.end(Finished, msg) }
func (b *hubBar) Fail(msg string)   { b.end(Failed, msg) }
func (b *hubBar) Skip(msg string)   { b.end(Skipped, msg) }

func (b *hubBar) end(kind Kind, msg string) {
	if b.done.Swap(true) {
		return
	}
	b.publish(kind, msg)
}
