package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/pivolan/chart_builder/binding"
	"github.com/pivolan/chart_builder/charts"
	"github.com/pivolan/chart_builder/dataset"
	"github.com/pivolan/chart_builder/domain/models"
)

// Zone is one drop target as the drag collaborator shows it.
type Zone struct {
	ID      string           `json:"id"`
	Label   string           `json:"label"`
	Accepts models.FieldKind `json:"accepts"`
	Field   *string          `json:"field"`
	Hint    string           `json:"hint,omitempty"`
	// Highlight is set while a field of the accepted kind is being dragged.
	Highlight bool `json:"highlight"`
}

// Snapshot is the read-only state a renderer gets after every change.
type Snapshot struct {
	ID         string            `json:"id"`
	Records    int               `json:"records"`
	Fields     []models.Field    `json:"fields"`
	Dimensions []models.Field    `json:"dimensions"`
	Measures   []models.Field    `json:"measures"`
	ChartType  models.ChartType  `json:"chartType"`
	Binding    models.Binding    `json:"binding"`
	Zones      []Zone            `json:"zones"`
	Active     *models.Field     `json:"active"`
	Descriptor charts.Descriptor `json:"chart"`
	Error      string            `json:"error,omitempty"`
}

// Session is one loaded dataset with its binding store and drag controller.
// All mutations go through the session mutex, so a snapshot never mixes the
// state before and after a change.
type Session struct {
	id string

	mu         sync.Mutex
	records    []models.Record
	store      *binding.Store
	controller *binding.Controller
	subs       map[int]chan Snapshot
	nextSub    int
}

func New(id string) *Session {
	store := binding.NewStore(nil)
	return &Session{
		id:         id,
		store:      store,
		controller: binding.NewController(store),
		subs:       make(map[int]chan Snapshot),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Load replaces the dataset, rebuilds the catalog and resets the binding to
// the default. An empty dataset leaves an empty catalog and returns
// ErrEmptyDataset.
func (s *Session) Load(records []models.Record) error {
	fields, err := dataset.Classify(records)
	if err != nil && !errors.Is(err, models.ErrEmptyDataset) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.store.Reload(fields)
	log.Printf("session %s: loaded %d records, %d fields", s.id, len(records), len(fields))
	s.publish()
	return err
}

func (s *Session) Records() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Bind binds a field to the channel with the given zone id.
func (s *Session) Bind(channelID, field string) (Snapshot, error) {
	c, ok := models.ParseChannel(channelID)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", models.ErrUnknownChannel, channelID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Bind(c, field); err != nil {
		return s.snapshot(), err
	}
	s.publish()
	return s.snapshot(), nil
}

func (s *Session) SetChartType(name string) (Snapshot, error) {
	ct, err := models.ParseChartType(name)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetChartType(ct); err != nil {
		return s.snapshot(), err
	}
	s.publish()
	return s.snapshot(), nil
}

func (s *Session) DragStart(field string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.DragStart(field)
	s.publish()
	return s.snapshot()
}

// DragEnd finishes a drag; zone "" is a drop outside every zone.
func (s *Session) DragEnd(field, zone string) (binding.DropResult, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.controller.DragEnd(field, zone)
	s.publish()
	return res, s.snapshot()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe returns a channel receiving a snapshot after every change. A slow
// reader loses the oldest pending snapshot, never the newest.
func (s *Session) Subscribe(buffer int) (<-chan Snapshot, func()) {
	_, ch, cancel := s.SubscribeCurrent(buffer)
	return ch, cancel
}

// SubscribeCurrent is Subscribe that also returns the state at the moment of
// subscribing. Every snapshot on the channel is newer than the returned one.
func (s *Session) SubscribeCurrent(buffer int) (Snapshot, <-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	current := s.snapshot()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return current, ch, cancel
}

// publish must be called with s.mu held.
func (s *Session) publish() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// snapshot must be called with s.mu held.
func (s *Session) snapshot() Snapshot {
	b, ct := s.store.Snapshot()
	fields := s.store.Catalog()
	dims, measures := dataset.Split(fields)

	snap := Snapshot{
		ID:         s.id,
		Records:    len(s.records),
		Fields:     fields,
		Dimensions: dims,
		Measures:   measures,
		ChartType:  ct,
		Binding:    b,
	}

	var active *models.Field
	if f, ok := s.controller.Active(); ok {
		active = &f
		snap.Active = active
	}
	snap.Zones = zones(b, active)

	d, err := charts.Build(s.records, b, ct)
	if err != nil {
		snap.Descriptor = charts.Descriptor{ChartType: ct}
		snap.Error = err.Error()
	} else {
		snap.Descriptor = d
	}
	return snap
}

func zones(b models.Binding, active *models.Field) []Zone {
	out := make([]Zone, 0, len(models.Channels()))
	for _, c := range models.Channels() {
		z := Zone{
			ID:      c.ID(),
			Label:   c.Label(),
			Accepts: c.RequiredKind(),
		}
		if name, ok := b.Field(c); ok {
			z.Field = &name
		} else {
			z.Hint = "Drop " + c.RequiredKind().String()
		}
		z.Highlight = active != nil && active.Kind == z.Accepts
		out = append(out, z)
	}
	return out
}
