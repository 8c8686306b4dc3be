package binding

import (
	"fmt"
	"sync"

	"github.com/pivolan/chart_builder/domain/models"
)

// DeriveDefault returns the configuration a freshly loaded dataset starts
// with: a bar chart, X-axis and dimension on the first dimension field, Y-axis
// and measure on the first measure field. Without at least one field of each
// kind nothing is bound.
func DeriveDefault(fields []models.Field) (models.Binding, models.ChartType) {
	var b models.Binding
	var dim, measure *models.Field
	for i := range fields {
		f := &fields[i]
		if f.Kind == models.KindDimension && dim == nil {
			dim = f
		}
		if f.Kind == models.KindMeasure && measure == nil {
			measure = f
		}
	}
	if dim == nil || measure == nil {
		return b, models.ChartBar
	}

	b = b.With(models.ChannelXAxis, dim.Name).
		With(models.ChannelDimension, dim.Name).
		With(models.ChannelYAxis, measure.Name).
		With(models.ChannelMeasure, measure.Name)
	return b, models.ChartBar
}

// Store owns the field catalog, the channel binding and the chart type of one
// loaded dataset. Every bound channel holds a field of the kind the channel
// requires; Bind is the only way to change a slot.
type Store struct {
	mu        sync.Mutex
	catalog   []models.Field
	byName    map[string]models.Field
	binding   models.Binding
	chartType models.ChartType
}

func NewStore(fields []models.Field) *Store {
	s := &Store{}
	s.Reload(fields)
	return s
}

// Reload replaces the catalog after the dataset itself was replaced and
// resets the binding to the default for the new fields.
func (s *Store) Reload(fields []models.Field) {
	catalog := make([]models.Field, len(fields))
	copy(catalog, fields)
	byName := make(map[string]models.Field, len(catalog))
	for _, f := range catalog {
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
	}
	b, ct := DeriveDefault(catalog)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.byName = byName
	s.binding = b
	s.chartType = ct
}

// Bind puts fieldName on channel c. It fails with ErrUnknownChannel for a
// channel outside Channels(), with ErrUnknownField when the field is not in
// the catalog and with ErrKindMismatch when the field kind is not the one c
// requires; in all cases the binding is left untouched.
func (s *Store) Bind(c models.Channel, fieldName string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", models.ErrUnknownChannel, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.byName[fieldName]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownField, fieldName)
	}
	if f.Kind != c.RequiredKind() {
		return fmt.Errorf("%w: %s is a %s, %s requires a %s",
			models.ErrKindMismatch, f.Name, f.Kind, c.ID(), c.RequiredKind())
	}
	s.binding = s.binding.With(c, f.Name)
	return nil
}

// SetChartType switches the chart type without looking at the binding;
// whether the result can render is decided later by the chart selector.
func (s *Store) SetChartType(t models.ChartType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", models.ErrUnknownChartType, t)
	}
	s.mu.Lock()
	s.chartType = t
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot() (models.Binding, models.ChartType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding, s.chartType
}

func (s *Store) Catalog() []models.Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Field, len(s.catalog))
	copy(out, s.catalog)
	return out
}

func (s *Store) Lookup(name string) (models.Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.byName[name]
	return f, ok
}
