package binding

import (
	"errors"
	"log"
	"sync"

	"github.com/pivolan/chart_builder/domain/models"
)

// DropResult tells the caller what a drag end did. Only DropBound changes the
// binding; every other result is a no-op.
type DropResult int

const (
	DropBound DropResult = iota
	DropOutside
	DropUnknownField
	DropUnknownZone
	DropRejected
)

func (r DropResult) String() string {
	switch r {
	case DropBound:
		return "bound"
	case DropOutside:
		return "outside"
	case DropUnknownField:
		return "unknown_field"
	case DropUnknownZone:
		return "unknown_zone"
	case DropRejected:
		return "rejected"
	}
	return "unknown"
}

func (r DropResult) Changed() bool {
	return r == DropBound
}

// Controller turns drag start/end events of the drag collaborator into Store
// binds. A drop that would violate the kind rule is rejected silently: the
// binding does not change and no error reaches the caller.
type Controller struct {
	store *Store

	mu     sync.Mutex
	active string
}

func NewController(store *Store) *Controller {
	return &Controller{store: store}
}

// DragStart only marks draggedID as the active field for the drag overlay.
func (c *Controller) DragStart(draggedID string) {
	c.mu.Lock()
	c.active = draggedID
	c.mu.Unlock()
}

// DragEnd handles the end of a drag. An empty targetZoneID means the field was
// dropped outside every zone. The active field is cleared in all cases.
func (c *Controller) DragEnd(draggedID, targetZoneID string) DropResult {
	defer c.clearActive()

	if targetZoneID == "" {
		return DropOutside
	}
	field, ok := c.store.Lookup(draggedID)
	if !ok {
		return DropUnknownField
	}
	channel, ok := models.ParseChannel(targetZoneID)
	if !ok {
		return DropUnknownZone
	}

	if err := c.store.Bind(channel, field.Name); err != nil {
		if errors.Is(err, models.ErrKindMismatch) {
			log.Printf("drop rejected: %v", err)
			return DropRejected
		}
		// the catalog was replaced between Lookup and Bind
		return DropUnknownField
	}
	return DropBound
}

// Active returns the field being dragged, if it is in the catalog.
func (c *Controller) Active() (models.Field, bool) {
	c.mu.Lock()
	id := c.active
	c.mu.Unlock()
	if id == "" {
		return models.Field{}, false
	}
	return c.store.Lookup(id)
}

func (c *Controller) clearActive() {
	c.mu.Lock()
	c.active = ""
	c.mu.Unlock()
}
