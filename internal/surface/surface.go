// Package surface models the drawing targets charts paint onto: a page holds containers
// looked up by id, and each container holds the targets built for the current view.
package surface

import (
	"errors"
	"fmt"
)

var (
	ErrContainerNotFound = errors.New("container not found")
	ErrInUse             = errors.New("target is already in use by another chart")
	ErrNoLayout          = errors.New("target has no committed layout")
	ErrNotOwner          = errors.New("target is bound to another chart")
	ErrDetached          = errors.New("target is no longer in its container")
)

// Page is the set of containers a view can draw into.
type Page struct {
	containers map[string]*Container
}

func NewPage(containerIDs ...string) *Page {
	p := &Page{containers: make(map[string]*Container, len(containerIDs))}
	for _, id := range containerIDs {
		p.containers[id] = &Container{id: id}
	}
	return p
}

func (p *Page) Container(id string) (*Container, error) {
	c, ok := p.containers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, id)
	}
	return c, nil
}

// Remove detaches a container; its targets are released.
func (p *Page) Remove(id string) {
	if c, ok := p.containers[id]; ok {
		c.Reset()
		delete(p.containers, id)
	}
}

type Container struct {
	id      string
	targets []*Target
}

func (c *Container) ID() string { return c.id }

// Reset drops every target. Targets still bound to a chart keep their binding until the
// chart is destroyed, but they are no longer reachable from the container.
func (c *Container) Reset() {
	for _, t := range c.targets {
		t.detached = true
	}
	c.targets = nil
}

// AddTarget appends a target of the given pixel size. Layout is not committed until
// CommitLayout runs.
func (c *Container) AddTarget(id string, width, height int) *Target {
	t := &Target{id: id, width: width, height: height}
	c.targets = append(c.targets, t)
	return t
}

func (c *Container) Target(id string) (*Target, bool) {
	for _, t := range c.targets {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// CommitLayout fixes the size of every target so charts can measure them.
func (c *Container) CommitLayout() {
	for _, t := range c.targets {
		t.laidOut = true
	}
}

// Target is a single drawing surface. At most one chart may be bound to it at a time.
type Target struct {
	id       string
	width    int
	height   int
	laidOut  bool
	detached bool
	owner    any
	image    []byte
}

func (t *Target) ID() string { return t.id }

// Size returns the measured size; it is zero until layout is committed.
func (t *Target) Size() (width, height int) {
	if !t.laidOut {
		return 0, 0
	}
	return t.width, t.height
}

// Bind claims the target for owner. Detached targets cannot be bound.
func (t *Target) Bind(owner any) error {
	if t.detached {
		return fmt.Errorf("%w: %q", ErrDetached, t.id)
	}
	if t.owner != nil {
		return fmt.Errorf("%w: %q", ErrInUse, t.id)
	}
	if !t.laidOut {
		return fmt.Errorf("%w: %q", ErrNoLayout, t.id)
	}
	t.owner = owner
	return nil
}

func (t *Target) Paint(owner any, image []byte) error {
	if t.owner != owner {
		return fmt.Errorf("%w: %q", ErrNotOwner, t.id)
	}
	if t.detached {
		return fmt.Errorf("%w: %q", ErrDetached, t.id)
	}
	t.image = image
	return nil
}

// Release unbinds owner and drops what it painted. Releasing with a stale owner is a no-op.
func (t *Target) Release(owner any) {
	if t.owner != owner {
		return
	}
	t.owner = nil
	t.image = nil
}

func (t *Target) Bound() bool { return t.owner != nil }

func (t *Target) Image() ([]byte, bool) {
	if t.image == nil {
		return nil, false
	}
	return t.image, true
}
