package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/a-manpathan/kata-frontend/internal/domain"
	"github.com/a-manpathan/kata-frontend/internal/gateway"
	"github.com/a-manpathan/kata-frontend/internal/session"
)

type ViewState string

const (
	StateIdle    ViewState = "idle"
	StateLoading ViewState = "loading"
	StateLoaded  ViewState = "loaded"
	StateFailed  ViewState = "failed"
)

// View is a point-in-time copy of everything the UI needs to render.
type View struct {
	State   ViewState
	Term    string
	Sweets  []domain.Sweet
	LoadErr string
}

// sessionWatcher is the slice of the session store the controller needs.
type sessionWatcher interface {
	Subscribe(fn session.Listener) func()
}

// Controller owns the inventory snapshot, the active search term, and the
// load state. The snapshot is a read-through copy of the server's state: every
// reload discards it wholesale and replaces it with the server's answer, never
// merging. Only the controller's own completion handlers write it.
type Controller struct {
	mu      sync.Mutex
	gw      gateway.Client
	log     *logrus.Logger
	state   ViewState
	sweets  []domain.Sweet
	term    string
	loadErr string

	// seq orders reloads. A response is applied only while its sequence is
	// still the newest issued, so the last-issued request wins regardless of
	// arrival order.
	seq    uint64
	cancel context.CancelFunc

	unsubscribe func()
}

// NewController builds the controller. When sess is non-nil the controller
// subscribes to identity changes and drops its snapshot on logout, so a new
// login never sees the previous user's view.
func NewController(gw gateway.Client, sess sessionWatcher, logger *logrus.Logger) *Controller {
	c := &Controller{
		gw:    gw,
		log:   logger,
		state: StateIdle,
	}
	if sess != nil {
		c.unsubscribe = sess.Subscribe(func(_ domain.User, ok bool) {
			if !ok {
				c.Reset()
			}
		})
	}
	return c
}

// Close detaches the controller from the session store.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

// Refresh re-issues the load for the current search term. Called on mount and
// after every successful mutation.
func (c *Controller) Refresh(ctx context.Context) {
	c.reload(ctx, c.Term())
}

// SetSearch records a new search term and issues a fresh load for it. The
// term is matched server-side; the local snapshot is never filtered in place.
func (c *Controller) SetSearch(ctx context.Context, term string) {
	c.reload(ctx, term)
}

// Term returns the active search term.
func (c *Controller) Term() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term
}

// Snapshot returns a copy of the current view for rendering.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	sweets := make([]domain.Sweet, len(c.sweets))
	copy(sweets, c.sweets)
	return View{
		State:   c.state,
		Term:    c.term,
		Sweets:  sweets,
		LoadErr: c.loadErr,
	}
}

// Reset discards the snapshot and returns to Idle, cancelling any in-flight
// load. Used on logout and when the view unmounts.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateIdle
	c.sweets = nil
	c.term = ""
	c.loadErr = ""
}

func (c *Controller) reload(ctx context.Context, term string) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		// Interest in the previous response is gone even though the request
		// itself may still be on the wire.
		c.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.term = term
	c.state = StateLoading
	c.mu.Unlock()

	var sweets []domain.Sweet
	var err error
	if term == "" {
		sweets, err = c.gw.ListSweets(loadCtx)
	} else {
		sweets, err = c.gw.SearchSweets(loadCtx, term)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.log.Debugf("Controller: Discarding stale reload %d (newest is %d)", seq, c.seq)
		return
	}
	cancel()
	c.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Keep the previous snapshot so a failed refresh never blanks the
		// screen; the view shows it with a refresh-failed indication.
		c.state = StateFailed
		c.loadErr = err.Error()
		c.log.Warnf("Controller: Reload %d for term %q failed: %v", seq, term, err)
		return
	}

	c.state = StateLoaded
	c.sweets = sweets
	c.loadErr = ""
	c.log.Infof("Controller: Reload %d loaded %d sweets (term %q)", seq, len(sweets), term)
}
