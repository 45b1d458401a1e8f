package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"tryon-studio/internal/tryon"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Submitter sends the staged inputs to the synthesis backend.
type Submitter interface {
	Submit(ctx context.Context, garment, person tryon.Image, description string) (string, error)
}

type NoticeKind string

const (
	NoticeMissingInput     NoticeKind = "missing_input"
	NoticeTooLong          NoticeKind = "too_long"
	NoticeSubmissionFailed NoticeKind = "submission_failed"
	NoticeUnexpected       NoticeKind = "unexpected"
)

// Notice is one user-visible message. Presentations turn it into text.
type Notice struct {
	Field Field      `json:"field,omitempty"`
	Kind  NoticeKind `json:"kind"`
}

// View is an immutable snapshot of a controller.
type View struct {
	State          State     `json:"state"`
	HasGarment     bool      `json:"has_garment"`
	GarmentName    string    `json:"garment_name,omitempty"`
	GarmentVersion int       `json:"garment_version"`
	HasPhoto       bool      `json:"has_photo"`
	PhotoName      string    `json:"photo_name,omitempty"`
	PhotoVersion   int       `json:"photo_version"`
	Description    string    `json:"description"`
	Loading        bool      `json:"loading"`
	SubmitEnabled  bool      `json:"submit_enabled"`
	Result         string    `json:"result,omitempty"`
	LastOutcome    State     `json:"last_outcome,omitempty"`
	Notices        []Notice  `json:"notices"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Options struct {
	Submitter Submitter
	Logger    *slog.Logger
}

// Controller owns the state of one page session: two image slots, the
// description, the loading flag and the latest result.
type Controller struct {
	submitter Submitter
	logger    *slog.Logger

	mu             sync.Mutex
	state          State
	garment        *tryon.Image
	garmentVersion int
	photo          *tryon.Image
	photoVersion   int
	description    string
	loading        bool
	result         string
	lastOutcome    State
	notices        []Notice
	updatedAt      time.Time

	subs    map[int]chan View
	nextSub int
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		submitter: opts.Submitter,
		logger:    logger,
		state:     StateIdle,
		updatedAt: time.Now(),
		subs:      make(map[int]chan View),
	}
}

func (c *Controller) SelectGarment(img tryon.Image) View {
	return c.update(func() {
		c.garment = &img
		c.garmentVersion++
	})
}

func (c *Controller) SelectPhoto(img tryon.Image) View {
	return c.update(func() {
		c.photo = &img
		c.photoVersion++
	})
}

func (c *Controller) SetDescription(text string) View {
	return c.update(func() {
		c.description = text
	})
}

func (c *Controller) Garment() (tryon.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.garment == nil {
		return tryon.Image{}, false
	}
	return *c.garment, true
}

func (c *Controller) Photo() (tryon.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.photo == nil {
		return tryon.Image{}, false
	}
	return *c.photo, true
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Submit validates the staged inputs and, when they pass, sends them once.
// The request is detached from ctx cancellation: once started it always runs
// to completion. The returned error is ErrSubmitDisabled, ValidationErrors or
// the submitter's error; the returned View reflects the state afterwards.
func (c *Controller) Submit(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.loading {
		view := c.snapshotLocked()
		c.mu.Unlock()
		return view, ErrSubmitDisabled
	}

	c.state = StateValidating
	if err := Validate(Input{Garment: c.garment, Photo: c.photo, Description: c.description}); err != nil {
		c.notices = noticesForValidation(err)
		c.state = StateIdle
		c.updatedAt = time.Now()
		view := c.snapshotLocked()
		c.broadcastLocked(view)
		c.mu.Unlock()
		return view, err
	}

	if c.submitter == nil {
		c.state = StateIdle
		c.mu.Unlock()
		return c.View(), errors.New("form: no submitter configured")
	}

	garment, photo, description := *c.garment, *c.photo, c.description
	c.state = StateSubmitting
	c.loading = true
	c.notices = nil
	c.updatedAt = time.Now()
	c.broadcastLocked(c.snapshotLocked())
	c.mu.Unlock()

	started := time.Now()
	locator, err := c.submitter.Submit(context.WithoutCancel(ctx), garment, photo, description)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = false
	if err != nil {
		c.state = StateFailed
		c.notices = []Notice{noticeForSubmitError(err)}
		c.logger.Warn("submission failed", "err", err, "dur_ms", time.Since(started).Milliseconds())
	} else {
		c.state = StateSucceeded
		c.result = locator
		c.logger.Info("submission succeeded", "dur_ms", time.Since(started).Milliseconds())
	}
	c.lastOutcome = c.state
	c.state = StateIdle
	c.updatedAt = time.Now()

	view := c.snapshotLocked()
	c.broadcastLocked(view)
	return view, err
}

// Subscribe returns a channel receiving a snapshot after every change. Slow
// readers miss intermediate snapshots rather than block the controller.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 4)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

func (c *Controller) update(fn func()) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn()
	c.updatedAt = time.Now()
	view := c.snapshotLocked()
	c.broadcastLocked(view)
	return view
}

func (c *Controller) snapshotLocked() View {
	v := View{
		State:          c.state,
		HasGarment:     c.garment != nil,
		GarmentVersion: c.garmentVersion,
		HasPhoto:       c.photo != nil,
		PhotoVersion:   c.photoVersion,
		Description:    c.description,
		Loading:        c.loading,
		SubmitEnabled:  !c.loading,
		Result:         c.result,
		LastOutcome:    c.lastOutcome,
		Notices:        append([]Notice(nil), c.notices...),
		UpdatedAt:      c.updatedAt,
	}
	if c.garment != nil {
		v.GarmentName = c.garment.Name
	}
	if c.photo != nil {
		v.PhotoName = c.photo.Name
	}
	return v
}

// broadcastLocked never blocks. When a subscriber's buffer is full its
// oldest snapshot is dropped so the last one it reads is always current.
func (c *Controller) broadcastLocked(view View) {
	for _, ch := range c.subs {
		select {
		case ch <- view:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- view:
		default:
		}
	}
}

func noticesForValidation(err error) []Notice {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return []Notice{{Kind: NoticeUnexpected}}
	}

	out := make([]Notice, 0, len(verrs))
	for _, fe := range verrs {
		kind := NoticeMissingInput
		if errors.Is(fe.Err, ErrTooLong) {
			kind = NoticeTooLong
		}
		out = append(out, Notice{Field: fe.Field, Kind: kind})
	}
	return out
}

func noticeForSubmitError(err error) Notice {
	if errors.Is(err, tryon.ErrSubmissionFailed) {
		return Notice{Kind: NoticeSubmissionFailed}
	}
	return Notice{Kind: NoticeUnexpected}
}
