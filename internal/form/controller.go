package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/FormDrop/internal/logger"
)

// State is the controller's position in one submission attempt.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a single user-visible message.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Events is implemented by the hosting shell. The controller never routes by
// itself; it only asks to return to the default view.
type Events interface {
	Notify(Notification)
	ReturnHome()
}

// Submitter performs exactly one request for a payload.
type Submitter interface {
	Submit(ctx context.Context, p *Payload, endpoint string) error
}

// ErrSubmissionInFlight is returned when Submit is called while a previous
// attempt on the same controller has not finished.
var ErrSubmissionInFlight = errors.New("form: submission already in flight")

// FailurePrefix starts every failure notification.
const FailurePrefix = "Error sending data: "

// Outcome describes how an attempt ended. Errors is set when validation sent
// the controller back to Idle; Err is set when the attempt Failed.
type Outcome struct {
	State        State
	Errors       ValidationErrors
	Err          error
	SubmissionID string
}

// Controller owns the field set of one form instance and drives submissions.
type Controller struct {
	def       Definition
	endpoint  string
	submitter Submitter
	events    Events
	now       func() time.Time
	log       logger.Logger

	mu     sync.Mutex
	state  State
	fields Fields
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock overrides time.Now for timestamps and nonces.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController builds a controller for def that submits to endpoint. events
// may be nil.
func NewController(def Definition, endpoint string, submitter Submitter, events Events, opts ...Option) *Controller {
	c := &Controller{
		def:       def,
		endpoint:  endpoint,
		submitter: submitter,
		events:    events,
		now:       time.Now,
		log:       logger.Nop(),
		fields:    Fields{},
	}
	if c.events == nil {
		c.events = discardEvents{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Definition returns the form definition.
func (c *Controller) Definition() Definition {
	return c.def
}

// Set stores a field value.
func (c *Controller) Set(name string, v Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = v
}

// Fields returns a copy of the current field set.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.Clone()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit validates the current fields and, when they pass, sends them once.
// Validation failures return the controller to Idle without touching the
// network. A transport or status error ends in Failed with the fields left as
// entered; success ends in Succeeded with the fields reset. Every terminal
// outcome emits exactly one notification.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.state == Validating || c.state == Submitting {
		c.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	}
	c.state = Validating
	fields := c.fields.Clone()
	c.mu.Unlock()

	if errs := Validate(fields, c.def.Schema); errs.HasErrors() {
		c.setState(Idle)
		c.log.Debugf("%s form rejected: %v", c.def.Type, errs)
		return Outcome{State: Idle, Errors: errs}, nil
	}

	payload := BuildPayload(fields, c.def.Schema, c.def.Mode, c.now())
	payload.ID = uuid.NewString()
	log := c.log.With("form", string(c.def.Type), "submission_id", payload.ID)
	c.setState(Submitting)

	err := c.submitter.Submit(ctx, payload, c.endpoint)

	c.mu.Lock()
	if err != nil {
		c.state = Failed
	} else {
		c.state = Succeeded
		c.fields = Fields{}
	}
	c.mu.Unlock()

	if err != nil {
		log.Errorf("submission failed: %v", err)
		c.events.Notify(Notification{Level: LevelError, Message: FailurePrefix + err.Error()})
		return Outcome{State: Failed, Err: err, SubmissionID: payload.ID}, nil
	}
	log.Infof("submission sent")
	c.events.Notify(Notification{Level: LevelSuccess, Message: c.def.SuccessMessage})
	if c.def.ReturnHome {
		c.events.ReturnHome()
	}
	return Outcome{State: Succeeded, SubmissionID: payload.ID}, nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

type discardEvents struct{}

func (discardEvents) Notify(Notification) {}
func (discardEvents) ReturnHome()         {}
