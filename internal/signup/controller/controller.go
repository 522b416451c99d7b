// Package controller drives the registration form: validation, the
// registration call, session bootstrap and the visible error state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/telematch/internal/observability/metrics"
	"github.com/smallbiznis/telematch/internal/signup/domain"
	"github.com/smallbiznis/telematch/internal/signup/schema"
	"github.com/smallbiznis/telematch/pkg/log/ctxlogger"
	"github.com/smallbiznis/telematch/pkg/telemetry"
	"github.com/smallbiznis/telematch/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/smallbiznis/telematch/internal/signup/controller"

// Observer receives a snapshot after every visible change.
type Observer func(Snapshot)

// Controller owns the form input, the error set and the submitting flag.
// Nothing else writes them.
type Controller struct {
	mu       sync.Mutex
	state    State
	input    domain.RegistrationInput
	errors   domain.ErrorSet
	observer Observer

	validator *schema.Validator
	service   domain.RegistrationService
	sessions  domain.SessionStore
	navigator domain.Navigator
	genID     *snowflake.Node
	log       *zap.Logger
	metrics   *metrics.Metrics
	telemetry *telemetry.Metrics
}

func New(
	log *zap.Logger,
	service domain.RegistrationService,
	sessions domain.SessionStore,
	navigator domain.Navigator,
	genID *snowflake.Node,
	m *metrics.Metrics,
	tm *telemetry.Metrics,
) *Controller {
	return &Controller{
		state:     StateIdle,
		errors:    domain.ErrorSet{},
		validator: schema.New(),
		service:   service,
		sessions:  sessions,
		navigator: navigator,
		genID:     genID,
		log:       log.Named("signup.controller"),
		metrics:   m,
		telemetry: tm,
	}
}

// SetObserver installs the UI refresh hook. Pass nil to remove it.
func (c *Controller) SetObserver(fn Observer) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

func (c *Controller) SetName(v string) {
	c.edit(func(in *domain.RegistrationInput) { in.Name = v })
}

func (c *Controller) SetEmail(v string) {
	c.edit(func(in *domain.RegistrationInput) { in.Email = v })
}

func (c *Controller) SetPassword(v string) {
	c.edit(func(in *domain.RegistrationInput) { in.Password = v })
}

func (c *Controller) SetTerms(v bool) {
	c.edit(func(in *domain.RegistrationInput) { in.Terms = v })
}

// Update is the generic change handler. For the terms checkbox the value is
// the checked state ("true", "on", "1", ...).
func (c *Controller) Update(field, value string) error {
	switch field {
	case domain.FieldName:
		c.SetName(value)
	case domain.FieldEmail:
		c.SetEmail(value)
	case domain.FieldPassword:
		c.SetPassword(value)
	case domain.FieldTerms:
		c.SetTerms(parseChecked(value))
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	return nil
}

// Snapshot returns a copy of the visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Submitting reports whether a registration call is outstanding.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateSubmitting
}

// Errors returns a copy of the current error set.
func (c *Controller) Errors() domain.ErrorSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Clone()
}

// Submit runs one attempt. A trigger while an attempt is in flight is
// ignored. The call is not cancelled by ctx: once started, an attempt runs
// to resolution.
func (c *Controller) Submit(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		c.log.Debug("submit ignored, attempt in flight")
		return OutcomeIgnored
	}

	input, errs := c.validator.Validate(c.input)
	if !errs.Empty() {
		c.errors = errs
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.notify(snap)
		c.metrics.RecordSubmission(ctx, string(OutcomeInvalid))
		c.log.Debug("submit blocked by validation", zap.Strings("fields", errs.Keys()))
		return OutcomeInvalid
	}

	c.errors = domain.ErrorSet{}
	if err := c.moveLocked(triggerStart); err != nil {
		c.mu.Unlock()
		c.log.Error("submission state corrupted", zap.Error(err))
		return OutcomeIgnored
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	return c.run(context.WithoutCancel(ctx), input)
}

func (c *Controller) run(ctx context.Context, input domain.RegistrationInput) (outcome Outcome) {
	ctx, _ = correlation.EnsureCorrelationID(ctx)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "signup.submit")
	log := ctxlogger.WithContext(ctx, c.log).With(zap.String("attempt_id", c.attemptID()))
	started := time.Now()
	c.telemetry.SubmissionStarted()

	outcome = OutcomeFailed
	var resultErrs domain.ErrorSet
	defer func() {
		c.mu.Lock()
		if resultErrs != nil {
			c.errors = resultErrs
		}
		if err := c.moveLocked(triggerResolve); err != nil {
			log.Error("submission state corrupted", zap.Error(err))
			c.state = StateIdle
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)

		c.telemetry.SubmissionFinished(string(outcome), time.Since(started))
		c.metrics.RecordSubmission(ctx, string(outcome))
		span.SetAttributes(attribute.String("signup.outcome", string(outcome)))
		span.End()
	}()

	resp, err := c.register(ctx, domain.Request{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")

		var rejected *domain.ValidationErrors
		if errors.As(err, &rejected) {
			resultErrs = rejected.ErrorSet()
			log.Info("registration rejected by service", zap.Strings("fields", resultErrs.Keys()))
			return OutcomeRejected
		}
		resultErrs = domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}
		log.Error("error during sign up", zap.Error(err))
		return OutcomeFailed
	}

	if resp == nil || strings.TrimSpace(resp.UserID) == "" {
		// Matches the web form: a response without a user id neither
		// navigates nor shows an error.
		log.Warn("registration response carried no user id; nothing stored")
		return OutcomeNoIdentifier
	}

	if err := c.sessions.Set(ctx, domain.SessionKeyUserID, resp.UserID); err != nil {
		resultErrs = domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}
		log.Error("failed to store user id", zap.Error(err))
		return OutcomeFailed
	}
	if err := c.sessions.Set(ctx, domain.SessionKeyUserName, input.Name); err != nil {
		resultErrs = domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}
		log.Error("failed to store user name", zap.Error(err))
		return OutcomeFailed
	}

	log.Info("user signed up", zap.String("user_id", resp.UserID))
	c.navigator.NavigateTo(domain.RouteHome)
	return OutcomeSuccess
}

// register converts a panicking collaborator into an ordinary failure.
func (c *Controller) register(ctx context.Context, req domain.Request) (resp *domain.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("registration service panicked: %v", r)
		}
	}()
	return c.service.Register(ctx, req)
}

func (c *Controller) edit(fn func(*domain.RegistrationInput)) {
	c.mu.Lock()
	fn(&c.input)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) moveLocked(t trigger) error {
	to, err := next(c.state, t)
	if err != nil {
		return err
	}
	c.state = to
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:      c.state,
		Submitting: c.state == StateSubmitting,
		Errors:     c.errors.Clone(),
		Input:      c.input,
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.mu.Lock()
	fn := c.observer
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (c *Controller) attemptID() string {
	if c.genID == nil {
		return ""
	}
	return c.genID.Generate().String()
}

func parseChecked(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "on" || v == "checked" || v == "yes" {
		return true
	}
	checked, err := strconv.ParseBool(v)
	return err == nil && checked
}
