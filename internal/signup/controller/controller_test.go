package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/telematch/internal/signup/domain"
	"github.com/smallbiznis/telematch/internal/signup/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type calls struct {
	mu  sync.Mutex
	log []string
}

func (c *calls) add(entry string) {
	c.mu.Lock()
	c.log = append(c.log, entry)
	c.mu.Unlock()
}

func (c *calls) entries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

type recordingStore struct {
	calls  *calls
	failOn string
}

func (s *recordingStore) Set(ctx context.Context, key, value string) error {
	_ = ctx
	if key == s.failOn {
		return errors.New("disk full")
	}
	s.calls.add("set:" + key + "=" + value)
	return nil
}

type recordingNavigator struct {
	calls *calls
}

func (n *recordingNavigator) NavigateTo(route string) {
	n.calls.add("navigate:" + route)
}

type fakeService struct {
	mu       sync.Mutex
	requests []domain.Request
	ctxErrs  []error
	entered  chan struct{}
	release  chan struct{}
	resp     *domain.Response
	err      error
	panicVal any
}

func (f *fakeService) Register(ctx context.Context, req domain.Request) (*domain.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.panicVal != nil {
		panic(f.panicVal)
	}
	return f.resp, f.err
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func newTestController(t *testing.T, svc domain.RegistrationService, store domain.SessionStore, nav domain.Navigator) *Controller {
	t.Helper()
	return New(zap.NewNop(), svc, store, nav, newTestNode(t), nil, nil)
}

func fillValid(c *Controller) {
	c.SetName("Ada")
	c.SetEmail("ada@example.com")
	c.SetPassword("123456")
	c.SetTerms(true)
}

func TestSubmitInvalidInputNeverCallsService(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistrationService(ctrl)
	store := mocks.NewMockSessionStore(ctrl)
	nav := mocks.NewMockNavigator(ctrl)

	c := newTestController(t, svc, store, nav)
	fillValid(c)
	c.SetTerms(false)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeInvalid, outcome)
	assert.Equal(t, domain.ErrorSet{domain.FieldTerms: domain.MsgTermsRequired}, c.Errors())
	assert.False(t, c.Submitting())
}

func TestSubmitSuccessStoresSessionThenNavigates(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockRegistrationService(ctrl)
	store := mocks.NewMockSessionStore(ctrl)
	nav := mocks.NewMockNavigator(ctrl)

	svc.EXPECT().
		Register(gomock.Any(), domain.Request{Name: "Ada", Email: "ada@example.com", Password: "123456"}).
		Return(&domain.Response{UserID: "u-42"}, nil)
	gomock.InOrder(
		store.EXPECT().Set(gomock.Any(), domain.SessionKeyUserID, "u-42").Return(nil),
		store.EXPECT().Set(gomock.Any(), domain.SessionKeyUserName, "Ada").Return(nil),
		nav.EXPECT().NavigateTo(domain.RouteHome),
	)

	c := newTestController(t, svc, store, nav)
	fillValid(c)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Empty(t, c.Errors())
	assert.False(t, c.Submitting())
}

func TestSubmitWithoutIdentifierIsSilent(t *testing.T) {
	log := &calls{}
	svc := &fakeService{resp: &domain.Response{}}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeNoIdentifier, outcome)
	assert.Empty(t, log.entries())
	assert.Empty(t, c.Errors())
	assert.False(t, c.Submitting())
	assert.Equal(t, 1, svc.count())
}

func TestSubmitServiceValidationErrorMapsToFields(t *testing.T) {
	log := &calls{}
	svc := &fakeService{err: &domain.ValidationErrors{Errors: []domain.FieldError{
		{Field: domain.FieldEmail, Code: "taken", Message: "Email already registered"},
	}}}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeRejected, outcome)
	assert.Equal(t, domain.ErrorSet{domain.FieldEmail: "Email already registered"}, c.Errors())
	assert.Empty(t, log.entries())
	assert.False(t, c.Submitting())
}

func TestSubmitGenericErrorSetsAPIError(t *testing.T) {
	log := &calls{}
	svc := &fakeService{err: errors.New("connection refused")}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}, c.Errors())
	assert.Empty(t, log.entries())
	assert.False(t, c.Submitting())
}

func TestSubmitReleasesFlagWhenServicePanics(t *testing.T) {
	log := &calls{}
	svc := &fakeService{panicVal: "boom"}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}, c.Errors())
	assert.False(t, c.Submitting())
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

func TestSubmitStoreFailureDoesNotNavigate(t *testing.T) {
	log := &calls{}
	svc := &fakeService{resp: &domain.Response{UserID: "u-1"}}
	store := &recordingStore{calls: log, failOn: domain.SessionKeyUserName}
	c := newTestController(t, svc, store, &recordingNavigator{calls: log})
	fillValid(c)

	outcome := c.Submit(context.Background())

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Equal(t, []string{"set:myID=u-1"}, log.entries())
	assert.Equal(t, domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}, c.Errors())
}

func TestSubmitWhileInFlightIsIgnored(t *testing.T) {
	log := &calls{}
	svc := &fakeService{
		resp:    &domain.Response{UserID: "u-7"},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	done := make(chan Outcome, 1)
	go func() { done <- c.Submit(context.Background()) }()

	select {
	case <-svc.entered:
	case <-time.After(time.Second):
		t.Fatal("registration call was not issued")
	}

	assert.True(t, c.Submitting())
	assert.Equal(t, OutcomeIgnored, c.Submit(context.Background()))
	assert.Equal(t, 1, svc.count())

	close(svc.release)
	select {
	case outcome := <-done:
		assert.Equal(t, OutcomeSuccess, outcome)
	case <-time.After(time.Second):
		t.Fatal("first submission did not resolve")
	}

	assert.False(t, c.Submitting())
	assert.Equal(t, 1, svc.count())
	assert.Equal(t, []string{"set:myID=u-7", "set:userName=Ada", "navigate:/home"}, log.entries())
}

func TestSubmitIsNotCancelledByCaller(t *testing.T) {
	log := &calls{}
	svc := &fakeService{resp: &domain.Response{UserID: "u-9"}}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, OutcomeSuccess, c.Submit(ctx))
	require.Len(t, svc.ctxErrs, 1)
	assert.NoError(t, svc.ctxErrs[0])
}

func TestObserverSeesSubmittingSpan(t *testing.T) {
	log := &calls{}
	svc := &fakeService{err: errors.New("500")}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})
	fillValid(c)

	var seen []bool
	c.SetObserver(func(s Snapshot) { seen = append(seen, s.Submitting) })

	c.Submit(context.Background())

	assert.Equal(t, []bool{true, false}, seen)
}

func TestSubmitClearsPreviousErrorsBeforeCalling(t *testing.T) {
	log := &calls{}
	svc := &fakeService{resp: &domain.Response{UserID: "u-3"}}
	c := newTestController(t, svc, &recordingStore{calls: log}, &recordingNavigator{calls: log})

	assert.Equal(t, OutcomeInvalid, c.Submit(context.Background()))
	assert.Len(t, c.Errors(), 4)

	fillValid(c)
	assert.Equal(t, OutcomeSuccess, c.Submit(context.Background()))
	assert.Empty(t, c.Errors())
}

func TestUpdate(t *testing.T) {
	c := newTestController(t, &fakeService{}, &recordingStore{calls: &calls{}}, &recordingNavigator{calls: &calls{}})

	require.NoError(t, c.Update(domain.FieldName, "Grace"))
	require.NoError(t, c.Update(domain.FieldEmail, "grace@example.com"))
	require.NoError(t, c.Update(domain.FieldPassword, "hopper"))
	require.NoError(t, c.Update(domain.FieldTerms, "on"))

	assert.Equal(t, domain.RegistrationInput{
		Name:     "Grace",
		Email:    "grace@example.com",
		Password: "hopper",
		Terms:    true,
	}, c.Snapshot().Input)

	require.NoError(t, c.Update(domain.FieldTerms, "false"))
	assert.False(t, c.Snapshot().Input.Terms)

	err := c.Update("age", "12")
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestTransitionTable(t *testing.T) {
	to, err := next(StateIdle, triggerStart)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitting, to)

	to, err = next(StateSubmitting, triggerResolve)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, to)

	_, err = next(StateIdle, triggerResolve)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = next(StateSubmitting, triggerStart)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
