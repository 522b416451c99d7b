package events

import (
	"testing"

	"github.com/smallbiznis/telematch/internal/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchReachesOnlyMatchingKind(t *testing.T) {
	l := NewListeners()
	var tokens, received int

	_, err := l.Add(domain.EventRegistration, func(domain.Event) { tokens++ })
	require.NoError(t, err)
	_, err = l.Add(domain.EventNotificationReceived, func(domain.Event) { received++ })
	require.NoError(t, err)

	n := l.Dispatch(domain.Event{Kind: domain.EventRegistration, Token: &domain.Token{Value: "t"}})

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, tokens)
	assert.Equal(t, 0, received)
}

func TestDispatchOrderFollowsAttachOrder(t *testing.T) {
	l := NewListeners()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, err := l.Add(domain.EventRegistration, func(domain.Event) { order = append(order, i) })
		require.NoError(t, err)
	}

	l.Dispatch(domain.Event{Kind: domain.EventRegistration})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRemoveIsIdempotent(t *testing.T) {
	l := NewListeners()
	calls := 0
	sub, err := l.Add(domain.EventRegistrationError, func(domain.Event) { calls++ })
	require.NoError(t, err)
	other, err := l.Add(domain.EventRegistrationError, func(domain.Event) {})
	require.NoError(t, err)

	sub.Remove()
	sub.Remove()

	assert.Equal(t, 1, l.Count(domain.EventRegistrationError))
	l.Dispatch(domain.Event{Kind: domain.EventRegistrationError})
	assert.Equal(t, 0, calls)

	other.Remove()
	assert.Equal(t, 0, l.Count(domain.EventRegistrationError))
}

func TestHandlerRemovingItselfDuringDispatch(t *testing.T) {
	l := NewListeners()
	var sub domain.Subscription
	calls := 0
	sub, err := l.Add(domain.EventActionPerformed, func(domain.Event) {
		calls++
		sub.Remove()
	})
	require.NoError(t, err)

	l.Dispatch(domain.Event{Kind: domain.EventActionPerformed})
	l.Dispatch(domain.Event{Kind: domain.EventActionPerformed})
	assert.Equal(t, 1, calls)
}

func TestAddRejectsBadInput(t *testing.T) {
	l := NewListeners()

	_, err := l.Add("bogus", func(domain.Event) {})
	assert.ErrorIs(t, err, domain.ErrUnknownEventKind)

	_, err = l.Add(domain.EventRegistration, nil)
	assert.ErrorIs(t, err, domain.ErrNilHandler)
}

func TestNilListenersDispatch(t *testing.T) {
	var l *Listeners
	assert.Equal(t, 0, l.Dispatch(domain.Event{Kind: domain.EventRegistration}))
}
