package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNavigateRecordsHistory(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRouter(zap.New(core))

	var seen []string
	r.OnNavigate(func(route string) { seen = append(seen, route) })

	r.NavigateTo("/signup")
	r.NavigateTo("/home")

	assert.Equal(t, "/home", r.Current())
	assert.Equal(t, []string{"/signup", "/home"}, r.History())
	assert.Equal(t, []string{"/signup", "/home"}, seen)

	entries := logs.FilterMessage("navigate").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/signup", entries[1].ContextMap()["from"])
}

func TestHistoryIsCopy(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.NavigateTo("/home")

	h := r.History()
	h[0] = "/elsewhere"
	assert.Equal(t, []string{"/home"}, r.History())
}

func TestNilHook(t *testing.T) {
	r := NewRouter(zap.NewNop())
	r.OnNavigate(nil)
	assert.NotPanics(t, func() { r.NavigateTo("/home") })
}
