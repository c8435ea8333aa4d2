package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchOrderAndConsumption(t *testing.T) {
	m := NewManager()
	var calls []string

	m.Subscribe(TypeContentChanged, func(e Event) bool {
		calls = append(calls, "first")
		return false
	})
	m.Subscribe(TypeContentChanged, func(e Event) bool {
		calls = append(calls, "second")
		return true
	})
	m.Subscribe(TypeContentChanged, func(e Event) bool {
		calls = append(calls, "third")
		return false
	})

	m.Dispatch(TypeContentChanged, ContentChangedData{Reason: "input"})
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatchPassesData(t *testing.T) {
	m := NewManager()
	var got CommandDispatchedData
	m.Subscribe(TypeCommandDispatched, func(e Event) bool {
		got = e.Data.(CommandDispatchedData)
		return false
	})

	m.Dispatch(TypeCommandDispatched, CommandDispatchedData{Name: "foreColor", Value: "#FF0000"})
	assert.Equal(t, "foreColor", got.Name)
	assert.Equal(t, "#FF0000", got.Value)
}

func TestSubscribeDuringDispatch(t *testing.T) {
	m := NewManager()
	count := 0
	m.Subscribe(TypeModeChanged, func(e Event) bool {
		m.Subscribe(TypeModeChanged, func(Event) bool { count++; return false })
		return false
	})

	m.Dispatch(TypeModeChanged, ModeChangedData{Mode: "source"})
	assert.Equal(t, 0, count)
	m.Dispatch(TypeModeChanged, ModeChangedData{Mode: "rich"})
	assert.Equal(t, 1, count)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "HistoryMoved", TypeHistoryMoved.String())
	assert.Equal(t, "Unknown", Type(99).String())
}
