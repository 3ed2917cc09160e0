package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trackcore/pkg/domain"
)

func TestNotifierDeliversInOrder(t *testing.T) {
	var n notifier
	var got []domain.Property
	n.subscribe(func(ev Event) { got = append(got, ev.Property) })

	n.emit()
	n.emit(Event{Property: "A"}, Event{Property: "B"})
	assert.Equal(t, []domain.Property{"A", "B"}, got)
}

func TestNotifierRecoversAfterListenerPanic(t *testing.T) {
	var n notifier
	calls := 0
	n.subscribe(func(ev Event) {
		calls++
		if ev.Property == "boom" {
			panic("listener failed")
		}
	})

	assert.Panics(t, func() { n.emit(Event{Property: "boom"}, Event{Property: "dropped"}) })
	n.emit(Event{Property: "after"})
	assert.Equal(t, 2, calls)
}

func TestNotifierListenerAddedDuringDelivery(t *testing.T) {
	var n notifier
	var late []domain.Property
	n.subscribe(func(ev Event) {
		if ev.Property == "A" {
			n.subscribe(func(ev Event) { late = append(late, ev.Property) })
			n.emit(Event{Property: "B"})
		}
	})

	n.emit(Event{Property: "A"})
	assert.Equal(t, []domain.Property{"B"}, late)
}
