package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/pear/internal/core/task"
	"github.com/hay-kot/pear/internal/pear"
)

const flashTTL = 3 * time.Second

// stateChangedMsg tells the model to re-read the App snapshot. Changes
// coalesce: one pending message covers any number of App updates.
type stateChangedMsg struct{}

// flashMsg shows a short status line.
type flashMsg struct {
	text string
	err  bool
}

// clearFlashMsg expires the flash with the matching sequence number.
type clearFlashMsg struct{ seq int }

// bridge forwards App notifications to the bubbletea program. Subscribers
// run on whichever goroutine changed the App, so sends never block.
type bridge struct {
	changed chan struct{}
	flashes chan flashMsg
}

func newBridge() *bridge {
	return &bridge{
		changed: make(chan struct{}, 1),
		flashes: make(chan flashMsg, 8),
	}
}

// notify is registered with App.Subscribe.
func (b *bridge) notify(pear.Snapshot) {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *bridge) flash(text string, isErr bool) {
	select {
	case b.flashes <- flashMsg{text: text, err: isErr}:
	default:
	}
}

// wait returns a command that blocks until the next notification. The model
// re-issues it after handling each message.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.changed:
			return stateChangedMsg{}
		case f := <-b.flashes:
			return f
		}
	}
}

// Completed implements pear.Feedback.
func (b *bridge) Completed(t task.Task) {
	b.flash("Completed: "+t.Text, false)
}

// Reopened implements pear.Feedback.
func (b *bridge) Reopened(t task.Task) {
	b.flash("Reopened: "+t.Text, false)
}

func clearFlashAfter(seq int) tea.Cmd {
	return tea.Tick(flashTTL, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}
