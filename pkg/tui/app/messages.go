package teaui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/anispin/pkg/store"
)

// messages
type errMsg struct{ err error }

// frameMsg drives an in-flight spin. Frames carry the spin id they were
// scheduled for so frames of a replaced spin can be dropped.
type frameMsg struct {
	spin uint64
	at   time.Time
}

// idleMsg drifts the wheel and settles the pointer between spins.
type idleMsg struct{ at time.Time }

// searchMsg fires once the search box has been quiet for searchDebounce.
type searchMsg struct {
	gen  int
	text string
}

// storeMsg reports a change to a stored library.
type storeMsg struct{ event store.Event }

// storeClosedMsg reports that the watcher stopped.
type storeClosedMsg struct{}

func frameCmd(spin uint64, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return frameMsg{spin: spin, at: t}
	})
}

func idleCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return idleMsg{at: t}
	})
}

func searchCmd(gen int, text string, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return searchMsg{gen: gen, text: text}
	})
}

func waitForStore(ch <-chan store.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return storeMsg{event: ev}
	}
}
