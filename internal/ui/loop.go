package ui

import (
	"time"

	"github.com/rivo/tview"

	"github.com/bz888/parley/internal/chat"
)

// loop runs conversation callbacks on the tview event goroutine.
type loop struct {
	app *tview.Application
}

var _ chat.Scheduler = loop{}

func (l loop) AfterFunc(d time.Duration, fn func()) chat.Timer {
	return time.AfterFunc(d, func() {
		l.app.QueueUpdateDraw(fn)
	})
}

func (l loop) Post(fn func()) {
	l.app.QueueUpdateDraw(fn)
}
