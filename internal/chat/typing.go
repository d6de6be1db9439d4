package chat

import (
	"strconv"
	"time"

	"github.com/rivo/uniseg"
)

const (
	minCharDelay       = 8 * time.Millisecond
	sentencePause      = 80 * time.Millisecond
	clausePause        = 50 * time.Millisecond
	lineBreakPause     = 120 * time.Millisecond
	spaceSpeedup       = 6 * time.Millisecond
	longReplyGraphemes = 160
	midReplyGraphemes  = 80
)

// Typist reveals bot replies one grapheme cluster at a time.
type Typist struct {
	sched Scheduler
	seq   uint64
}

func NewTypist(sched Scheduler) *Typist {
	return &Typist{sched: sched}
}

// Animate starts revealing text into e. A later call on the same entry, or
// detaching the entry, stops the earlier reveal at its next step.
func (t *Typist) Animate(e *Entry, text string) {
	if e == nil {
		return
	}

	offsets := graphemeOffsets(text)
	e.Thinking = false
	e.Error = false

	if len(offsets) == 0 {
		e.typingID = ""
		e.setText("")
		return
	}

	t.seq++
	id := strconv.FormatUint(t.seq, 36)
	e.typingID = id
	e.setText("")

	total := len(offsets)
	base := baseDelay(total)

	var step func(i int)
	step = func(i int) {
		if !e.Attached() || e.typingID != id || i >= total {
			if e.typingID == id {
				e.typingID = ""
			}
			return
		}

		end := len(text)
		if i+1 < total {
			end = offsets[i+1]
		}
		if i == total-1 {
			e.typingID = ""
		}
		e.setText(text[:end])
		if i == total-1 {
			return
		}

		t.sched.AfterFunc(charDelay(base, text[offsets[i]:end]), func() {
			step(i + 1)
		})
	}

	step(0)
}

// baseDelay slows short replies down and speeds long ones up.
func baseDelay(graphemes int) time.Duration {
	switch {
	case graphemes > longReplyGraphemes:
		return 10 * time.Millisecond
	case graphemes > midReplyGraphemes:
		return 14 * time.Millisecond
	default:
		return 20 * time.Millisecond
	}
}

// charDelay is the pause after revealing char.
func charDelay(base time.Duration, char string) time.Duration {
	switch char {
	case ".", "?", "!":
		return base + sentencePause
	case ",", ";", ":":
		return base + clausePause
	case "\n", "\r\n":
		return base + lineBreakPause
	case " ":
		if d := base - spaceSpeedup; d > minCharDelay {
			return d
		}
		return minCharDelay
	default:
		return base
	}
}

// graphemeOffsets returns the byte offset where each user-perceived
// character of s starts.
func graphemeOffsets(s string) []int {
	var offsets []int
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		from, _ := g.Positions()
		offsets = append(offsets, from)
	}
	return offsets
}
