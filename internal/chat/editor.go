package chat

import "strings"

const (
	minEditRows = 2
	maxEditRows = 8
)

// Editor turns a sent user entry back into an editable draft. At most one
// entry is in edit mode at a time.
type Editor struct {
	conv   *Conversation
	active *Entry
}

// Active returns the entry being edited, or nil.
func (ed *Editor) Active() *Entry {
	return ed.active
}

// StartEdit puts e into edit mode. Any other active edit is cancelled first,
// a pending reply for e is cancelled and a settled reply is detached until the
// edit is cancelled or saved.
func (ed *Editor) StartEdit(e *Entry) bool {
	if e == nil || e.Role != RoleUser || e.Editing() || !e.Attached() {
		return false
	}
	if ed.active != nil && ed.active != e {
		ed.CancelEdit(ed.active, false)
	}

	c := ed.conv
	if e.MessageID == "" {
		e.MessageID = c.newID()
	}
	c.registry.Cancel(e.MessageID)

	buf := &EditBuffer{
		OriginalText: e.Text,
		Rows:         EditRows(e.Text),
	}
	if next := c.transcript.Next(e); next != nil && next.Role == RoleBot {
		buf.DetachedReply = next
		c.transcript.Remove(next)
	}

	e.Editable = false
	e.edit = buf
	ed.active = e
	c.transcript.changed()
	c.log.Debug("edit started", "message_id", e.MessageID)
	return true
}

// CancelEdit restores the original text and any detached reply. The edit
// affordance comes back unless suppressAffordance is set.
func (ed *Editor) CancelEdit(e *Entry, suppressAffordance bool) {
	if e == nil || !e.Editing() {
		return
	}

	buf := e.edit
	e.edit = nil
	e.Text = buf.OriginalText
	if ed.active == e {
		ed.active = nil
	}

	t := ed.conv.transcript
	if buf.DetachedReply != nil && e.Attached() {
		t.InsertAfter(e, buf.DetachedReply)
	}
	if !suppressAffordance {
		e.Editable = true
	}
	t.changed()
}

// SaveEdit commits text as the entry's new content and requests a fresh
// reply for it. It returns false without changing anything when text is blank.
func (ed *Editor) SaveEdit(e *Entry, text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || e == nil || !e.Editing() {
		return false
	}

	c := ed.conv
	e.edit = nil
	e.Text = trimmed
	if ed.active == e {
		ed.active = nil
	}

	c.transcript.clearEditable()
	e.Editable = true

	if e.MessageID == "" {
		e.MessageID = c.newID()
	}
	// edits never resubmit images
	state := newConversationState(e.MessageID, Request{Message: trimmed})
	c.registry.Register(state)
	c.schedule(state, e)

	c.transcript.changed()
	c.log.Info("edit saved", "message_id", e.MessageID)
	return true
}

// EditRows sizes the edit box to the text, between 2 and 8 rows.
func EditRows(text string) int {
	rows := strings.Count(text, "\n") + 1
	if rows < minEditRows {
		return minEditRows
	}
	if rows > maxEditRows {
		return maxEditRows
	}
	return rows
}
