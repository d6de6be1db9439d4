package chat

type Role int

const (
	RoleUser Role = iota
	RoleBot
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Entry is one rendered message in the transcript.
type Entry struct {
	Role      Role
	Text      string
	MessageID string // user entries only

	// Attachment is the image sent with a user entry, if any.
	Attachment *Attachment

	// Editable marks the entry that currently carries the edit affordance.
	Editable bool
	Thinking bool
	Error    bool

	edit       *EditBuffer
	typingID   string
	transcript *Transcript
}

// EditBuffer holds what is needed to undo an edit in progress.
type EditBuffer struct {
	OriginalText  string
	DetachedReply *Entry
	Rows          int
}

// Attached reports whether the entry is currently part of a transcript.
func (e *Entry) Attached() bool {
	return e.transcript != nil
}

func (e *Entry) Editing() bool {
	return e.edit != nil
}

// EditBuffer returns the active edit state, or nil when the entry is not being edited.
func (e *Entry) EditBuffer() *EditBuffer {
	return e.edit
}

// Typing reports whether a typing animation currently owns the entry.
func (e *Entry) Typing() bool {
	return e.typingID != ""
}

func (e *Entry) setText(text string) {
	e.Text = text
	e.notify()
}

func (e *Entry) showError(message string) {
	e.typingID = ""
	e.Thinking = false
	e.Error = true
	e.setText(message)
}

func (e *Entry) notify() {
	if e.transcript != nil {
		e.transcript.changed()
	}
}

// Transcript is the ordered list of user and bot entries. It is a pure model:
// a rendering layer subscribes with SetOnChange and projects it.
type Transcript struct {
	entries  []*Entry
	started  bool
	onChange func()
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) SetOnChange(fn func()) {
	t.onChange = fn
}

// Entries returns a snapshot of the current entries.
func (t *Transcript) Entries() []*Entry {
	out := make([]*Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Started reports whether the first message has been sent. The greeting is
// only shown before that.
func (t *Transcript) Started() bool {
	return t.started
}

func (t *Transcript) start() {
	if !t.started {
		t.started = true
		t.changed()
	}
}

func (t *Transcript) Append(e *Entry) {
	t.detach(e)
	e.transcript = t
	t.entries = append(t.entries, e)
	t.changed()
}

// InsertAfter places e directly after anchor. A nil or detached anchor appends.
func (t *Transcript) InsertAfter(anchor, e *Entry) {
	idx := t.index(anchor)
	if idx < 0 {
		t.Append(e)
		return
	}
	t.detach(e)
	idx = t.index(anchor)
	e.transcript = t
	t.entries = append(t.entries, nil)
	copy(t.entries[idx+2:], t.entries[idx+1:])
	t.entries[idx+1] = e
	t.changed()
}

// Remove detaches e. It returns false when e was not in the transcript.
func (t *Transcript) Remove(e *Entry) bool {
	if !t.detach(e) {
		return false
	}
	t.changed()
	return true
}

// Next returns the entry directly after e, or nil.
func (t *Transcript) Next(e *Entry) *Entry {
	idx := t.index(e)
	if idx < 0 || idx+1 >= len(t.entries) {
		return nil
	}
	return t.entries[idx+1]
}

// EditableEntry returns the most recent entry carrying the edit affordance.
func (t *Transcript) EditableEntry() *Entry {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Editable {
			return t.entries[i]
		}
	}
	return nil
}

func (t *Transcript) clearEditable() {
	for _, e := range t.entries {
		e.Editable = false
	}
}

func (t *Transcript) detach(e *Entry) bool {
	idx := t.index(e)
	if idx < 0 {
		return false
	}
	t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	e.transcript = nil
	return true
}

func (t *Transcript) index(e *Entry) int {
	if e == nil || e.transcript != t {
		return -1
	}
	for i, cur := range t.entries {
		if cur == e {
			return i
		}
	}
	return -1
}

func (t *Transcript) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}
