package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bz888/parley/internal/logger"
)

// DefaultThinkingDelay is how long a submitted message waits before the
// thinking placeholder appears and the gateway is called.
const DefaultThinkingDelay = 600 * time.Millisecond

type Options struct {
	ThinkingDelay time.Duration
	// OnScroll is called whenever the transcript should scroll to its end.
	OnScroll func()
}

// Conversation drives the lifecycle of every submitted message: validation,
// rendering, the thinking delay, the gateway call and settlement.
type Conversation struct {
	sched       Scheduler
	gateway     Gateway
	transcript  *Transcript
	registry    *Registry
	attachments *AttachmentStore
	typist      *Typist
	editor      *Editor

	delay    time.Duration
	onScroll func()
	newID    func() string
	log      *logger.Logger
}

func NewConversation(sched Scheduler, gateway Gateway, opts Options) *Conversation {
	delay := opts.ThinkingDelay
	if delay <= 0 {
		delay = DefaultThinkingDelay
	}

	c := &Conversation{
		sched:       sched,
		gateway:     gateway,
		transcript:  NewTranscript(),
		registry:    NewRegistry(),
		attachments: NewAttachmentStore(sched),
		typist:      NewTypist(sched),
		delay:       delay,
		onScroll:    opts.OnScroll,
		newID:       uuid.NewString,
		log:         logger.NewLogger("conversation"),
	}
	c.editor = &Editor{conv: c}
	return c
}

func (c *Conversation) Transcript() *Transcript {
	return c.transcript
}

func (c *Conversation) Registry() *Registry {
	return c.registry
}

func (c *Conversation) Attachments() *AttachmentStore {
	return c.attachments
}

func (c *Conversation) Editor() *Editor {
	return c.editor
}

// Submit sends text together with the primary attachment. It returns false,
// leaving everything untouched, when there is neither text nor an attachment.
func (c *Conversation) Submit(text string) bool {
	message := strings.TrimSpace(text)
	file := c.attachments.PrimaryPayload()
	if message == "" && file == nil {
		return false
	}

	c.transcript.start()
	c.transcript.clearEditable()

	entry := &Entry{
		Role:      RoleUser,
		Text:      message,
		MessageID: c.newID(),
	}
	if primary := c.attachments.Primary(); file != nil && primary != nil {
		sent := *primary
		entry.Attachment = &sent
	}
	// edited resubmissions are text only, so only text-only messages get the affordance
	entry.Editable = file == nil

	c.transcript.Append(entry)
	c.scroll()

	state := newConversationState(entry.MessageID, Request{Message: message, File: file})
	c.registry.Register(state)
	c.schedule(state, entry)

	c.attachments.Clear()
	c.log.Info("message submitted", "message_id", entry.MessageID, "attachment", file != nil)
	return true
}

// Cancel aborts the pending reply for id, if any.
func (c *Conversation) Cancel(id string) {
	c.registry.Cancel(id)
}

// CancelAll aborts every pending reply and returns how many there were.
func (c *Conversation) CancelAll() int {
	ids := c.registry.IDs()
	for _, id := range ids {
		c.registry.Cancel(id)
	}
	return len(ids)
}

// schedule shows the thinking placeholder after the delay and then calls the
// gateway, unless the state was cancelled or replaced in the meantime.
func (c *Conversation) schedule(state *ConversationState, anchor *Entry) {
	state.timer = c.sched.AfterFunc(c.delay, func() {
		if !c.registry.holds(state) {
			return
		}
		state.timer = nil

		reply := &Entry{Role: RoleBot, Thinking: true}
		state.reply = reply
		c.transcript.InsertAfter(anchor, reply)
		c.scroll()

		c.request(state)
	})
}

func (c *Conversation) request(state *ConversationState) {
	ctx, payload := state.ctx, state.Payload
	go func() {
		text, err := c.gateway.Complete(ctx, payload)
		c.sched.Post(func() {
			c.settle(state, text, err)
		})
	}()
}

func (c *Conversation) settle(state *ConversationState, text string, err error) {
	if err != nil && IsCancellation(err) {
		c.log.Debug("reply cancelled", "message_id", state.MessageID)
		return
	}
	if !c.registry.holds(state) {
		c.log.Debug("dropping stale reply", "message_id", state.MessageID)
		return
	}

	reply := state.reply
	if err == nil {
		text = CleanReply(text)
		if text == "" {
			err = ErrEmptyResponse
		}
	}

	if err != nil {
		c.log.Warn("reply failed", "message_id", state.MessageID, "error", err.Error())
		reply.showError(ErrorText(err))
	} else {
		c.typist.Animate(reply, text)
	}

	c.registry.Retire(state.MessageID)
	if reply.Attached() {
		c.scroll()
	}
}

func (c *Conversation) scroll() {
	if c.onScroll != nil {
		c.onScroll()
	}
}
