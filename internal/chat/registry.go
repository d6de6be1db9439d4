package chat

import (
	"context"
	"sort"
)

// ConversationState tracks one in-flight request.
type ConversationState struct {
	MessageID string
	Payload   Request

	ctx    context.Context
	cancel context.CancelFunc
	timer  Timer
	reply  *Entry
}

func newConversationState(id string, payload Request) *ConversationState {
	ctx, cancel := context.WithCancel(context.Background())
	return &ConversationState{
		MessageID: id,
		Payload:   payload,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Reply returns the pending reply entry, or nil before the thinking delay elapses.
func (s *ConversationState) Reply() *Entry {
	return s.reply
}

// Registry maps message ids to their in-flight state.
type Registry struct {
	states map[string]*ConversationState
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*ConversationState)}
}

// Register stores state under its message id. A different state already
// registered under the same id is cancelled first.
func (r *Registry) Register(state *ConversationState) {
	if cur, ok := r.states[state.MessageID]; ok && cur != state {
		r.Cancel(state.MessageID)
	}
	r.states[state.MessageID] = state
}

func (r *Registry) Get(id string) (*ConversationState, bool) {
	s, ok := r.states[id]
	return s, ok
}

func (r *Registry) Has(id string) bool {
	_, ok := r.states[id]
	return ok
}

// holds reports whether state is still the registered state for its id.
func (r *Registry) holds(state *ConversationState) bool {
	cur, ok := r.states[state.MessageID]
	return ok && cur == state
}

// Cancel stops the pending timer, aborts the request, removes a reply that is
// still attached and forgets the id. Unknown ids are ignored.
func (r *Registry) Cancel(id string) {
	state, ok := r.states[id]
	if !ok {
		return
	}

	if state.timer != nil {
		state.timer.Stop()
	}
	if state.ctx.Err() == nil {
		state.cancel()
	}
	if reply := state.reply; reply != nil && reply.Attached() {
		reply.transcript.Remove(reply)
	}
	delete(r.states, id)
}

// Retire forgets the id without side effects. Unknown ids are ignored.
func (r *Registry) Retire(id string) {
	state, ok := r.states[id]
	if !ok {
		return
	}
	// release the context; the request has already settled
	state.cancel()
	delete(r.states, id)
}

func (r *Registry) Len() int {
	return len(r.states)
}

// IDs returns the registered message ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.states))
	for id := range r.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
