package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoGateway(_ context.Context, req Request) (string, error) {
	return "re: " + req.Message, nil
}

// sendAndSettle submits text and waits for its reply to finish typing.
func sendAndSettle(t *testing.T, c *Conversation, sched *manualScheduler, text string) (*Entry, *Entry) {
	t.Helper()
	require.True(t, c.Submit(text))
	settleNext(t, c, sched)
	entries := c.Transcript().Entries()
	for i, e := range entries {
		if e.Role == RoleUser && e.Text == text {
			require.Less(t, i+1, len(entries))
			return e, entries[i+1]
		}
	}
	t.Fatalf("message %q not found", text)
	return nil, nil
}

func TestEditAndSaveReplacesReply(t *testing.T) {
	c, sched, gw := newTestConversation(echoGateway)
	user, bot := sendAndSettle(t, c, sched, "hello")
	ed := c.Editor()

	require.True(t, ed.StartEdit(user))
	assert.True(t, user.Editing())
	assert.False(t, user.Editable)
	assert.Same(t, user, ed.Active())
	assert.False(t, bot.Attached())
	assert.Equal(t, "hello", user.EditBuffer().OriginalText)
	assert.Same(t, bot, user.EditBuffer().DetachedReply)
	assert.Equal(t, 1, c.Transcript().Len())

	require.True(t, ed.SaveEdit(user, "  hello again "))
	assert.False(t, user.Editing())
	assert.Nil(t, ed.Active())
	assert.Equal(t, "hello again", user.Text)
	assert.True(t, user.Editable)
	assert.True(t, c.Registry().Has(user.MessageID))

	settleNext(t, c, sched)

	bots := entriesByRole(c.Transcript(), RoleBot)
	require.Len(t, bots, 1)
	assert.Equal(t, "re: hello again", bots[0].Text)
	assert.NotSame(t, bot, bots[0])
	assert.Same(t, bots[0], c.Transcript().Next(user))

	reqs := gw.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, Request{Message: "hello again"}, reqs[1])
	assert.True(t, user.Editable, "affordance is back after settlement")
}

func TestCancelEditRestoresReply(t *testing.T) {
	c, sched, _ := newTestConversation(echoGateway)
	user, bot := sendAndSettle(t, c, sched, "hello")
	ed := c.Editor()

	require.True(t, ed.StartEdit(user))
	ed.CancelEdit(user, false)

	assert.False(t, user.Editing())
	assert.Equal(t, "hello", user.Text)
	assert.True(t, user.Editable)
	assert.Same(t, bot, c.Transcript().Next(user))
	assert.Equal(t, "re: hello", bot.Text)
	assert.Nil(t, ed.Active())
}

func TestCancelEditCanSuppressAffordance(t *testing.T) {
	c, sched, _ := newTestConversation(echoGateway)
	user, _ := sendAndSettle(t, c, sched, "hello")

	require.True(t, c.Editor().StartEdit(user))
	c.Editor().CancelEdit(user, true)

	assert.False(t, user.Editable)
	assert.Equal(t, "hello", user.Text)
}

func TestStartingSecondEditCancelsFirst(t *testing.T) {
	c, sched, _ := newTestConversation(echoGateway)
	first, firstReply := sendAndSettle(t, c, sched, "one")
	second, secondReply := sendAndSettle(t, c, sched, "two")
	ed := c.Editor()

	require.True(t, ed.StartEdit(first))
	first.Text = "one (draft)"
	require.True(t, ed.StartEdit(second))

	assert.False(t, first.Editing())
	assert.Equal(t, "one", first.Text)
	assert.True(t, first.Editable)
	assert.Same(t, firstReply, c.Transcript().Next(first))

	assert.True(t, second.Editing())
	assert.Same(t, second, ed.Active())
	assert.False(t, secondReply.Attached())
}

func TestStartEditIsNoOpWhenAlreadyEditing(t *testing.T) {
	c, sched, _ := newTestConversation(echoGateway)
	user, _ := sendAndSettle(t, c, sched, "hello")

	require.True(t, c.Editor().StartEdit(user))
	buf := user.EditBuffer()
	assert.False(t, c.Editor().StartEdit(user))
	assert.Same(t, buf, user.EditBuffer())
}

func TestStartEditCancelsPendingReply(t *testing.T) {
	c, sched, gw := newTestConversation(blockUntilCancelled)

	require.True(t, c.Submit("hello"))
	sched.Advance(DefaultThinkingDelay)
	require.Equal(t, 2, c.Transcript().Len())

	user := c.Transcript().Entries()[0]
	require.True(t, c.Editor().StartEdit(user))

	assert.Equal(t, 1, c.Transcript().Len(), "thinking placeholder removed")
	assert.Nil(t, user.EditBuffer().DetachedReply)
	assert.Equal(t, 0, c.Registry().Len())

	sched.RunPosted(t, 1)
	assert.Equal(t, 1, c.Transcript().Len())
	assert.Len(t, gw.Requests(), 1)
}

func TestEditDuringDelayIssuesOnlyEditedRequest(t *testing.T) {
	c, sched, gw := newTestConversation(echoGateway)

	require.True(t, c.Submit("hello"))
	user := c.Transcript().Entries()[0]
	require.True(t, c.Editor().StartEdit(user))
	require.True(t, c.Editor().SaveEdit(user, "goodbye"))

	sched.Advance(DefaultThinkingDelay)
	sched.RunPosted(t, 1)
	sched.Advance(time.Minute)
	sched.AssertNothingPosted(t)

	assert.Equal(t, []Request{{Message: "goodbye"}}, gw.Requests())
	bots := entriesByRole(c.Transcript(), RoleBot)
	require.Len(t, bots, 1)
	assert.Equal(t, "re: goodbye", bots[0].Text)
}

func TestSaveEditRejectsBlankText(t *testing.T) {
	c, sched, _ := newTestConversation(echoGateway)
	user, _ := sendAndSettle(t, c, sched, "hello")

	require.True(t, c.Editor().StartEdit(user))
	assert.False(t, c.Editor().SaveEdit(user, "   "))
	assert.True(t, user.Editing())
	assert.Equal(t, 0, c.Registry().Len())
}

func TestSaveEditMovesAffordance(t *testing.T) {
	c, sched, _ := newTestConversation(echoGateway)
	first, _ := sendAndSettle(t, c, sched, "one")
	second, _ := sendAndSettle(t, c, sched, "two")

	require.True(t, c.Editor().StartEdit(first))
	require.True(t, c.Editor().SaveEdit(first, "uno"))

	assert.True(t, first.Editable)
	assert.False(t, second.Editable)

	settleNext(t, c, sched)
}

func TestEditRows(t *testing.T) {
	assert.Equal(t, 2, EditRows("one line"))
	assert.Equal(t, 3, EditRows("a\nb\nc"))
	assert.Equal(t, 8, EditRows("1\n2\n3\n4\n5\n6\n7\n8\n9\n10"))
}
