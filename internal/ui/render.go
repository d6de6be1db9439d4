package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/bz888/parley/internal/chat"
)

const (
	errorColor   = "#ae2727"
	thinkingText = "…"
)

// renderTranscript projects the transcript into tview color-tagged text.
func renderTranscript(entries []*chat.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.Role {
		case chat.RoleUser:
			renderUser(&b, e)
		case chat.RoleBot:
			renderBot(&b, e)
		}
	}
	return b.String()
}

func renderUser(b *strings.Builder, e *chat.Entry) {
	b.WriteString("[red::b]You:[-::-]")
	if e.Editable {
		b.WriteString(" [::d](/edit)[::-]")
	}
	if e.Editing() {
		b.WriteString(" [yellow::]editing[-]")
	}
	b.WriteString("\n")
	if e.Attachment != nil {
		fmt.Fprintf(b, "[blue::]%s[-]\n", tview.Escape(attachmentLabel(e.Attachment)))
	}
	if e.Text != "" {
		b.WriteString(tview.Escape(e.Text))
		b.WriteString("\n")
	}
}

func renderBot(b *strings.Builder, e *chat.Entry) {
	b.WriteString("[green::b]Bot:[-::-]\n")
	switch {
	case e.Thinking:
		fmt.Fprintf(b, "[::d]%s[::-]\n", thinkingText)
	case e.Error:
		fmt.Fprintf(b, "[%s]%s[-]\n", errorColor, tview.Escape(e.Text))
	default:
		b.WriteString(tview.Escape(e.Text))
		if e.Typing() {
			b.WriteString("▌")
		}
		b.WriteString("\n")
	}
}

func attachmentLabel(a *chat.Attachment) string {
	return fmt.Sprintf("[image] %s (%s, %s)", a.Name, a.MimeType, humanSize(a.Size))
}

// renderPreview lists staged attachments, primary first, numbered for /detach.
func renderPreview(items []*chat.Attachment, primary *chat.Attachment) string {
	var b strings.Builder
	for i, a := range items {
		marker := " "
		if a == primary {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", marker, i+1, tview.Escape(attachmentLabel(a)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
