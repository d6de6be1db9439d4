package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/bz888/parley/internal/chat"
	"github.com/bz888/parley/internal/logger"
)

const (
	greetingPage     = "greeting"
	conversationPage = "conversation"
	modelsPage       = "models"
	helpPage         = "help"

	greetingText = "[::b]Hello, there[::-]\nHow can I help you today?"
	inputHeight  = 6
	modelTimeout = 15 * time.Second
)

var suggestions = []string{
	"Design a home office setup for remote work under $500.",
	"How can I level up my web development expertise in 2025?",
	"Suggest some useful tools for debugging JavaScript code.",
	"Create a response to a neighbor asking to borrow my car.",
}

// Backend is what the UI needs from the chat proxy.
type Backend interface {
	chat.Gateway
	ListModels(ctx context.Context) ([]string, error)
}

type Options struct {
	ThinkingDelay time.Duration
	// ShowDebug opens the debug console at startup.
	ShowDebug bool
}

// App is the terminal chat client.
type App struct {
	app     *tview.Application
	backend Backend
	conv    *chat.Conversation

	pages        *tview.Pages
	main         *tview.Flex
	column       *tview.Flex
	body         *tview.Pages
	conversation *tview.TextView
	suggestions  *tview.List
	preview      *tview.TextView
	input        *tview.TextArea
	status       *tview.TextView
	debugConsole *tview.TextView
	debugShown   bool

	log *logger.Logger
}

func New(backend Backend, opts Options) *App {
	a := &App{
		app:     tview.NewApplication(),
		backend: backend,
		log:     logger.NewLogger("views"),
	}
	a.app.EnablePaste(true)
	a.app.EnableMouse(true)

	a.conv = chat.NewConversation(loop{app: a.app}, backend, chat.Options{
		ThinkingDelay: opts.ThinkingDelay,
		OnScroll:      func() { a.conversation.ScrollToEnd() },
	})
	a.conv.Transcript().SetOnChange(a.refreshTranscript)
	a.conv.Attachments().SetOnChange(a.refreshPreview)

	a.debugConsole = initDebugConsole(a.app)
	a.conversation = initChatViewer()
	a.input = initChatInput()
	a.preview = initPreview()
	a.status = tview.NewTextView().SetDynamicColors(true)
	a.suggestions = a.initSuggestions()

	greeting := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView().SetDynamicColors(true).SetText(greetingText), 3, 0, false).
		AddItem(a.suggestions, 0, 1, false)
	greeting.SetBorder(true).SetTitle("Conversation")

	a.body = tview.NewPages().
		AddPage(greetingPage, greeting, true, true).
		AddPage(conversationPage, a.conversation, true, false)

	a.column = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.body, 0, 1, false).
		AddItem(a.preview, 0, 0, false).
		AddItem(a.input, inputHeight, 0, true).
		AddItem(a.status, 1, 0, false)
	a.main = tview.NewFlex().
		AddItem(a.column, 0, 2, true)
	if opts.ShowDebug {
		a.main.AddItem(a.debugConsole, 0, 1, false)
		a.debugShown = true
	}

	a.pages = tview.NewPages().AddPage("main", a.main, true, true)
	a.setInputCapture()
	a.setStatus("Enter sends. Type /help for commands.")
	return a
}

func initChatViewer() *tview.TextView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	textView.SetTitle("Conversation").SetBorder(true)
	textView.SetScrollable(true)
	return textView
}

func initChatInput() *tview.TextArea {
	textArea := tview.NewTextArea().
		SetPlaceholder("Ask me anything...")
	textArea.SetTitle("Question").SetBorder(true)
	return textArea
}

func initPreview() *tview.TextView {
	preview := tview.NewTextView().SetDynamicColors(true)
	preview.SetTitle("Attachments").SetBorder(true)
	return preview
}

func initDebugConsole(app *tview.Application) *tview.TextView {
	console := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	// log lines arrive from any goroutine, including the event loop itself
	console.SetChangedFunc(func() {
		go app.Draw()
	})

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

func (a *App) initSuggestions() *tview.List {
	list := tview.NewList().ShowSecondaryText(false)
	for i, s := range suggestions {
		prompt := s
		list.AddItem(prompt, "", rune('1'+i), func() {
			a.input.SetText(prompt, true)
			a.app.SetFocus(a.input)
		})
	}
	list.SetDoneFunc(func() {
		a.app.SetFocus(a.input)
	})
	return list
}

// Console is where the logger should write in dev mode.
func (a *App) Console() io.Writer {
	return tview.ANSIWriter(a.debugConsole)
}

// Run blocks until the user quits.
func (a *App) Run() error {
	return a.app.SetRoot(a.pages, true).SetFocus(a.input).Run()
}

func (a *App) setInputCapture() {
	a.conversation.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter {
			a.app.SetFocus(a.input)
			return nil
		}
		return event
	})

	a.input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			if a.conv.Transcript().Started() {
				a.app.SetFocus(a.conversation)
			} else {
				a.app.SetFocus(a.suggestions)
			}
			return nil
		case tcell.KeyEnter:
			if event.Modifiers()&(tcell.ModAlt|tcell.ModShift) != 0 {
				return event
			}
			a.handleInput(a.input.GetText())
			return nil
		}
		return event
	})
}

func (a *App) handleInput(content string) {
	if name, args, ok := parseCommand(content); ok {
		cmd, found := lookupCommand(name)
		if !found {
			a.setError(fmt.Sprintf("Unknown command %s. Type /help for commands.", name))
			return
		}
		a.input.SetText("", true)
		a.log.Debug("running command", "command", name)
		cmd.run(a, args)
		return
	}

	text, ok := outgoingText(content, a.conv.Attachments().Len())
	if !ok {
		return
	}
	if a.conv.Submit(text) {
		a.input.SetText("", true)
		a.setStatus("")
	}
}

func (a *App) refreshTranscript() {
	tr := a.conv.Transcript()
	if tr.Started() {
		if name, _ := a.body.GetFrontPage(); name != conversationPage {
			a.body.SwitchToPage(conversationPage)
		}
	}
	a.conversation.SetText(renderTranscript(tr.Entries()))
}

func (a *App) refreshPreview() {
	store := a.conv.Attachments()
	if !store.Visible() {
		a.preview.Clear()
		a.column.ResizeItem(a.preview, 0, 0)
		return
	}
	a.preview.SetText(renderPreview(store.List(), store.Primary()))
	// two border rows
	a.column.ResizeItem(a.preview, store.Len()+2, 0)
}

func (a *App) setStatus(msg string) {
	a.status.SetText(tview.Escape(msg))
}

func (a *App) setError(msg string) {
	a.status.SetText(fmt.Sprintf("[%s]%s[-]", errorColor, tview.Escape(msg)))
}

func (a *App) showHelp(_ []string) {
	modal := tview.NewModal().
		SetText(helpText()).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			a.pages.RemovePage(helpPage)
			a.app.SetFocus(a.input)
		})
	a.pages.AddPage(helpPage, modal, true, true)
}

func (a *App) quit(_ []string) {
	a.conv.CancelAll()
	a.log.Info("Shutting down gracefully.")
	a.app.Stop()
}

func (a *App) toggleDebugConsole(_ []string) {
	if a.debugShown {
		a.main.RemoveItem(a.debugConsole)
		a.setStatus("Debug console disabled")
	} else {
		a.main.AddItem(a.debugConsole, 0, 1, false)
		a.setStatus("Debug console enabled")
	}
	a.debugShown = !a.debugShown
}

func (a *App) attach(args []string) {
	if len(args) == 0 {
		a.setError("Usage: /attach <path...>")
		return
	}
	for _, path := range args {
		a.conv.Attachments().Add(path, func(att *chat.Attachment, err error) {
			if err != nil {
				a.log.Warn("attachment rejected", "path", path, "error", err.Error())
				a.setError(err.Error())
				return
			}
			a.setStatus("Attached " + att.Name)
		})
	}
}

func (a *App) detach(args []string) {
	store := a.conv.Attachments()
	if len(args) != 1 {
		a.setError("Usage: /detach <n>")
		return
	}
	idx, err := parseIndex(args[0], store.Len())
	if err != nil {
		a.setError(err.Error())
		return
	}
	removed := store.List()[idx]
	store.Remove(removed.ID)
	a.setStatus("Removed " + removed.Name)
}

func (a *App) editLast(_ []string) {
	e := a.conv.Transcript().EditableEntry()
	if e == nil {
		a.setError("There is no message to edit.")
		return
	}
	if !a.conv.Editor().StartEdit(e) {
		return
	}
	a.openEditor(e)
}

func (a *App) stop(_ []string) {
	n := a.conv.CancelAll()
	if n == 0 {
		a.setStatus("Nothing to stop.")
		return
	}
	a.setStatus(fmt.Sprintf("Stopped %d pending %s.", n, plural(n, "reply", "replies")))
}

func (a *App) showModels(_ []string) {
	a.setStatus("Loading models...")
	post := loop{app: a.app}.Post
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), modelTimeout)
		defer cancel()
		models, err := a.backend.ListModels(ctx)
		post(func() {
			if err != nil {
				a.log.Error("Failed to get models", "error", err.Error())
				a.setError(chat.ErrorText(err))
				return
			}
			a.openModelList(models)
		})
	}()
}

func (a *App) openModelList(models []string) {
	a.setStatus("")
	closeList := func() {
		a.pages.RemovePage(modelsPage)
		a.app.SetFocus(a.input)
	}

	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(true).SetTitle("Models")
	for _, m := range models {
		list.AddItem(m, "", 0, nil)
	}
	list.AddItem("Back", "", 'q', closeList)
	list.SetDoneFunc(closeList)

	height := len(models) + 3
	if height > 20 {
		height = 20
	}
	a.pages.AddPage(modelsPage, createModal(list, 50, height), true, true)
	a.app.SetFocus(list)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
