package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/bz888/parley/internal/chat"
)

const editPage = "edit"

// openEditor shows the edit box for e, which must already be in edit mode.
func (a *App) openEditor(e *chat.Entry) {
	buf := e.EditBuffer()
	if buf == nil {
		return
	}

	area := tview.NewTextArea()
	area.SetText(buf.OriginalText, true)
	area.SetBorder(true).SetTitle("Edit message")

	save := func() {
		if !a.conv.Editor().SaveEdit(e, area.GetText()) {
			a.setError("Message cannot be empty.")
			a.app.SetFocus(area)
			return
		}
		a.closeEditor()
		a.setStatus("Edit saved.")
	}
	cancel := func() {
		a.conv.Editor().CancelEdit(e, false)
		a.closeEditor()
	}

	saveButton := tview.NewButton("Save").SetSelectedFunc(save)
	cancelButton := tview.NewButton("Cancel").SetSelectedFunc(cancel)
	buttons := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(saveButton, 8, 0, false).
		AddItem(nil, 2, 0, false).
		AddItem(cancelButton, 10, 0, false)

	// two border rows around the text
	height := buf.Rows + 2
	body := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(area, height, 0, true).
		AddItem(buttons, 1, 0, false)
	body.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape:
			cancel()
			return nil
		case event.Key() == tcell.KeyCtrlS,
			event.Key() == tcell.KeyEnter && event.Modifiers()&tcell.ModAlt != 0:
			save()
			return nil
		case event.Key() == tcell.KeyTab:
			switch a.app.GetFocus() {
			case area:
				a.app.SetFocus(saveButton)
			case saveButton:
				a.app.SetFocus(cancelButton)
			default:
				a.app.SetFocus(area)
			}
			return nil
		}
		return event
	})

	a.pages.AddPage(editPage, createModal(body, 70, height+1), true, true)
	a.app.SetFocus(area)
}

func (a *App) closeEditor() {
	a.pages.RemovePage(editPage)
	a.app.SetFocus(a.input)
}

func createModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
