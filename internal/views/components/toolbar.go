package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the generate and save actions.
type Toolbar struct {
	container      *fyne.Container
	generateButton *widget.Button
	saveButton     *widget.Button
	seedLabel      *widget.Label

	generateHandler func()
	saveHandler     func()
}

func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents() {
	t.generateButton = widget.NewButtonWithIcon("Generate charts", theme.MediaPlayIcon(), func() {
		if t.generateHandler != nil {
			t.generateHandler()
		}
	})
	t.generateButton.Importance = widget.HighImportance

	t.saveButton = widget.NewButtonWithIcon("Save charts...", theme.DocumentSaveIcon(), func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Disable()

	t.seedLabel = widget.NewLabel("")
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewVBox(
		container.NewGridWithColumns(2, t.generateButton, t.saveButton),
		t.seedLabel,
	)
}

func (t *Toolbar) SetGenerateHandler(handler func()) {
	t.generateHandler = handler
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

// SetBusy disables generation while a request runs.
func (t *Toolbar) SetBusy(busy bool) {
	if busy {
		t.generateButton.Disable()
		t.saveButton.Disable()
	} else {
		t.generateButton.Enable()
	}
}

func (t *Toolbar) EnableSave(enabled bool) {
	if enabled {
		t.saveButton.Enable()
	} else {
		t.saveButton.Disable()
	}
}

func (t *Toolbar) SetSeed(seed uint64) {
	t.seedLabel.SetText(fmt.Sprintf("Seed: %d", seed))
}

func (t *Toolbar) GenerateButton() *widget.Button {
	return t.generateButton
}

func (t *Toolbar) SaveButton() *widget.Button {
	return t.saveButton
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
