package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// MissingList shows the stars removed from the problem chart.
type MissingList struct {
	container *fyne.Container
	header    *widget.Label
	list      *widget.List
	items     []string
}

func NewMissingList() *MissingList {
	ml := &MissingList{}
	ml.header = widget.NewLabelWithStyle("Removed stars", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ml.list = widget.NewList(
		func() int { return len(ml.items) },
		func() fyne.CanvasObject { return widget.NewLabel("HIP 000000 | mag=0.00") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(ml.items[id])
		},
	)
	ml.container = container.NewBorder(ml.header, nil, nil, nil, ml.list)
	return ml
}

// SetItems replaces the list contents.
func (ml *MissingList) SetItems(items []string) {
	ml.items = items
	if len(items) == 0 {
		ml.header.SetText("Removed stars")
	} else {
		ml.header.SetText(fmt.Sprintf("Removed stars (%d)", len(items)))
	}
	ml.list.Refresh()
}

func (ml *MissingList) Items() []string {
	return ml.items
}

func (ml *MissingList) GetContainer() *fyne.Container {
	return ml.container
}
