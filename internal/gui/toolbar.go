// Top toolbar: file actions and chain editing
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

type Toolbar struct {
	container *fyne.Container

	openBtn    *widget.Button
	saveBtn    *widget.Button
	kindSelect *widget.Select
	addBtn     *widget.Button
	removeBtn  *widget.Button
	resetBtn   *widget.Button

	// Callbacks
	onOpen    func()
	onSave    func()
	onAddNode func(transforms.Kind)
	onRemove  func()
	onReset   func()
}

func NewToolbar() *Toolbar {
	tb := &Toolbar{}
	tb.initializeUI()
	return tb
}

func (tb *Toolbar) initializeUI() {
	tb.openBtn = widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() { call(tb.onOpen) })
	tb.openBtn.Importance = widget.HighImportance

	tb.saveBtn = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() { call(tb.onSave) })
	tb.saveBtn.Disable()

	titles := make([]string, 0, len(transforms.Kinds()))
	for _, k := range transforms.Kinds() {
		titles = append(titles, k.Title())
	}
	tb.kindSelect = widget.NewSelect(titles, nil)
	tb.kindSelect.SetSelected(transforms.KindBrightnessContrast.Title())

	tb.addBtn = widget.NewButtonWithIcon("Add Node", theme.ContentAddIcon(), tb.addSelected)

	tb.removeBtn = widget.NewButtonWithIcon("Remove Last", theme.ContentRemoveIcon(), func() { call(tb.onRemove) })
	tb.removeBtn.Disable()

	tb.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), func() { call(tb.onReset) })

	tb.container = container.NewHBox(
		tb.openBtn,
		tb.saveBtn,
		widget.NewSeparator(),
		tb.kindSelect,
		tb.addBtn,
		tb.removeBtn,
		widget.NewSeparator(),
		tb.resetBtn,
	)
}

func (tb *Toolbar) addSelected() {
	kind, err := transforms.ParseKind(tb.kindSelect.Selected)
	if err != nil || tb.onAddNode == nil {
		return
	}
	tb.onAddNode(kind)
}

func (tb *Toolbar) GetContainer() fyne.CanvasObject {
	return tb.container
}

// SetCallbacks wires the toolbar actions
func (tb *Toolbar) SetCallbacks(onOpen, onSave func(), onAddNode func(transforms.Kind), onRemove, onReset func()) {
	tb.onOpen = onOpen
	tb.onSave = onSave
	tb.onAddNode = onAddNode
	tb.onRemove = onRemove
	tb.onReset = onReset
}

// UpdateState enables actions that need an image or a node.
func (tb *Toolbar) UpdateState(hasOutput bool, nodeCount int) {
	setEnabled(tb.saveBtn, hasOutput)
	setEnabled(tb.removeBtn, nodeCount > 0)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
