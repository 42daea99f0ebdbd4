// Menu handler for application actions
package gui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/SaanidhyaM/node-based-image-processor/internal/io"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

// MenuHandler handles menu actions and file dialogs
type MenuHandler struct {
	window      fyne.Window
	loader      *io.ImageLoader
	logger      *slog.Logger
	defaultName string

	onOpen    func(path string)
	onSave    func(path string)
	onAddNode func(transforms.Kind)
	onRemove  func()
	onReset   func()
}

func NewMenuHandler(window fyne.Window, loader *io.ImageLoader, defaultName string, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		window:      window,
		loader:      loader,
		logger:      logger,
		defaultName: io.OutputPath(defaultName),
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mh.OpenImage),
		fyne.NewMenuItem("Save Image...", mh.SaveImage),
	)

	items := make([]*fyne.MenuItem, 0, len(transforms.Kinds())+3)
	for _, kind := range transforms.Kinds() {
		kind := kind
		items = append(items, fyne.NewMenuItem("Add "+kind.Title(), func() {
			if mh.onAddNode != nil {
				mh.onAddNode(kind)
			}
		}))
	}
	items = append(items,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove Last Node", func() { call(mh.onRemove) }),
		fyne.NewMenuItem("Reset Chain", func() { call(mh.onReset) }),
	)
	nodeMenu := fyne.NewMenu("Nodes", items...)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, nodeMenu, helpMenu)
}

// OpenImage shows the file dialog for choosing the source image.
func (mh *MenuHandler) OpenImage() {
	mh.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		if mh.onOpen != nil {
			mh.onOpen(path)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.loader.FileFilter()))
	fileDialog.Show()
}

// SaveImage shows the file dialog for writing the chain output.
func (mh *MenuHandler) SaveImage() {
	mh.logger.Info("Opening file dialog for image saving")

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		// The encoder writes by path, so release the dialog's handle first.
		_ = writer.Close()

		if mh.onSave != nil {
			mh.onSave(path)
		}
	}, mh.window)

	fileDialog.SetFileName(mh.defaultName)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(mh.loader.FileFilter()))
	fileDialog.Show()
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel("Node-Based Image Processor"),
		widget.NewSeparator(),
		widget.NewLabel("Chain transform nodes between an input image"),
		widget.NewLabel("and an output file with a live preview."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 250))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	mh.logger.Error(title, "error", err)
	dialog.ShowError(err, mh.window)
}

// SetCallbacks wires menu actions to the application
func (mh *MenuHandler) SetCallbacks(onOpen, onSave func(string), onAddNode func(transforms.Kind), onRemove, onReset func()) {
	mh.onOpen = onOpen
	mh.onSave = onSave
	mh.onAddNode = onAddNode
	mh.onRemove = onRemove
	mh.onReset = onReset
}
