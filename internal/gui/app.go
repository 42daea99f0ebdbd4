// Main application window wiring the node graph to the widgets
package gui

import (
	"context"
	"errors"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/SaanidhyaM/node-based-image-processor/internal/config"
	"github.com/SaanidhyaM/node-based-image-processor/internal/graph"
	"github.com/SaanidhyaM/node-based-image-processor/internal/io"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

const windowTitle = "Node-Based Image Processor"

// Application represents the main window. Every graph call happens on the
// Fyne UI goroutine.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *slog.Logger
	cfg    config.Config

	// Core components
	graph  *graph.Graph
	loader *io.ImageLoader

	// GUI components
	canvas       *ImageCanvas
	toolbar      *Toolbar
	controlPanel *ControlPanel
	menuHandler  *MenuHandler
	statusLabel  *widget.Label

	mainContent *container.Split
}

func NewApplication(app fyne.App, g *graph.Graph, loader *io.ImageLoader, cfg config.Config, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}

	window := app.NewWindow(windowTitle)
	window.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))
	window.CenterOnScreen()

	a := &Application{
		app:    app,
		window: window,
		logger: logger,
		cfg:    cfg,
		graph:  g,
		loader: loader,
	}

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()
	a.refresh()

	return a
}

func (a *Application) initializeGUI() {
	a.canvas = NewImageCanvas(a.cfg.Preview.MaxDimension, a.logger)
	a.toolbar = NewToolbar()
	a.controlPanel = NewControlPanel(a.logger)
	a.menuHandler = NewMenuHandler(a.window, a.loader, a.cfg.Output.DefaultName, a.logger)
	a.statusLabel = widget.NewLabel("Open an image to start")
}

func (a *Application) setupLayout() {
	top := container.NewVBox(a.toolbar.GetContainer(), widget.NewSeparator())

	a.mainContent = container.NewHSplit(
		widget.NewCard("Chain", "", a.controlPanel.GetContainer()),
		a.canvas.GetContainer(),
	)
	a.mainContent.SetOffset(0.28)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(container.NewBorder(top, a.statusLabel, nil, nil, a.mainContent))
}

func (a *Application) setupCallbacks() {
	a.graph.OnOutputUpdated(a.onOutputUpdated)

	a.toolbar.SetCallbacks(a.menuHandler.OpenImage, a.menuHandler.SaveImage, a.addNode, a.removeLast, a.reset)
	a.menuHandler.SetCallbacks(a.openImage, a.saveImage, a.addNode, a.removeLast, a.reset)
	a.controlPanel.SetCallbacks(a.setParameter)
}

// ShowAndRun shows the window and runs the Fyne event loop.
func (a *Application) ShowAndRun() {
	a.window.ShowAndRun()
}

// Window returns the main window.
func (a *Application) Window() fyne.Window {
	return a.window
}

// OpenImage loads path as the new source image.
func (a *Application) OpenImage(path string) error {
	if err := a.graph.LoadSource(context.Background(), path); err != nil {
		return err
	}
	a.canvas.SetSource(a.graph.Source(), a.graph.Metadata())
	a.rebuild()
	a.setStatus("Loaded " + path)
	return nil
}

// SaveImage writes the chain output to path.
func (a *Application) SaveImage(path string) error {
	if err := a.graph.Save(context.Background(), path); err != nil {
		return err
	}
	a.setStatus("Saved " + path)
	return nil
}

// AddNode appends a node of kind to the chain.
func (a *Application) AddNode(kind transforms.Kind) error {
	_, err := a.graph.AddNode(context.Background(), kind)
	if errors.Is(err, graph.ErrDuplicateSplitter) {
		return err
	}
	a.rebuild()
	if err != nil {
		return err
	}
	a.setStatus("Added " + kind.Title())
	return nil
}

// RemoveLast drops the tail node.
func (a *Application) RemoveLast() error {
	if err := a.graph.RemoveLast(context.Background()); err != nil {
		return err
	}
	a.rebuild()
	a.setStatus("Removed last node")
	return nil
}

// Reset drops extra nodes and restores defaults.
func (a *Application) Reset() error {
	err := a.graph.Reset(context.Background())
	a.rebuild()
	if err != nil {
		return err
	}
	a.setStatus("Chain reset")
	return nil
}

// SetParameter updates one node parameter.
func (a *Application) SetParameter(nodeID, name string, value int) error {
	err := a.graph.SetParameter(context.Background(), nodeID, name, value)
	a.controlPanel.RefreshStatus(a.graph.Nodes())
	return err
}

func (a *Application) openImage(path string) { a.report("Failed to Load Image", a.OpenImage(path)) }

func (a *Application) saveImage(path string) { a.report("Failed to Save Image", a.SaveImage(path)) }

func (a *Application) addNode(kind transforms.Kind) {
	a.report("Failed to Add Node", a.AddNode(kind))
}

func (a *Application) removeLast() { a.report("Failed to Remove Node", a.RemoveLast()) }

func (a *Application) reset() { a.report("Failed to Reset", a.Reset()) }

func (a *Application) setParameter(nodeID, name string, value int) {
	a.report("Failed to Update Parameter", a.SetParameter(nodeID, name, value))
}

func (a *Application) onOutputUpdated() {
	a.refresh()
}

// rebuild recreates node cards after a structural change.
func (a *Application) rebuild() {
	a.controlPanel.Rebuild(a.graph.Nodes(), a.graph.Input)
	a.refresh()
}

func (a *Application) refresh() {
	out := a.graph.Output()
	a.canvas.SetOutput(a.graph.Source(), out)
	a.toolbar.UpdateState(out != nil, a.graph.Len())
}

func (a *Application) setStatus(msg string) {
	a.statusLabel.SetText(msg)
}

func (a *Application) report(title string, err error) {
	if err == nil {
		return
	}
	a.showError(title, err)
}

func (a *Application) showError(title string, err error) {
	a.logger.Error(title, "error", err)
	a.setStatus(title + ": " + err.Error())
	dialog.ShowError(err, a.window)
}
