// Node chain panel with one parameter card per node
package gui

import (
	"fmt"
	"log/slog"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/SaanidhyaM/node-based-image-processor/internal/graph"
	"github.com/SaanidhyaM/node-based-image-processor/internal/imaging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/transforms"
)

// ControlPanel lists the chain from source to sink and renders a widget
// for every declared parameter.
type ControlPanel struct {
	logger *slog.Logger

	container *fyne.Container
	nodeList  *fyne.Container
	cards     map[string]*widget.Card

	onParameterChanged func(nodeID, name string, value int)
}

func NewControlPanel(logger *slog.Logger) *ControlPanel {
	panel := &ControlPanel{
		logger: logger,
		cards:  make(map[string]*widget.Card),
	}
	panel.initializeUI()
	return panel
}

func (cp *ControlPanel) initializeUI() {
	cp.nodeList = container.NewVBox()
	cp.container = container.NewBorder(nil, nil, nil, nil, container.NewVScroll(cp.nodeList))
	cp.Rebuild(nil, nil)
}

func (cp *ControlPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}

// SetCallbacks sets the parameter change callback
func (cp *ControlPanel) SetCallbacks(onParameterChanged func(nodeID, name string, value int)) {
	cp.onParameterChanged = onParameterChanged
}

// Rebuild recreates every node card. inputOf returns the buffer a node
// currently reads, used to narrow the channel splitter's options.
func (cp *ControlPanel) Rebuild(nodes []*graph.Node, inputOf func(id string) *imaging.Buffer) {
	cp.nodeList.RemoveAll()
	cp.cards = make(map[string]*widget.Card, len(nodes))

	cp.nodeList.Add(widget.NewCard("Input", "Source image", nil))

	for i, node := range nodes {
		var input *imaging.Buffer
		if inputOf != nil {
			input = inputOf(node.ID())
		}
		card := widget.NewCard(fmt.Sprintf("%d. %s", i+1, node.Name()), outputStatus(node), cp.parameterForm(node, input))
		cp.cards[node.ID()] = card
		cp.nodeList.Add(card)
	}

	cp.nodeList.Add(widget.NewCard("Output", "Save via File > Save Image", nil))
	cp.nodeList.Refresh()
}

// RefreshStatus updates the per-node output status without rebuilding widgets.
func (cp *ControlPanel) RefreshStatus(nodes []*graph.Node) {
	for _, node := range nodes {
		if card, ok := cp.cards[node.ID()]; ok {
			card.SetSubTitle(outputStatus(node))
		}
	}
}

// NodeCount returns how many node cards are shown.
func (cp *ControlPanel) NodeCount() int {
	return len(cp.cards)
}

func outputStatus(node *graph.Node) string {
	if out := node.Output(); out != nil {
		return "Output " + out.String()
	}
	return "No output yet"
}

func (cp *ControlPanel) parameterForm(node *graph.Node, input *imaging.Buffer) fyne.CanvasObject {
	infos := node.Parameters()
	if len(infos) == 0 {
		return widget.NewLabel("No parameters")
	}

	form := container.NewVBox()
	for _, info := range infos {
		cp.createParameterWidget(form, node, info, input)
	}
	return form
}

func (cp *ControlPanel) createParameterWidget(form *fyne.Container, node *graph.Node, info transforms.ParameterInfo, input *imaging.Buffer) {
	current, _ := node.Param(info.Name)
	nodeID := node.ID()
	form.Add(widget.NewLabel(info.Name + ":"))

	switch info.Type {
	case transforms.ParamInt:
		slider := widget.NewSlider(float64(info.Min), float64(info.Max))
		slider.Step = 1
		if info.Odd {
			slider.Step = 2
		}
		slider.SetValue(float64(current))

		valueLabel := widget.NewLabel(info.Format(current))
		last := current
		slider.OnChanged = func(value float64) {
			v := info.Clamp(int(math.Round(value)))
			if v == last {
				return
			}
			last = v
			valueLabel.SetText(info.Format(v))
			cp.parameterChanged(nodeID, info.Name, v)
		}
		form.Add(container.NewBorder(nil, nil, nil, valueLabel, slider))

	case transforms.ParamBool:
		check := widget.NewCheck("", nil)
		check.SetChecked(current != 0)
		check.OnChanged = func(checked bool) {
			v := 0
			if checked {
				v = 1
			}
			cp.parameterChanged(nodeID, info.Name, v)
		}
		form.Add(check)

	case transforms.ParamEnum:
		options := info.Options
		if s, ok := node.Transform().(*transforms.ChannelSplitter); ok {
			options = s.Available(input)
		}
		selectWidget := widget.NewSelect(options, nil)
		selectWidget.SetSelected(info.Format(current))
		selectWidget.OnChanged = func(selected string) {
			v, err := info.Parse(selected)
			if err != nil {
				cp.logger.Error("Invalid option selected", "parameter", info.Name, "option", selected)
				return
			}
			cp.parameterChanged(nodeID, info.Name, v)
		}
		form.Add(selectWidget)
	}

	if info.Description != "" {
		desc := widget.NewLabel(info.Description)
		desc.Wrapping = fyne.TextWrapWord
		form.Add(desc)
	}
}

func (cp *ControlPanel) parameterChanged(nodeID, name string, value int) {
	cp.logger.Debug("Parameter widget changed", "node_id", nodeID, "parameter", name, "value", value)
	if cp.onParameterChanged != nil {
		cp.onParameterChanged(nodeID, name, value)
	}
}
