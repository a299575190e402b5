package components

import (
	"fmt"

	"edgevision/internal/processing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	maxThreshold  = 500
	maxKernelSize = 31
)

// ParameterPanel edits processing.Parameters. Kernel sliders step by two so
// they only ever offer odd sizes.
type ParameterPanel struct {
	container *fyne.Container
	params    processing.Parameters

	blurCheck     *widget.Check
	blurKernel    *widget.Slider
	threshold1    *widget.Slider
	threshold2    *widget.Slider
	kernelSize    *widget.Slider
	invertCheck   *widget.Check
	valueLabels   map[string]*widget.Label
	changeHandler func(processing.Parameters)
}

func NewParameterPanel(initial processing.Parameters) *ParameterPanel {
	p := &ParameterPanel{
		params:      initial.Normalize(),
		valueLabels: make(map[string]*widget.Label),
	}

	p.blurCheck = widget.NewCheck("Gaussian blur", func(on bool) {
		p.params.Blur = on
		p.blurKernel.Disable()
		if on {
			p.blurKernel.Enable()
		}
		p.changed()
	})

	p.blurKernel = p.slider("blur_kernel", 1, maxKernelSize, 2, float64(p.params.BlurKernel), func(v int) {
		p.params.BlurKernel = v
	})
	p.threshold1 = p.slider("threshold1", 0, maxThreshold, 1, float64(p.params.Threshold1), func(v int) {
		p.params.Threshold1 = v
	})
	p.threshold2 = p.slider("threshold2", 0, maxThreshold, 1, float64(p.params.Threshold2), func(v int) {
		p.params.Threshold2 = v
	})
	p.kernelSize = p.slider("ksize", 1, maxKernelSize, 2, float64(p.params.KSize), func(v int) {
		p.params.KSize = v
	})

	p.invertCheck = widget.NewCheck("Invert", func(on bool) {
		p.params.Invert = on
		p.changed()
	})

	p.blurCheck.SetChecked(p.params.Blur)
	p.invertCheck.SetChecked(p.params.Invert)
	if !p.params.Blur {
		p.blurKernel.Disable()
	}

	p.container = container.NewVBox(
		widget.NewLabelWithStyle("Parameters", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.blurCheck,
		p.row("Blur kernel", "blur_kernel", p.blurKernel),
		p.row("Threshold 1", "threshold1", p.threshold1),
		p.row("Threshold 2", "threshold2", p.threshold2),
		p.row("Kernel size", "ksize", p.kernelSize),
		p.invertCheck,
	)
	return p
}

func (p *ParameterPanel) slider(key string, min, max, step, value float64, set func(int)) *widget.Slider {
	label := widget.NewLabel(fmt.Sprintf("%.0f", value))
	p.valueLabels[key] = label

	s := widget.NewSlider(min, max)
	s.Step = step
	s.Value = value
	s.OnChangeEnded = func(v float64) {
		label.SetText(fmt.Sprintf("%.0f", v))
		set(int(v))
		p.changed()
	}
	return s
}

func (p *ParameterPanel) row(title, key string, s *widget.Slider) fyne.CanvasObject {
	return container.NewBorder(nil, nil, widget.NewLabel(title), p.valueLabels[key], s)
}

func (p *ParameterPanel) changed() {
	if p.changeHandler != nil {
		p.changeHandler(p.params)
	}
}

// SetAlgorithm enables only the controls the algorithm reads.
func (p *ParameterPanel) SetAlgorithm(alg processing.Algorithm) {
	if alg == processing.Canny {
		p.threshold1.Enable()
		p.threshold2.Enable()
	} else {
		p.threshold1.Disable()
		p.threshold2.Disable()
	}
	if alg.UsesKernelSize() {
		p.kernelSize.Enable()
	} else {
		p.kernelSize.Disable()
	}
}

func (p *ParameterPanel) SetChangeHandler(handler func(processing.Parameters)) {
	p.changeHandler = handler
}

func (p *ParameterPanel) Parameters() processing.Parameters {
	return p.params
}

func (p *ParameterPanel) GetContainer() *fyne.Container {
	return p.container
}
