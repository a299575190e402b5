package components

import (
	"edgevision/internal/processing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds file actions and the algorithm picker.
type Toolbar struct {
	container       *fyne.Container
	loadButton      *widget.Button
	saveButton      *widget.Button
	algorithmSelect *widget.Select

	loadHandler            func()
	saveHandler            func()
	algorithmChangeHandler func(processing.Algorithm)
}

func NewToolbar(initial processing.Algorithm) *Toolbar {
	t := &Toolbar{}

	t.loadButton = widget.NewButton("Load Image", func() {
		if t.loadHandler != nil {
			t.loadHandler()
		}
	})
	t.loadButton.Importance = widget.HighImportance

	t.saveButton = widget.NewButton("Save Result", func() {
		if t.saveHandler != nil {
			t.saveHandler()
		}
	})
	t.saveButton.Importance = widget.HighImportance
	t.saveButton.Disable()

	names := make([]string, 0, len(processing.Algorithms()))
	for _, alg := range processing.Algorithms() {
		names = append(names, alg.String())
	}
	t.algorithmSelect = widget.NewSelect(names, func(name string) {
		if t.algorithmChangeHandler != nil {
			t.algorithmChangeHandler(processing.ParseAlgorithm(name))
		}
	})
	t.algorithmSelect.SetSelected(initial.String())

	t.container = container.NewHBox(
		t.loadButton,
		t.saveButton,
		widget.NewSeparator(),
		widget.NewLabel("Algorithm"),
		t.algorithmSelect,
	)
	return t
}

func (t *Toolbar) SetLoadHandler(handler func()) {
	t.loadHandler = handler
}

func (t *Toolbar) SetSaveHandler(handler func()) {
	t.saveHandler = handler
}

func (t *Toolbar) SetAlgorithmChangeHandler(handler func(processing.Algorithm)) {
	t.algorithmChangeHandler = handler
}

func (t *Toolbar) SetSaveEnabled(enabled bool) {
	if enabled {
		t.saveButton.Enable()
	} else {
		t.saveButton.Disable()
	}
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
