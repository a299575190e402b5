package views

import (
	"image"
	"time"

	"edgevision/internal/processing"
	"edgevision/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// MainView lays out the viewer window. Setters must run on the UI goroutine;
// callers off it wrap them in fyne.Do.
type MainView struct {
	window       fyne.Window
	toolbar      *components.Toolbar
	imageDisplay *components.ImageDisplay
	paramPanel   *components.ParameterPanel
	statusBar    *components.StatusBar
}

func NewMainView(window fyne.Window, alg processing.Algorithm, params processing.Parameters) *MainView {
	mv := &MainView{
		window:       window,
		toolbar:      components.NewToolbar(alg),
		imageDisplay: components.NewImageDisplay(),
		paramPanel:   components.NewParameterPanel(params),
		statusBar:    components.NewStatusBar(),
	}
	mv.paramPanel.SetAlgorithm(alg)

	content := container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		container.NewVScroll(mv.paramPanel.GetContainer()),
		mv.imageDisplay.GetContainer(),
	)
	window.SetContent(content)
	return mv
}

func (mv *MainView) SetLoadImageHandler(handler func()) {
	mv.toolbar.SetLoadHandler(handler)
}

func (mv *MainView) SetSaveImageHandler(handler func()) {
	mv.toolbar.SetSaveHandler(handler)
}

func (mv *MainView) SetAlgorithmChangeHandler(handler func(processing.Algorithm)) {
	mv.toolbar.SetAlgorithmChangeHandler(func(alg processing.Algorithm) {
		mv.paramPanel.SetAlgorithm(alg)
		handler(alg)
	})
}

func (mv *MainView) SetParameterChangeHandler(handler func(processing.Parameters)) {
	mv.paramPanel.SetChangeHandler(handler)
}

func (mv *MainView) SetSourceImage(img image.Image, width, height int, format string) {
	mv.imageDisplay.SetSource(img)
	mv.imageDisplay.SetEdges(nil)
	mv.statusBar.SetImageInfo(width, height, format)
	mv.toolbar.SetSaveEnabled(false)
}

func (mv *MainView) SetEdgeImage(img image.Image, took time.Duration) {
	mv.imageDisplay.SetEdges(img)
	mv.statusBar.SetLastRun(took)
	mv.toolbar.SetSaveEnabled(img != nil)
}

func (mv *MainView) UpdateStatus(status string) {
	mv.statusBar.SetStatus(status)
}

func (mv *MainView) ShowError(err error) {
	dialog.ShowError(err, mv.window)
}

func (mv *MainView) ShowFileDialog(callback func(fyne.URIReadCloser, error)) {
	d := dialog.NewFileOpen(callback, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp", ".gif"}))
	d.Show()
}

func (mv *MainView) ShowSaveDialog(callback func(fyne.URIWriteCloser, error)) {
	d := dialog.NewFileSave(callback, mv.window)
	d.SetFileName("edges.png")
	d.Show()
}

func (mv *MainView) ShowConfirm(title, message string, callback func(bool)) {
	dialog.ShowConfirm(title, message, callback, mv.window)
}

func (mv *MainView) Show() {
	mv.window.Show()
}
