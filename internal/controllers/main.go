package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"edgevision/internal/logger"
	"edgevision/internal/processing"
	"edgevision/internal/views"

	"fyne.io/fyne/v2"
)

const component = "Controller"

// MainController connects the view to a Session. Pipeline runs happen off
// the UI goroutine; only the newest run may update the window.
type MainController struct {
	session *Session
	view    *views.MainView
	logger  logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewMainController(session *Session, view *views.MainView, log logger.Logger) *MainController {
	mc := &MainController{
		session: session,
		view:    view,
		logger:  log,
	}

	view.SetLoadImageHandler(mc.LoadImage)
	view.SetSaveImageHandler(mc.SaveImage)
	view.SetAlgorithmChangeHandler(mc.ChangeAlgorithm)
	view.SetParameterChangeHandler(mc.UpdateParameters)

	return mc
}

func (mc *MainController) LoadImage() {
	mc.view.ShowFileDialog(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mc.handleError("open dialog", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			mc.handleError("read image", err)
			return
		}

		preview, info, err := mc.session.Load(data)
		if err != nil {
			mc.handleError("load image", err)
			return
		}

		mc.logger.Info(component, "image loaded", map[string]interface{}{
			"uri":    reader.URI().String(),
			"format": info.Format,
			"width":  info.Width,
			"height": info.Height,
		})

		mc.view.SetSourceImage(preview, info.Width, info.Height, info.Format)
		mc.view.UpdateStatus("Loaded " + reader.URI().Name())
		mc.reprocess()
	})
}

func (mc *MainController) SaveImage() {
	result := mc.session.Result()
	if result == nil {
		mc.handleError("save image", errors.New("nothing to save yet"))
		return
	}

	mc.view.ShowSaveDialog(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mc.handleError("save dialog", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if _, err := writer.Write(result); err != nil {
			mc.handleError("write image", err)
			return
		}
		mc.view.UpdateStatus("Saved " + writer.URI().Name())
	})
}

func (mc *MainController) ChangeAlgorithm(alg processing.Algorithm) {
	mc.session.SetAlgorithm(alg)
	mc.reprocess()
}

func (mc *MainController) UpdateParameters(params processing.Parameters) {
	mc.session.SetParameters(params)
	mc.reprocess()
}

// reprocess cancels any run in flight and starts a new one.
func (mc *MainController) reprocess() {
	if !mc.session.HasImage() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc.mu.Lock()
	if mc.cancel != nil {
		mc.cancel()
	}
	mc.cancel = cancel
	mc.mu.Unlock()

	alg, _ := mc.session.Settings()
	mc.view.UpdateStatus(fmt.Sprintf("Running %s...", alg))

	go func() {
		img, took, err := mc.session.Process(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		fyne.Do(func() {
			if err != nil {
				mc.handleError("process image", err)
				return
			}
			mc.view.SetEdgeImage(img, took)
			mc.view.UpdateStatus(fmt.Sprintf("%s done", alg))
		})
	}()
}

// Shutdown cancels any run in flight.
func (mc *MainController) Shutdown() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.cancel != nil {
		mc.cancel()
		mc.cancel = nil
	}
}

func (mc *MainController) handleError(op string, err error) {
	mc.logger.Error(component, err, map[string]interface{}{"op": op})
	mc.view.UpdateStatus("Error: " + op)
	mc.view.ShowError(err)
}
