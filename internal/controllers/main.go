package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"missingstar/internal/logger"
	"missingstar/internal/models"
	"missingstar/internal/services"
	"missingstar/internal/views"
)

const generateTimeout = 2 * time.Minute

// MainController turns form submissions into generation requests and pushes results
// back to the view.
type MainController struct {
	generator *services.Generator
	exporter  *services.ExportService
	repo      *models.ResultRepository
	limits    models.Limits
	logger    logger.Logger

	mainView *views.MainView

	mu         sync.Mutex
	ctx        context.Context
	cancelFunc context.CancelFunc
	running    sync.WaitGroup
}

func NewMainController(
	ctx context.Context,
	generator *services.Generator,
	exporter *services.ExportService,
	repo *models.ResultRepository,
	limits models.Limits,
	log logger.Logger,
) *MainController {
	return &MainController{
		ctx:       ctx,
		generator: generator,
		exporter:  exporter,
		repo:      repo,
		limits:    limits,
		logger:    log,
	}
}

// SetMainView associates the main view with this controller
func (mc *MainController) SetMainView(view *views.MainView) {
	mc.mainView = view
	view.SetGenerateHandler(mc.Generate)
	view.SetSaveHandler(mc.SaveCharts)
}

// Generate validates the form and starts rendering in the background. It must be
// called on the UI goroutine.
func (mc *MainController) Generate() {
	req, err := models.ParseRequest(mc.mainView.Input(), mc.limits)
	if err != nil {
		mc.logger.Debug("MainController", "request rejected", map[string]interface{}{"error": err.Error()})
		mc.mainView.ShowFormError(models.UserMessage(err))
		return
	}

	mc.mu.Lock()
	if mc.cancelFunc != nil {
		mc.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(mc.ctx, generateTimeout)
	mc.cancelFunc = cancel
	mc.running.Add(1)
	mc.mu.Unlock()

	mc.mainView.SetBusy(true)
	go mc.performGeneration(ctx, req)
}

func (mc *MainController) performGeneration(ctx context.Context, req models.Request) {
	defer mc.running.Done()

	res, err := mc.generator.Generate(ctx, req)

	mc.mu.Lock()
	mc.cancelFunc()
	mc.cancelFunc = nil
	mc.mu.Unlock()

	fyne.Do(func() {
		mc.mainView.SetBusy(false)
		switch {
		case err == nil:
			mc.mainView.ShowResult(res)
		case errors.Is(err, context.Canceled):
			mc.mainView.UpdateStatus("Cancelled")
		case models.IsKind(err, models.KindInvalidInput), models.IsKind(err, models.KindInsufficientStars):
			mc.mainView.ShowFormError(models.UserMessage(err))
		default:
			mc.logger.Error("MainController", err, map[string]interface{}{"operation": "generate"})
			mc.mainView.ShowFormError(models.UserMessage(err))
		}
	})
}

// Cancel aborts a running generation.
func (mc *MainController) Cancel() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.cancelFunc != nil {
		mc.cancelFunc()
	}
}

// SaveCharts asks for a folder and copies the latest charts into it.
func (mc *MainController) SaveCharts() {
	res := mc.repo.Latest()
	if res == nil {
		mc.mainView.ShowError(fmt.Errorf("no charts generated yet"))
		return
	}
	mc.mainView.ShowFolderDialog(func(dir fyne.ListableURI, err error) {
		if err != nil {
			mc.mainView.ShowError(err)
			return
		}
		if dir == nil {
			return
		}
		go mc.saveTo(res, dir.Path())
	})
}

func (mc *MainController) saveTo(res *models.Result, dir string) {
	written, err := mc.exporter.SaveCharts(mc.ctx, res, dir)
	fyne.Do(func() {
		if err != nil {
			mc.logger.Error("MainController", err, map[string]interface{}{"operation": "save"})
			mc.mainView.ShowError(err)
			return
		}
		mc.mainView.UpdateStatus(fmt.Sprintf("Saved %d charts to %s", len(written), dir))
	})
}

// Shutdown cancels a running generation and waits for it to finish.
func (mc *MainController) Shutdown() {
	mc.Cancel()
	mc.running.Wait()
}
