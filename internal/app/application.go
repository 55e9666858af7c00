package app

import (
	"runtime"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"missingstar/internal/controllers"
	"missingstar/internal/views"
	"missingstar/internal/views/components"
)

const (
	windowWidth  = 1400
	windowHeight = 860
)

// Application is the desktop front end.
type Application struct {
	core       *Core
	fyneApp    fyne.App
	window     fyne.Window
	view       *views.MainView
	controller *controllers.MainController
}

func NewApplication(core *Core) *Application {
	fyneapp.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := fyneapp.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(windowWidth, windowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	cfg := core.Config
	view := views.NewMainView(window, components.FormDefaults{
		Now:          time.Now(),
		Timezone:     cfg.Timezone,
		Latitude:     cfg.Latitude,
		Longitude:    cfg.Longitude,
		MaxMagnitude: cfg.DefaultN,
		Count:        cfg.DefaultK,
		MaxPlotMag:   cfg.MaxPlotMag,
	})
	controller := controllers.NewMainController(
		core.Context(), core.Generator, core.Exporter, core.Results, core.Limits(), core.Logger,
	)
	controller.SetMainView(view)
	core.Shutdown.Register("controller", controller)

	a := &Application{
		core:       core,
		fyneApp:    fyneApp,
		window:     window,
		view:       view,
		controller: controller,
	}
	a.setupMenus()
	a.setupWindowEvents()
	return a
}

// Run shows the window and blocks until the application quits.
func (a *Application) Run() error {
	a.core.Logger.Info("Application", "starting UI", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"output_dir": a.core.Config.OutputDir,
	})

	go func() {
		if err := a.core.WarmUp(a.core.Context()); err != nil {
			a.core.Logger.Error("Application", err, map[string]interface{}{"operation": "catalog load"})
			fyne.Do(func() { a.view.ShowError(err) })
		}
	}()
	go a.startPerformanceMonitoring()

	a.core.Shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})
	a.window.ShowAndRun()
	a.core.Shutdown.Shutdown()
	return nil
}

func (a *Application) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Generate charts", a.controller.Generate),
		fyne.NewMenuItem("Save charts...", a.controller.SaveCharts),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			a.view.ShowAboutDialog(AppName, AppVersion)
		}),
	)
	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (a *Application) setupWindowEvents() {
	a.window.SetOnClosed(func() {
		a.core.Logger.Info("Application", "window closed", nil)
		a.controller.Cancel()
	})
}

func (a *Application) startPerformanceMonitoring() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.logPerformanceMetrics()
		case <-a.core.Context().Done():
			return
		}
	}
}

func (a *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	canvas := a.core.Canvases.Stats()
	results := a.core.Results.Stats()
	live := canvas.TotalAllocated - canvas.TotalReleased

	a.core.Logger.Debug("Application", "performance metrics", map[string]interface{}{
		"go_memory_mb":    memStats.Alloc / 1024 / 1024,
		"go_gc_runs":      memStats.NumGC,
		"canvases_active": canvas.ActiveMats,
		"canvas_hits":     canvas.PoolHits,
		"charts_made":     results.Generated,
		"avg_generate_ms": results.AverageDuration.Milliseconds(),
		"goroutine_count": runtime.NumGoroutine(),
	})

	for stage, avg := range a.core.Generator.Timings().Averages() {
		a.core.Logger.Debug("Application", "stage timing", map[string]interface{}{
			"stage":  stage,
			"avg_ms": avg.Milliseconds(),
		})
	}

	fyne.Do(func() {
		a.view.SetMemoryInfo(uint64(live), memStats.Alloc)
	})
}
