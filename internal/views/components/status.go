package components

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"missingstar/internal/models"
)

// StatusBar displays application status and information
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	outputInfo  *widget.Label
	memoryInfo  *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.outputInfo = widget.NewLabel("No charts yet")
	sb.memoryInfo = widget.NewLabel("Memory: --")
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewHBox(
		sb.statusLabel,
		widget.NewSeparator(),
		sb.outputInfo,
		widget.NewSeparator(),
		sb.memoryInfo,
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetCharts lists the exported files with their sizes.
func (sb *StatusBar) SetCharts(problem, answer models.ChartImage) {
	sb.outputInfo.SetText(fmt.Sprintf("%s (%s), %s (%s) in %s",
		filepath.Base(problem.Path), humanize.Bytes(uint64(problem.FileSize)),
		filepath.Base(answer.Path), humanize.Bytes(uint64(answer.FileSize)),
		filepath.Dir(problem.Path),
	))
}

func (sb *StatusBar) GetOutputInfo() string {
	return sb.outputInfo.Text
}

func (sb *StatusBar) SetMemoryInfo(canvases, heap uint64) {
	sb.memoryInfo.SetText(fmt.Sprintf("Memory: canvases %s, heap %s",
		humanize.Bytes(canvases), humanize.Bytes(heap)))
}

func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText("Ready")
	sb.outputInfo.SetText("No charts yet")
	sb.memoryInfo.SetText("Memory: --")
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

// ProgressBar shows an activity indicator while charts render.
type ProgressBar struct {
	container   *fyne.Container
	progressBar *widget.ProgressBarInfinite
	stageLabel  *widget.Label
	visible     bool
}

func NewProgressBar() *ProgressBar {
	pb := &ProgressBar{}
	pb.progressBar = widget.NewProgressBarInfinite()
	pb.progressBar.Stop()
	pb.stageLabel = widget.NewLabel("")
	pb.container = container.NewVBox(pb.stageLabel, pb.progressBar)
	pb.container.Hide()
	return pb
}

func (pb *ProgressBar) SetStage(stage string) {
	pb.stageLabel.SetText(stage)
}

func (pb *ProgressBar) SetVisible(visible bool) {
	pb.visible = visible
	if visible {
		pb.container.Show()
		pb.progressBar.Start()
	} else {
		pb.progressBar.Stop()
		pb.container.Hide()
	}
}

func (pb *ProgressBar) IsVisible() bool {
	return pb.visible
}

func (pb *ProgressBar) GetContainer() *fyne.Container {
	return pb.container
}
