package views

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"missingstar/internal/models"
	"missingstar/internal/views/components"
)

// MainView is the single application window: inputs on the left, charts in the center.
// Its methods must run on the UI goroutine; controllers wrap calls in fyne.Do.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	form          *components.InputForm
	toolbar       *components.Toolbar
	imageDisplay  *components.ImageDisplay
	missingList   *components.MissingList
	statusBar     *components.StatusBar
	progressBar   *components.ProgressBar
}

func NewMainView(window fyne.Window, defaults components.FormDefaults) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents(defaults)
	view.buildLayout()

	return view
}

func (mv *MainView) initializeComponents(defaults components.FormDefaults) {
	mv.form = components.NewInputForm(defaults)
	mv.toolbar = components.NewToolbar()
	mv.imageDisplay = components.NewImageDisplay()
	mv.missingList = components.NewMissingList()
	mv.statusBar = components.NewStatusBar()
	mv.progressBar = components.NewProgressBar()
}

func (mv *MainView) buildLayout() {
	controls := container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Observation", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			mv.form.GetContainer(),
			mv.toolbar.GetContainer(),
			mv.progressBar.GetContainer(),
			widget.NewSeparator(),
		),
		nil, nil, nil,
		mv.missingList.GetContainer(),
	)

	mv.mainContainer = container.NewBorder(
		nil,
		mv.statusBar.GetContainer(),
		controls,
		nil,
		mv.imageDisplay.GetContainer(),
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) SetGenerateHandler(handler func()) {
	mv.toolbar.SetGenerateHandler(handler)
}

func (mv *MainView) SetSaveHandler(handler func()) {
	mv.toolbar.SetSaveHandler(handler)
}

// Input returns the current form values.
func (mv *MainView) Input() models.RequestInput {
	return mv.form.Input()
}

// SetBusy locks the form while charts are generated.
func (mv *MainView) SetBusy(busy bool) {
	mv.toolbar.SetBusy(busy)
	mv.form.SetEnabled(!busy)
	mv.progressBar.SetVisible(busy)
	if busy {
		mv.form.SetError("")
		mv.progressBar.SetStage("Rendering charts...")
		mv.statusBar.SetStatus("Generating")
	}
}

// ShowFormError reports a rejected request next to the inputs.
func (mv *MainView) ShowFormError(msg string) {
	mv.form.SetError(msg)
	mv.statusBar.SetStatus("Failed")
}

// ShowResult displays a finished generation.
func (mv *MainView) ShowResult(res *models.Result) {
	mv.form.SetError("")
	mv.imageDisplay.SetCharts(res.Problem.Image, res.Answer.Image)
	mv.missingList.SetItems(res.MissingLabels())
	mv.statusBar.SetCharts(res.Problem, res.Answer)
	mv.statusBar.SetStatus(fmt.Sprintf("Done in %s, %d candidates", res.Duration.Round(time.Millisecond), res.Candidates))
	if res.Request.Seed != nil {
		mv.toolbar.SetSeed(*res.Request.Seed)
	}
	mv.toolbar.EnableSave(true)
}

func (mv *MainView) UpdateStatus(status string) {
	mv.statusBar.SetStatus(status)
}

func (mv *MainView) SetMemoryInfo(canvases, heap uint64) {
	mv.statusBar.SetMemoryInfo(canvases, heap)
}

func (mv *MainView) ShowError(err error) {
	dialog.ShowError(err, mv.window)
}

// ShowFolderDialog asks for a destination directory.
func (mv *MainView) ShowFolderDialog(callback func(fyne.ListableURI, error)) {
	dialog.ShowFolderOpen(callback, mv.window)
}

func (mv *MainView) ShowAboutDialog(appName, version string) {
	content := container.NewVBox(
		widget.NewLabel(appName),
		widget.NewLabel(fmt.Sprintf("Version: %s", version)),
		widget.NewLabel(""),
		widget.NewLabel("Star charts with a few stars missing, and the answer key."),
	)
	dialog.ShowCustom("About", "Close", content, mv.window)
}

// ViewState is a snapshot of what the view currently shows.
type ViewState struct {
	HasCharts     bool
	IsBusy        bool
	CanSave       bool
	FormError     string
	MissingItems  []string
	StatusMessage string
	OutputInfo    string
}

func (mv *MainView) GetViewState() ViewState {
	return ViewState{
		HasCharts:     mv.imageDisplay.HasCharts(),
		IsBusy:        mv.progressBar.IsVisible(),
		CanSave:       !mv.toolbar.SaveButton().Disabled(),
		FormError:     mv.form.Error(),
		MissingItems:  mv.missingList.Items(),
		StatusMessage: mv.statusBar.GetStatus(),
		OutputInfo:    mv.statusBar.GetOutputInfo(),
	}
}

func (mv *MainView) Toolbar() *components.Toolbar {
	return mv.toolbar
}
