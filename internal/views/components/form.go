package components

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"missingstar/internal/models"
)

// FormDefaults seed the input form.
type FormDefaults struct {
	Now          time.Time
	Timezone     string
	Latitude     float64
	Longitude    float64
	MaxMagnitude float64
	Count        int
	MaxPlotMag   float64
}

// InputForm collects observer and quiz parameters.
type InputForm struct {
	container *fyne.Container

	dateEntry      *widget.Entry
	timeEntry      *widget.Entry
	timezoneEntry  *widget.Entry
	latitudeEntry  *widget.Entry
	longitudeEntry *widget.Entry
	magnitude      *widget.Slider
	magnitudeLabel *widget.Label
	countEntry     *widget.Entry
	seedEntry      *widget.Entry
	errorLabel     *widget.Label
}

func NewInputForm(d FormDefaults) *InputForm {
	f := &InputForm{}
	f.createComponents(d)
	f.buildLayout()
	return f
}

func (f *InputForm) createComponents(d FormDefaults) {
	now := d.Now
	if loc, err := models.LoadLocation(d.Timezone); err == nil {
		now = now.In(loc)
	}

	f.dateEntry = widget.NewEntry()
	f.dateEntry.SetPlaceHolder(models.DateLayout)
	f.dateEntry.SetText(now.Format(models.DateLayout))

	f.timeEntry = widget.NewEntry()
	f.timeEntry.SetPlaceHolder("HH:MM")
	f.timeEntry.SetText(now.Format(models.TimeLayout))

	f.timezoneEntry = widget.NewEntry()
	f.timezoneEntry.SetText(d.Timezone)

	f.latitudeEntry = widget.NewEntry()
	f.latitudeEntry.SetText(strconv.FormatFloat(d.Latitude, 'f', 4, 64))

	f.longitudeEntry = widget.NewEntry()
	f.longitudeEntry.SetText(strconv.FormatFloat(d.Longitude, 'f', 4, 64))

	f.magnitudeLabel = widget.NewLabel("")
	f.magnitude = widget.NewSlider(0, d.MaxPlotMag)
	f.magnitude.Step = 0.1
	f.magnitude.OnChanged = func(v float64) {
		f.magnitudeLabel.SetText(fmt.Sprintf("%.1f", v))
	}
	f.magnitude.SetValue(d.MaxMagnitude)
	f.magnitudeLabel.SetText(fmt.Sprintf("%.1f", d.MaxMagnitude))

	f.countEntry = widget.NewEntry()
	f.countEntry.SetText(strconv.Itoa(d.Count))

	f.seedEntry = widget.NewEntry()
	f.seedEntry.SetPlaceHolder("random")

	f.errorLabel = widget.NewLabel("")
	f.errorLabel.Importance = widget.DangerImportance
	f.errorLabel.Wrapping = fyne.TextWrapWord
	f.errorLabel.Hide()
}

func (f *InputForm) buildLayout() {
	form := widget.NewForm(
		widget.NewFormItem("Date", f.dateEntry),
		widget.NewFormItem("Time", f.timeEntry),
		widget.NewFormItem("Timezone", f.timezoneEntry),
		widget.NewFormItem("Latitude", f.latitudeEntry),
		widget.NewFormItem("Longitude", f.longitudeEntry),
		widget.NewFormItem("Max magnitude (n)", container.NewBorder(nil, nil, nil, f.magnitudeLabel, f.magnitude)),
		widget.NewFormItem("Stars to remove (k)", f.countEntry),
		widget.NewFormItem("Seed", f.seedEntry),
	)
	f.container = container.NewVBox(form, f.errorLabel)
}

// Input returns the raw form values.
func (f *InputForm) Input() models.RequestInput {
	return models.RequestInput{
		Date:         f.dateEntry.Text,
		Time:         f.timeEntry.Text,
		Timezone:     f.timezoneEntry.Text,
		Latitude:     f.latitudeEntry.Text,
		Longitude:    f.longitudeEntry.Text,
		MaxMagnitude: strconv.FormatFloat(f.magnitude.Value, 'f', 1, 64),
		Count:        f.countEntry.Text,
		Seed:         f.seedEntry.Text,
	}
}

// SetError shows msg below the form. An empty msg hides it.
func (f *InputForm) SetError(msg string) {
	f.errorLabel.SetText(msg)
	if msg == "" {
		f.errorLabel.Hide()
	} else {
		f.errorLabel.Show()
	}
}

// Error returns the message currently shown.
func (f *InputForm) Error() string {
	if !f.errorLabel.Visible() {
		return ""
	}
	return f.errorLabel.Text
}

// SetEnabled toggles every input.
func (f *InputForm) SetEnabled(enabled bool) {
	for _, w := range []fyne.Disableable{
		f.dateEntry, f.timeEntry, f.timezoneEntry, f.latitudeEntry,
		f.longitudeEntry, f.magnitude, f.countEntry, f.seedEntry,
	} {
		if enabled {
			w.Enable()
		} else {
			w.Disable()
		}
	}
}

func (f *InputForm) GetContainer() *fyne.Container {
	return f.container
}
