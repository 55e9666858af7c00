package safe

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mat guards a gocv.Mat so drawing after Close fails instead of touching freed memory.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	id      uint64
	tag     string
}

var nextMatID uint64

// NewMat allocates a rows x cols Mat filled with fill.
func NewMat(rows, cols int, matType gocv.MatType, fill color.RGBA, tag string) (*Mat, error) {
	if err := ValidateDimensions(cols, rows, "NewMat"); err != nil {
		return nil, err
	}
	if err := ValidateMatType(matType, "NewMat"); err != nil {
		return nil, err
	}

	mat := gocv.NewMatWithSizeFromScalar(scalar(fill), rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	safeMat := &Mat{
		mat:     mat,
		isValid: 1,
		id:      atomic.AddUint64(&nextMatID, 1),
		tag:     tag,
	}

	// Set finalizer for cleanup if Close() is not called
	runtime.SetFinalizer(safeMat, (*Mat).finalize)

	return safeMat, nil
}

// NewCanvas allocates a transparent size x size BGRA canvas.
func NewCanvas(size int, tag string) (*Mat, error) {
	return NewMat(size, size, gocv.MatTypeCV8UC4, color.RGBA{}, tag)
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	return sm.mat.Type()
}

// Fill paints every pixel with c.
func (sm *Mat) Fill(c color.RGBA) error {
	return sm.draw("Fill", func(m *gocv.Mat) error {
		m.SetTo(scalar(c))
		return nil
	})
}

// Circle draws an anti-aliased circle. A negative thickness fills it.
func (sm *Mat) Circle(center image.Point, radius int, c color.RGBA, thickness int) error {
	if radius < 1 {
		radius = 1
	}
	return sm.draw("Circle", func(m *gocv.Mat) error {
		return gocv.CircleWithParams(m, center, radius, c, thickness, gocv.LineAA, 0)
	})
}

// Line draws an 8-connected segment.
func (sm *Mat) Line(from, to image.Point, c color.RGBA, thickness int) error {
	return sm.draw("Line", func(m *gocv.Mat) error {
		return gocv.Line(m, from, to, c, thickness)
	})
}

// Text draws s centered on at.
func (sm *Mat) Text(s string, at image.Point, scale float64, c color.RGBA, thickness int) error {
	size := gocv.GetTextSize(s, gocv.FontHersheySimplex, scale, thickness)
	origin := image.Pt(at.X-size.X/2, at.Y+size.Y/2)
	return sm.draw("PutText", func(m *gocv.Mat) error {
		gocv.PutText(m, s, origin, gocv.FontHersheySimplex, scale, c, thickness)
		return nil
	})
}

// WriteFile encodes the Mat to path. The format follows the file extension; PNG keeps
// the alpha channel.
func (sm *Mat) WriteFile(path string) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if err := sm.validate("IMWrite"); err != nil {
		return err
	}
	if !gocv.IMWrite(path, sm.mat) {
		return fmt.Errorf("failed to write %s", path)
	}
	return nil
}

// ToImage converts the Mat to an RGBA image.
func (sm *Mat) ToImage() (image.Image, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if err := sm.validate("ToImage"); err != nil {
		return nil, err
	}
	return sm.mat.ToImage()
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Tag() string {
	return sm.tag
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if !sm.mat.Empty() {
			sm.mat.Close()
		}

		runtime.SetFinalizer(sm, nil)
	}
}

func (sm *Mat) draw(operation string, fn func(m *gocv.Mat) error) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.validate(operation); err != nil {
		return err
	}
	if err := fn(&sm.mat); err != nil {
		return fmt.Errorf("%s failed: %w", operation, err)
	}
	return nil
}

// validate expects the caller to hold the lock.
func (sm *Mat) validate(operation string) error {
	if !sm.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}
	if sm.mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}
	return nil
}

// finalize is called by Go's garbage collector as last resort cleanup
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}

// scalar orders channels the way OpenCV stores them.
func scalar(c color.RGBA) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), float64(c.A))
}

func matTypeSize(matType gocv.MatType) int {
	switch matType {
	case gocv.MatTypeCV8UC1:
		return 1
	case gocv.MatTypeCV8UC3:
		return 3
	case gocv.MatTypeCV8UC4:
		return 4
	default:
		return 1
	}
}

// Bytes estimates the pixel buffer size.
func (sm *Mat) Bytes() int64 {
	return int64(sm.Rows()) * int64(sm.Cols()) * int64(matTypeSize(sm.Type()))
}
