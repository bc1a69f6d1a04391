package ui

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScaleFor(t *testing.T) {
	tests := []struct {
		width int
		want  float64
	}{
		{320, 1.0},
		{999, 1.0},
		{1000, 1.25},
		{1599, 1.25},
		{1600, 1.5},
		{3840, 1.5},
	}
	for _, tt := range tests {
		if got := ScaleFor(tt.width); got != tt.want {
			t.Errorf("ScaleFor(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestNewLayout_640(t *testing.T) {
	l, err := NewLayout(640)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}

	want := Layout{
		Width:   640,
		Scale:   1.0,
		Toolbar: image.Rect(0, 0, 640, 80),
		Regions: []Region{
			{image.Rect(0, 0, 51, 80), Action{SelectColor, 0}},
			{image.Rect(51, 0, 102, 80), Action{SelectColor, 1}},
			{image.Rect(102, 0, 153, 80), Action{SelectColor, 2}},
			{image.Rect(153, 0, 204, 80), Action{SelectColor, 3}},
			{image.Rect(204, 0, 255, 80), Action{SelectColor, 4}},
			{image.Rect(255, 0, 306, 80), Action{SelectColor, 5}},
			{image.Rect(306, 0, 357, 80), Action{SelectColor, 6}},
			{image.Rect(357, 0, 408, 80), Action{SelectColor, 7}},
			{image.Rect(420, 10, 520, 70), Action{Kind: ToggleEraser}},
			{image.Rect(530, 10, 630, 70), Action{Kind: Clear}},
		},
	}

	if diff := cmp.Diff(want, l); diff != "" {
		t.Errorf("NewLayout(640) mismatch (-want +got):\n%s", diff)
	}
}

func TestNewLayout_ScaledTiers(t *testing.T) {
	tests := []struct {
		width       int
		toolbar     int
		clearButton image.Rectangle
	}{
		{1280, 100, image.Rect(1280-13-125, 13, 1280-13, 87)},
		{1920, 120, image.Rect(1920-15-150, 15, 1920-15, 105)},
	}

	for _, tt := range tests {
		l, err := NewLayout(tt.width)
		if err != nil {
			t.Fatalf("NewLayout(%d) error = %v", tt.width, err)
		}
		if l.Toolbar.Dy() != tt.toolbar {
			t.Errorf("NewLayout(%d) toolbar height = %d, want %d", tt.width, l.Toolbar.Dy(), tt.toolbar)
		}
		got, ok := l.Bounds(Action{Kind: Clear})
		if !ok {
			t.Fatalf("NewLayout(%d) has no clear button", tt.width)
		}
		if got != tt.clearButton {
			t.Errorf("NewLayout(%d) clear = %v, want %v", tt.width, got, tt.clearButton)
		}
	}
}

func TestNewLayout_RegionsNeverOverlap(t *testing.T) {
	for _, width := range []int{MinWidth, 640, 999, 1000, 1366, 1600, 2560} {
		l, err := NewLayout(width)
		if err != nil {
			t.Fatalf("NewLayout(%d) error = %v", width, err)
		}
		if len(l.Regions) != len(Palette)+2 {
			t.Fatalf("NewLayout(%d) has %d regions", width, len(l.Regions))
		}
		for i, a := range l.Regions {
			if a.Bounds.Empty() {
				t.Errorf("width %d: region %v is empty", width, a.Action)
			}
			if !a.Bounds.In(l.Toolbar) {
				t.Errorf("width %d: region %v outside toolbar", width, a.Action)
			}
			for _, b := range l.Regions[i+1:] {
				if a.Bounds.Overlaps(b.Bounds) {
					t.Errorf("width %d: %v overlaps %v", width, a.Action, b.Action)
				}
			}
		}
	}
}

func TestNewLayout_TooNarrow(t *testing.T) {
	for _, width := range []int{0, -5, MinWidth - 1} {
		_, err := NewLayout(width)
		if !errors.Is(err, ErrTooNarrow) {
			t.Errorf("NewLayout(%d) error = %v, want ErrTooNarrow", width, err)
		}
	}
}

func TestLayout_HitTest(t *testing.T) {
	l, err := NewLayout(640)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}

	tests := []struct {
		name string
		p    image.Point
		want Action
	}{
		{"first swatch", image.Pt(0, 0), Action{SelectColor, 0}},
		{"palette cell 2", image.Pt(127, 40), Action{SelectColor, 2}},
		{"cell boundary belongs to the right", image.Pt(102, 40), Action{SelectColor, 2}},
		{"last swatch", image.Pt(407, 79), Action{SelectColor, 7}},
		{"gap after palette", image.Pt(412, 40), NoAction},
		{"eraser", image.Pt(470, 40), Action{Kind: ToggleEraser}},
		{"eraser top margin", image.Pt(470, 5), NoAction},
		{"clear", image.Pt(600, 69), Action{Kind: Clear}},
		{"clear exclusive edge", image.Pt(630, 40), NoAction},
		{"below toolbar", image.Pt(127, 80), NoAction},
		{"negative", image.Pt(-1, -1), NoAction},
		{"far outside", image.Pt(5000, 5000), NoAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, l.HitTest(tt.p)); diff != "" {
				t.Errorf("HitTest(%v) mismatch (-want +got):\n%s", tt.p, diff)
			}
		})
	}
}

func TestLayout_InToolbar(t *testing.T) {
	l, err := NewLayout(640)
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	if !l.InToolbar(image.Pt(415, 75)) {
		t.Error("gap inside the band should count as toolbar")
	}
	if l.InToolbar(image.Pt(10, 80)) {
		t.Error("row 80 is below the band")
	}
	if l.InToolbar(image.Pt(640, 10)) {
		t.Error("x == width is outside")
	}
}

func TestAction_String(t *testing.T) {
	tests := []struct {
		a    Action
		want string
	}{
		{NoAction, "none"},
		{Action{SelectColor, 3}, "select_color(3)"},
		{Action{Kind: ToggleEraser}, "toggle_eraser"},
		{Action{Kind: Clear}, "clear"},
		{Action{Kind: ActionKind(9)}, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	names := make([]string, 0, len(Palette))
	for _, sw := range Palette {
		names = append(names, sw.Name)
		if sw.Color.A != 255 {
			t.Errorf("%s is not opaque", sw.Name)
		}
	}
	want := []string{"Red", "Green", "Blue", "Yellow", "Magenta", "Cyan", "Black", "White"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("palette order mismatch (-want +got):\n%s", diff)
	}
}
