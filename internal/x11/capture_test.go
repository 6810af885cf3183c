package x11

import (
	"errors"
	"testing"
)

func TestChooseWindowGrab(t *testing.T) {
	root := Area{Width: 4480, Height: 1440}
	target := Client{ID: 0x10, Frame: Area{X: 100, Y: 100, Width: 800, Height: 600}, Viewable: true}
	covering := Client{ID: 0x20, Frame: Area{X: 50, Y: 50, Width: 320, Height: 500}, Viewable: true}
	beside := Client{ID: 0x30, Frame: Area{X: 2000, Y: 0, Width: 400, Height: 400}, Viewable: true}
	iconified := covering
	iconified.Viewable = false

	offScreen := target
	offScreen.Frame.X = -200
	unmapped := target
	unmapped.Viewable = false

	tests := []struct {
		name       string
		compositor bool
		target     Client
		above      []Client
		want       WindowGrab
		wantErr    bool
	}{
		{name: "compositor covered", compositor: true, target: target, above: []Client{covering}, want: GrabPixmap},
		{name: "compositor unmapped", compositor: true, target: unmapped, want: GrabPixmap},
		{name: "no compositor uncovered", target: target, above: []Client{beside}, want: GrabScreen},
		{name: "no compositor cover is iconified", target: target, above: []Client{iconified}, want: GrabScreen},
		{name: "no compositor covered", target: target, above: []Client{beside, covering}, wantErr: true},
		{name: "no compositor unmapped", target: unmapped, wantErr: true},
		{name: "no compositor partly off screen", target: offScreen, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChooseWindowGrab(tt.compositor, tt.target, root, tt.above)
			if tt.wantErr {
				if !errors.Is(err, ErrNeedsCompositor) {
					t.Fatalf("err = %v, want ErrNeedsCompositor", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChooseWindowGrab: %v", err)
			}
			if got != tt.want {
				t.Fatalf("grab = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChooseWindowGrabEdgeTouchIsNotOverlap(t *testing.T) {
	root := Area{Width: 1920, Height: 1080}
	target := Client{Frame: Area{X: 0, Y: 0, Width: 960, Height: 1080}, Viewable: true}
	neighbour := Client{Frame: Area{X: 960, Y: 0, Width: 960, Height: 1080}, Viewable: true}

	got, err := ChooseWindowGrab(false, target, root, []Client{neighbour})
	if err != nil || got != GrabScreen {
		t.Fatalf("grab = %v, err = %v, want GrabScreen", got, err)
	}
}
