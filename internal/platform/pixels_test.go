package platform

import "testing"

func TestBGRAToRGBA(t *testing.T) {
	// 2x2, stride padded to 12 bytes per row.
	src := []byte{
		1, 2, 3, 0, 4, 5, 6, 0, 9, 9, 9, 9,
		7, 8, 9, 0, 10, 11, 12, 0, 9, 9, 9, 9,
	}
	img, err := BGRAToRGBA(src, 2, 2, 12)
	if err != nil {
		t.Fatalf("BGRAToRGBA: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	c := img.RGBAAt(1, 1)
	if c.R != 12 || c.G != 11 || c.B != 10 || c.A != 0xff {
		t.Fatalf("pixel (1,1) = %+v, want R=12 G=11 B=10 A=255", c)
	}
	c = img.RGBAAt(0, 0)
	if c.R != 3 || c.G != 2 || c.B != 1 {
		t.Fatalf("pixel (0,0) = %+v", c)
	}
}

func TestBGRAToRGBARejectsShortBuffer(t *testing.T) {
	if _, err := BGRAToRGBA(make([]byte, 10), 2, 2, 8); err == nil {
		t.Fatal("expected error for short buffer")
	}
	if _, err := BGRAToRGBA(make([]byte, 64), 4, 4, 8); err == nil {
		t.Fatal("expected error for small stride")
	}
	if _, err := BGRAToRGBA(nil, 0, 4, 0); err == nil {
		t.Fatal("expected error for zero width")
	}
}
