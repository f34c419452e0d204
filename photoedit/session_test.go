package photoedit

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/keepsake/design"
)

func gray(w, h int, v uint8) image.Image {
	return imaging.New(w, h, color.NRGBA{R: v, G: v, B: v, A: 255})
}

func open(t *testing.T, img image.Image, opts Options) *Session {
	t.Helper()
	s, err := Open(img, opts)
	if err != nil {
		t.Fatalf("打开编辑会话失败: %v", err)
	}
	return s
}

func TestDefaultCropIsCenteredSquare(t *testing.T) {
	s := open(t, gray(400, 200, 100), Options{})
	want := design.CropRect{X: 120, Y: 20, Width: 160, Height: 160}
	if s.Crop() != want {
		t.Fatalf("默认裁剪框应居中且为短边的 80%%: %+v", s.Crop())
	}
}

func TestEmptyImageIsRejected(t *testing.T) {
	if _, err := Open(nil, Options{}); err == nil {
		t.Fatalf("空图片应被拒绝")
	}
}

func TestControlsAreClamped(t *testing.T) {
	s := open(t, gray(10, 10, 0), Options{})
	s.SetZoom(9)
	s.SetRotation(-720)
	s.SetBrightness(150)
	if s.Zoom() != MaxZoom || s.Rotation() != -MaxRotation || s.Brightness() != MaxBrightness {
		t.Fatalf("控件未被限制: zoom=%v rot=%v bright=%v", s.Zoom(), s.Rotation(), s.Brightness())
	}
	s.SetZoom(0.1)
	if s.Zoom() != MinZoom {
		t.Fatalf("缩放下限应为 %v", MinZoom)
	}
}

func TestPanOnlyAboveUnitZoom(t *testing.T) {
	s := open(t, gray(10, 10, 0), Options{})
	if s.PanBy(5, 5) {
		t.Fatalf("1 倍缩放时不允许平移")
	}
	s.SetZoom(2)
	if !s.PanBy(5, -3) {
		t.Fatalf("放大后应允许平移")
	}
	if x, y := s.Pan(); x != 5 || y != -3 {
		t.Fatalf("平移量错误: %v,%v", x, y)
	}
	s.SetZoom(1)
	if x, y := s.Pan(); x != 0 || y != 0 {
		t.Fatalf("缩放回到 1 倍时平移应归零")
	}
}

func TestSetCropStaysSquareAndInside(t *testing.T) {
	s := open(t, gray(100, 80, 0), Options{})
	s.SetCrop(design.CropRect{X: 90, Y: -10, Width: 50, Height: 40})
	want := design.CropRect{X: 60, Y: 0, Width: 40, Height: 40}
	if s.Crop() != want {
		t.Fatalf("裁剪框应为正方形并限制在图片内: %+v", s.Crop())
	}
}

func TestDisplayCropMapsToSourcePixels(t *testing.T) {
	s := open(t, gray(1000, 1000, 0), Options{})
	if err := s.SetDisplayCrop(design.CropRect{X: 50, Y: 50, Width: 100, Height: 100}, 500, 500); err != nil {
		t.Fatalf("设置显示裁剪框失败: %v", err)
	}
	if got := s.Crop(); got != (design.CropRect{X: 100, Y: 100, Width: 200, Height: 200}) {
		t.Fatalf("显示坐标应按自然尺寸换算: %+v", got)
	}

	s.SetZoom(2)
	if err := s.SetDisplayCrop(design.CropRect{X: 250, Y: 250, Width: 100, Height: 100}, 500, 500); err != nil {
		t.Fatalf("设置显示裁剪框失败: %v", err)
	}
	if got := s.Crop(); got != (design.CropRect{X: 500, Y: 500, Width: 100, Height: 100}) {
		t.Fatalf("2 倍缩放下应换算回源图: %+v", got)
	}
	if err := s.SetDisplayCrop(design.CropRect{}, 0, 10); err == nil {
		t.Fatalf("显示尺寸为 0 应报错")
	}
}

func TestSaveBakesCropAndBrightness(t *testing.T) {
	s := open(t, gray(100, 100, 100), Options{})
	s.SetBrightness(50)
	s.SetRotation(30)
	res := s.Save()
	if b := res.Image.Bounds(); b.Dx() != 80 || b.Dy() != 80 {
		t.Fatalf("输出应为裁剪框大小: %v", b)
	}
	if c := res.Image.NRGBAAt(40, 40); c.R != 150 {
		t.Fatalf("亮度倍率应为 1.5: %v", c)
	}
	if res.Rotation != 0 {
		t.Fatalf("卡片设计器不烘焙旋转")
	}
	if res.Crop != s.Crop() || res.Brightness != 50 {
		t.Fatalf("数值状态应随结果返回: %+v", res)
	}
}

func TestSaveBakesRotationWhenRequested(t *testing.T) {
	s := open(t, imaging.New(200, 100, color.NRGBA{R: 255, A: 255}), Options{BakeRotation: true})
	s.SetCrop(design.CropRect{X: 0, Y: 0, Width: 100, Height: 100})
	s.SetRotation(45)
	res := s.Save()
	want := int(math.Ceil(100 * math.Sqrt2))
	if b := res.Image.Bounds(); b.Dx() < want-2 || b.Dx() > want+2 {
		t.Fatalf("旋转 45 度后边长应约为 %d: %v", want, b)
	}
	if res.Image.NRGBAAt(0, 0).A != 0 {
		t.Fatalf("旋转后空出的角应透明")
	}
	if res.Rotation != 45 {
		t.Fatalf("烘焙的旋转应记录在结果中")
	}
}

func TestBrightenDarkens(t *testing.T) {
	out := Brighten(gray(2, 2, 200), -50)
	if c := out.NRGBAAt(0, 0); c.R != 100 || c.A != 255 {
		t.Fatalf("亮度 -50 应减半: %v", c)
	}
}
