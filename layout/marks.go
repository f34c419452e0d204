package layout

// CropMarkLengthPt 裁切标记的长度（pt）。
const CropMarkLengthPt = 20.0

// Segment 是一条直线段。
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// CropMarks 返回裁切框四角外侧的 L 形标记，每角一竖一横，均以裁切角为终点向外延伸。
// 顺序：左上、右上、左下、右下。
func (r *Result) CropMarks() []Segment {
	if r == nil {
		return nil
	}
	lx := CropMarkLengthPt * r.Space.PxPerPtX() * r.ScaleX
	ly := CropMarkLengthPt * r.Space.PxPerPtY() * r.ScaleY
	left, top := r.Trim.X, r.Trim.Y
	right, bottom := r.Trim.X+r.Trim.Width, r.Trim.Y+r.Trim.Height
	return []Segment{
		{X1: left, Y1: top - ly, X2: left, Y2: top},
		{X1: left - lx, Y1: top, X2: left, Y2: top},
		{X1: right, Y1: top - ly, X2: right, Y2: top},
		{X1: right + lx, Y1: top, X2: right, Y2: top},
		{X1: left, Y1: bottom + ly, X2: left, Y2: bottom},
		{X1: left - lx, Y1: bottom, X2: left, Y2: bottom},
		{X1: right, Y1: bottom + ly, X2: right, Y2: bottom},
		{X1: right + lx, Y1: bottom, X2: right, Y2: bottom},
	}
}
