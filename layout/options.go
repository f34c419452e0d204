package layout

// Options 配置解析阶段所需的依赖，例如排版后端。
type Options struct {
	// Typesetter 为空时文本只按显式换行拆分，不测量宽度。
	Typesetter Typesetter
	// PrayerOnFront 将祷文绘制在正面（单页导出）；否则祷文只出现在背面视图。
	PrayerOnFront bool
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// fontSize 与 maxWidth 使用同一坐标单位；maxWidth <= 0 表示不限宽。
type Typesetter interface {
	LayoutLines(content string, maxWidth float64, font FontSpec, fontSize float64) ([]TextLine, error)
}
