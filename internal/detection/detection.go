// Package detection 对接外部目标检测模型，给出图片中最可能的损伤类型与置信度。
package detection

import "context"

// 特殊标签
const (
	LabelModelError = "Model Error"
	LabelNoDamage   = "No Damage"
)

// Result 一次识别的结论
type Result struct {
	Label      string  `json:"damage_type"`
	Confidence float64 `json:"confidence"`
}

// ModelError 模型不可用时的降级结论
func ModelError() Result {
	return Result{Label: LabelModelError, Confidence: 0}
}

// Detection 模型返回的单个检测框
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Detector 损伤识别器
// 实现不向调用方返回错误，模型不可用时返回 ModelError()
type Detector interface {
	Detect(ctx context.Context, path string) Result
}

// Best 选出置信度最高的检测框
// 严格大于才替换，置信度相同时保留先出现的；没有检测框时为 No Damage
func Best(detections []Detection) Result {
	best := Result{Label: LabelNoDamage, Confidence: 0}
	for _, d := range detections {
		conf := clamp(d.Confidence)
		if conf > best.Confidence {
			best = Result{Label: d.Label, Confidence: conf}
		}
	}
	return best
}

func clamp(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
