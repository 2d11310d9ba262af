package entity

import "time"

// DetectionResult はCSVレポートの1行に対応する検出結果です。
// DetectedImagePath は画像保存が無効な場合は空文字です。
type DetectionResult struct {
	Description       string
	Score             float32
	OriginalImagePath string
	DetectedImagePath string
}

// ScanRun はバッチスキャン1回分の実行結果を表します。
type ScanRun struct {
	ID          uint
	ImageFolder string
	OutputCSV   string
	Images      int // 処理した画像数
	Batches     int // 処理したバッチ数
	Results     []DetectionResult
	StartedAt   time.Time
	FinishedAt  time.Time
}
