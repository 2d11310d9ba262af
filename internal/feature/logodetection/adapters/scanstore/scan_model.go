package scanstore

import "time"

// ScanRunModel はスキャン1回分の実行記録テーブルです。
type ScanRunModel struct {
	ID          uint   `gorm:"primaryKey"`
	ImageFolder string `gorm:"size:1024;not null"`
	OutputCSV   string `gorm:"size:1024;not null"`
	Images      int    `gorm:"not null;default:0"`
	Batches     int    `gorm:"not null;default:0"`
	StartedAt   time.Time
	FinishedAt  time.Time

	Detections []DetectionModel `gorm:"foreignKey:ScanRunID;constraint:OnDelete:CASCADE"`
}

func (ScanRunModel) TableName() string {
	return "scan_runs"
}

// DetectionModel はCSVの1行に対応する検出結果テーブルです。
type DetectionModel struct {
	ID            uint    `gorm:"primaryKey"`
	ScanRunID     uint    `gorm:"not null;index"`
	Description   string  `gorm:"size:255;not null"`
	Score         float32 `gorm:"not null"`
	OriginalImage string  `gorm:"size:1024;not null"`
	DetectedImage string  `gorm:"size:1024"`
}

func (DetectionModel) TableName() string {
	return "detections"
}

// Models はAutoMigrateの対象となるモデルの一覧です。
func Models() []any {
	return []any{&ScanRunModel{}, &DetectionModel{}}
}
