// Package csvreport は検出結果をCSVレポートとして書き出します。
package csvreport

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"logo_scanner/internal/feature/logodetection/domain/entity"
	"logo_scanner/internal/feature/logodetection/usecase"
)

// Header はレポートの固定列です。
var Header = []string{"Description", "Score", "Detected_Image", "Original_Image"}

// Writer はDetectionResultをCSVファイルに書き出すReportWriter実装です。
type Writer struct{}

// WriterがReportWriterを実装していることをコンパイル時に検証します。
var _ usecase.ReportWriter = (*Writer)(nil)

// NewWriter はWriterを生成します。
func NewWriter() *Writer {
	return &Writer{}
}

// Write はヘッダー行と検出結果1件につき1行をpathに書き出します。
// 結果が0件の場合はヘッダーのみのファイルになります。
func (w *Writer) Write(results []entity.DetectionResult, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("CSVファイルのクローズに失敗", "error", cerr, "path", path)
			if err == nil {
				err = cerr
			}
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row はDetectionResultをHeaderの列順に並べます。未設定のフィールドは空文字になります。
// Scoreはfloat32の最短表現（0.95）で出力し、float64に拡張した値（0.949999988079071）は書きません。
func Row(r entity.DetectionResult) []string {
	return []string{
		r.Description,
		strconv.FormatFloat(float64(r.Score), 'f', -1, 32),
		r.DetectedImagePath,
		r.OriginalImagePath,
	}
}
