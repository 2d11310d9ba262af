// Package imagefs は検出されたロゴ領域を画像上に描画し、切り出して保存します。
package imagefs

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // imaging.Open でWebPをデコードするため登録

	"logo_scanner/internal/feature/logodetection/domain/entity"
	"logo_scanner/internal/feature/logodetection/usecase"
)

// ErrEmptyCrop はクロップ矩形が画像の範囲と重ならない場合に返されます。
var ErrEmptyCrop = errors.New("crop rectangle does not overlap the image")

// OutlineColor は検出領域の輪郭の色（赤）です。
var OutlineColor = color.NRGBA{R: 255, A: 255}

// Annotator はImageAnnotatorのファイルシステム実装です。
type Annotator struct {
	dirPerm os.FileMode
}

// AnnotatorがImageAnnotatorを実装していることをコンパイル時に検証します。
var _ usecase.ImageAnnotator = (*Annotator)(nil)

// NewAnnotator はAnnotatorを生成します。
func NewAnnotator() *Annotator {
	return &Annotator{dirPerm: 0o755}
}

// SaveDetected は元画像全体にポリゴンの輪郭を描画し、1番目と3番目の頂点で決まる矩形に切り出して
// dstPathに保存します。保存先のディレクトリは必要に応じて再帰的に作成されます。
func (a *Annotator) SaveDetected(srcPath, dstPath string, poly entity.BoundingPoly) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), a.dirPerm); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	img, err := imaging.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", srcPath, err)
	}

	canvas := imaging.Clone(img)
	DrawPolygon(canvas, poly.Points(), OutlineColor)

	rect, err := poly.CropRect()
	if err != nil {
		return err
	}
	if rect.Intersect(canvas.Bounds()).Empty() {
		return fmt.Errorf("%w: %v", ErrEmptyCrop, rect)
	}

	return save(imaging.Crop(canvas, rect), dstPath)
}

// save は拡張子に応じたフォーマットで画像を保存します。
// WebPはimagingが書き出しに対応していないためchai2010/webpでロスレス保存します。
func save(img image.Image, path string) error {
	if strings.ToLower(filepath.Ext(path)) != ".webp" {
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("failed to save image %s: %w", path, err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err, "path", path)
		}
	}()
	if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
		return fmt.Errorf("failed to encode webp %s: %w", path, err)
	}
	return nil
}

// DrawPolygon は頂点を順に結び、最後の頂点と最初の頂点を閉じた輪郭を1pxで描画します。
func DrawPolygon(img *image.NRGBA, pts []image.Point, c color.NRGBA) {
	if len(pts) == 0 {
		return
	}
	for i := range pts {
		drawLine(img, pts[i], pts[(i+1)%len(pts)], c)
	}
}

// drawLine はブレゼンハムのアルゴリズムで線分を描画します。範囲外のピクセルは無視します。
func drawLine(img *image.NRGBA, p0, p1 image.Point, c color.NRGBA) {
	dx := abs(p1.X - p0.X)
	dy := -abs(p1.Y - p0.Y)
	sx, sy := 1, 1
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	e := dx + dy
	x, y := p0.X, p0.Y
	for {
		if (image.Point{X: x, Y: y}).In(img.Bounds()) {
			img.SetNRGBA(x, y, c)
		}
		if x == p1.X && y == p1.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
