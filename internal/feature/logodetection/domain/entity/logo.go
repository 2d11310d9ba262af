// Package entity はlogodetectionフィーチャーのドメインモデルを定義します。
package entity

import (
	"image"

	"logo_scanner/internal/feature/logodetection/domain"
)

// minPolygonVertices はクロップ矩形の計算に必要な頂点数です。
const minPolygonVertices = 4

// Vertex はバウンディングポリゴンの1頂点（ピクセル座標）を表します。
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoundingPoly は検出領域を囲む頂点の順序付きリストです。
type BoundingPoly struct {
	Vertices []Vertex `json:"vertices"`
}

// CropRect は1番目と3番目の頂点からクロップ矩形（最小・最大の角のペア）を返します。
// Vision APIは左上から時計回りに頂点を返すため、この2点が対角になります。
func (p BoundingPoly) CropRect() (image.Rectangle, error) {
	if len(p.Vertices) < minPolygonVertices {
		return image.Rectangle{}, domain.ErrMalformedPolygon
	}
	a, c := p.Vertices[0], p.Vertices[2]
	return image.Rect(a.X, a.Y, c.X, c.Y), nil
}

// Points は頂点をimage.Pointのスライスとして返します。
func (p BoundingPoly) Points() []image.Point {
	pts := make([]image.Point, 0, len(p.Vertices))
	for _, v := range p.Vertices {
		pts = append(pts, image.Pt(v.X, v.Y))
	}
	return pts
}

// DetectedLogo は画像から検出されたロゴを表します。
type DetectedLogo struct {
	Description  string       `json:"description"`   // 検出されたブランド名
	Score        float32      `json:"score"`         // 信頼度スコア（0.0 ~ 1.0）
	BoundingPoly BoundingPoly `json:"bounding_poly"` // 検出領域
}
