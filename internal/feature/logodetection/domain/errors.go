// Package domain はlogodetectionフィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrMalformedPolygon はバウンディングポリゴンの頂点数が不足している場合に返されます。
	ErrMalformedPolygon = errors.New("bounding polygon has fewer than 4 vertices")

	// ErrScanNotFound は指定されたIDのスキャン履歴が存在しない場合に返されます。
	ErrScanNotFound = errors.New("scan run not found")
)
