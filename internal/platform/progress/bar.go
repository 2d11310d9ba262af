// Package progress はバッチ処理の進捗バーを提供します。
package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"logo_scanner/internal/feature/logodetection/usecase"
)

// Description は進捗バーの見出しです。
const Description = "Processing images"

// New は標準エラー出力へ描画する進捗バーを生成します。
// usecase.ProgressFactory として BatchScanner に渡します。
func New(total int) usecase.ProgressReporter {
	return NewWithWriter(os.Stderr)(total)
}

// NewWithWriter は出力先を指定したファクトリを返します。
func NewWithWriter(w io.Writer) usecase.ProgressFactory {
	return func(total int) usecase.ProgressReporter {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(Description),
			progressbar.OptionSetItsString("batch"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionOnCompletion(func() {
				_, _ = io.WriteString(w, "\n")
			}),
		)
	}
}
