package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOutputCSV は出力CSVのパスが ".csv" で終わらない場合に返されます。
	ErrInvalidOutputCSV = errors.New("output csv must end with .csv")

	// ErrInvalidBatchSize はバッチサイズが0以下の場合に返されます。
	ErrInvalidBatchSize = errors.New("batch size must be greater than zero")

	// ErrEmptyImageFolder は画像フォルダが指定されていない場合に返されます。
	ErrEmptyImageFolder = errors.New("image folder is required")

	// ErrEmptyImage は画像データが空の場合に返されます。
	ErrEmptyImage = errors.New("image data is empty")

	// ErrImageTooLarge は画像データがMaxImageSizeを超える場合に返されます。
	ErrImageTooLarge = errors.New("image size exceeds maximum")

	// ErrInvalidCompanyName は企業名が空・長すぎる・不正な文字を含む場合に返されます。
	ErrInvalidCompanyName = errors.New("invalid company name")

	// ErrAnalyzerNotConfigured はCompanyAnalyzerが構成されていない場合に返されます。
	ErrAnalyzerNotConfigured = errors.New("company analyzer is not configured")

	// ErrScanHistoryDisabled はスキャン履歴DBが構成されていない場合に返されます。
	ErrScanHistoryDisabled = errors.New("scan history is not configured")
)

// ValidationError はScanConfigの検証エラーです。どのフィールドが不正かを保持します。
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
