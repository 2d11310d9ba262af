package entity

// CompanyAnalysis は検出されたブランドの企業分析結果を表します。
type CompanyAnalysis struct {
	CompanyName string // 分析対象のブランド名（DetectedLogo.Description）
	Summary     string // Geminiが生成した分析サマリー
}
