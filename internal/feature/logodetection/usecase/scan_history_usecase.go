package usecase

import (
	"context"

	"logo_scanner/internal/feature/logodetection/domain/entity"
)

// ScanHistoryUsecase は保存済みスキャン結果の参照を提供します。
type ScanHistoryUsecase struct {
	repo ScanRepository
}

// NewScanHistoryUsecase はScanHistoryUsecaseを生成します。repoがnilの場合、参照は常にErrScanHistoryDisabledを返します。
func NewScanHistoryUsecase(repo ScanRepository) *ScanHistoryUsecase {
	return &ScanHistoryUsecase{repo: repo}
}

// GetScan はIDを指定してスキャン結果を取得します。
func (u *ScanHistoryUsecase) GetScan(ctx context.Context, id uint) (*entity.ScanRun, error) {
	if u.repo == nil {
		return nil, ErrScanHistoryDisabled
	}
	return u.repo.FindRun(ctx, id)
}
