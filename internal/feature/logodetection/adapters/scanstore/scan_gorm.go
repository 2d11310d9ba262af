// Package scanstore はスキャン履歴をgormで永続化するリポジトリを提供します。
package scanstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"logo_scanner/internal/feature/logodetection/domain"
	"logo_scanner/internal/feature/logodetection/domain/entity"
	"logo_scanner/internal/feature/logodetection/usecase"
)

type scanGorm struct {
	db *gorm.DB
}

var _ usecase.ScanRepository = (*scanGorm)(nil)

// NewScanRepository はgormを使用したScanRepositoryを生成します。
func NewScanRepository(db *gorm.DB) *scanGorm {
	return &scanGorm{db: db}
}

func toModel(run *entity.ScanRun) ScanRunModel {
	m := ScanRunModel{
		ImageFolder: run.ImageFolder,
		OutputCSV:   run.OutputCSV,
		Images:      run.Images,
		Batches:     run.Batches,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Detections:  make([]DetectionModel, 0, len(run.Results)),
	}
	for _, r := range run.Results {
		m.Detections = append(m.Detections, DetectionModel{
			Description:   r.Description,
			Score:         r.Score,
			OriginalImage: r.OriginalImagePath,
			DetectedImage: r.DetectedImagePath,
		})
	}
	return m
}

func toEntity(m ScanRunModel) *entity.ScanRun {
	run := &entity.ScanRun{
		ID:          m.ID,
		ImageFolder: m.ImageFolder,
		OutputCSV:   m.OutputCSV,
		Images:      m.Images,
		Batches:     m.Batches,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
		Results:     make([]entity.DetectionResult, 0, len(m.Detections)),
	}
	for _, d := range m.Detections {
		run.Results = append(run.Results, entity.DetectionResult{
			Description:       d.Description,
			Score:             d.Score,
			OriginalImagePath: d.OriginalImage,
			DetectedImagePath: d.DetectedImage,
		})
	}
	return run
}

// SaveRun はスキャン結果と検出結果を1トランザクションで保存し、採番されたIDを返します。
func (r *scanGorm) SaveRun(ctx context.Context, run *entity.ScanRun) (uint, error) {
	m := toModel(run)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Detections").Create(&m).Error; err != nil {
			return err
		}
		if len(m.Detections) == 0 {
			return nil
		}
		for i := range m.Detections {
			m.Detections[i].ScanRunID = m.ID
		}
		return tx.CreateInBatches(&m.Detections, 500).Error
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// FindRun はIDでスキャン結果を検出結果ごと取得します。検出結果はCSVと同じ順序で返します。
func (r *scanGorm) FindRun(ctx context.Context, id uint) (*entity.ScanRun, error) {
	var m ScanRunModel
	err := r.db.WithContext(ctx).
		Preload("Detections", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrScanNotFound
	}
	if err != nil {
		return nil, err
	}
	return toEntity(m), nil
}
