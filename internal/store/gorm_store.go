// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/AMD-AGI/kube-benchscan/internal/apperrors"
	"github.com/AMD-AGI/kube-benchscan/internal/model"
)

// terminalStatuses is the set UpdateStatus, SelectActive and Summarize treat
// as terminal.
var terminalStatuses = []model.ScanStatus{model.ScanStatusDone, model.ScanStatusFailed}

// GormStore is the Postgres-backed Task Store, following the facade style
// of Lens/modules/core/pkg/database (one struct wrapping a *gorm.DB, one
// method per store operation, context-scoped queries).
type GormStore struct {
	db *gorm.DB
}

// Open connects to Postgres via the given DSN and migrates the schema.
// Spec.md §6 states no migration tool is mandated by the core; AutoMigrate
// is the minimal viable approach.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, apperrors.NewError().
			WithCode(apperrors.CodeDatabaseError).
			WithMessage("failed to connect to database").
			WithError(err)
	}
	if err := db.AutoMigrate(&model.Cluster{}, &model.NodeTask{}, &model.ScanResult{}); err != nil {
		return nil, apperrors.NewError().
			WithCode(apperrors.CodeDatabaseError).
			WithMessage("failed to migrate schema").
			WithError(err)
	}
	return &GormStore{db: db}, nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) GetCluster(ctx context.Context, clusterID string) (*model.Cluster, error) {
	var c model.Cluster
	err := s.db.WithContext(ctx).Where("cluster_id = ?", clusterID).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewError().
			WithCode(apperrors.ClusterNotFound).
			WithMessagef("cluster %s not found", clusterID)
	}
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return &c, nil
}

func (s *GormStore) InsertNodeTask(ctx context.Context, row *model.NodeTask) error {
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.NewError().
			WithCode(apperrors.CodeDatabaseError).
			WithMessagef("insert node-task %s", row.NodeTaskID).
			WithError(err)
	}
	return nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, nodeTaskID string, newStatus model.ScanStatus) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&model.NodeTask{}).
		Where("node_task_id = ? AND scan_status NOT IN ?", nodeTaskID, terminalStatuses).
		Update("scan_status", newStatus)
	if result.Error != nil {
		return false, apperrors.NewError().
			WithCode(apperrors.CodeDatabaseError).
			WithMessagef("update status for %s", nodeTaskID).
			WithError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) SelectActive(ctx context.Context, clusterID, mainTaskID string) ([]model.NodeTask, error) {
	var rows []model.NodeTask
	err := s.db.WithContext(ctx).
		Where("cluster_id = ? AND main_task_id = ? AND scan_status NOT IN ?", clusterID, mainTaskID, terminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return rows, nil
}

func (s *GormStore) Summarize(ctx context.Context, clusterID, mainTaskID string) (Summary, error) {
	var total, completed int64
	base := s.db.WithContext(ctx).Model(&model.NodeTask{}).
		Where("cluster_id = ? AND main_task_id = ?", clusterID, mainTaskID)
	if err := base.Count(&total).Error; err != nil {
		return Summary{}, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	err := s.db.WithContext(ctx).Model(&model.NodeTask{}).
		Where("cluster_id = ? AND main_task_id = ? AND scan_status IN ?", clusterID, mainTaskID, terminalStatuses).
		Count(&completed).Error
	if err != nil {
		return Summary{}, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return Summary{Total: int(total), Completed: int(completed)}, nil
}

func (s *GormStore) InsertResult(ctx context.Context, result *model.ScanResult) error {
	if result.InsertedAt.IsZero() {
		result.InsertedAt = time.Now()
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "node_task_id"}}, DoNothing: true}).
		Create(result).Error
	if err != nil {
		return apperrors.NewError().
			WithCode(apperrors.CodeDatabaseError).
			WithMessagef("insert result for %s", result.NodeTaskID).
			WithError(err)
	}
	return nil
}

func (s *GormStore) DeleteMainTask(ctx context.Context, clusterID, mainTaskID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cluster_id = ? AND main_task_id = ?", clusterID, mainTaskID).
			Delete(&model.ScanResult{}).Error; err != nil {
			return err
		}
		return tx.Where("cluster_id = ? AND main_task_id = ?", clusterID, mainTaskID).
			Delete(&model.NodeTask{}).Error
	})
	if err != nil {
		return apperrors.NewError().
			WithCode(apperrors.CodeDatabaseError).
			WithMessagef("delete main-task %s", mainTaskID).
			WithError(err)
	}
	return nil
}

func (s *GormStore) ListWorkloadNames(ctx context.Context, clusterID, mainTaskID string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&model.NodeTask{}).
		Where("cluster_id = ? AND main_task_id = ?", clusterID, mainTaskID).
		Pluck("workload_name", &names).Error
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return names, nil
}

func (s *GormStore) ListMainTasks(ctx context.Context, clusterID, mainTaskID string) ([]MainTaskRow, error) {
	q := s.db.WithContext(ctx).Order("task_created_at DESC")
	if clusterID != "" {
		q = q.Where("cluster_id = ?", clusterID)
	}
	if mainTaskID != "" {
		q = q.Where("main_task_id = ?", mainTaskID)
	}
	var rows []model.NodeTask
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return rows, nil
}

func (s *GormStore) ListNonTerminalMainTasks(ctx context.Context) ([]MainTaskRef, error) {
	var refs []MainTaskRef
	err := s.db.WithContext(ctx).Model(&model.NodeTask{}).
		Where("scan_status NOT IN ?", terminalStatuses).
		Distinct("cluster_id", "main_task_id").
		Find(&refs).Error
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return refs, nil
}

func (s *GormStore) GetResult(ctx context.Context, nodeTaskID string) (*model.ScanResult, error) {
	var r model.ScanResult
	err := s.db.WithContext(ctx).Where("node_task_id = ?", nodeTaskID).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return &r, nil
}

func (s *GormStore) LatestNodeTaskByName(ctx context.Context, clusterID, nodeName string) (*model.NodeTask, error) {
	var nt model.NodeTask
	err := s.db.WithContext(ctx).
		Where("cluster_id = ? AND node_name = ?", clusterID, nodeName).
		Order("task_created_at DESC").
		Take(&nt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewError().WithCode(apperrors.CodeDatabaseError).WithError(err)
	}
	return &nt, nil
}
