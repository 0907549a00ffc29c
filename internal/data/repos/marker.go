package repos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/store"
	"github.com/yungbote/ipksa-ingest/internal/domain/temporal"
	"github.com/yungbote/ipksa-ingest/internal/platform/dbctx"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

type MarkerRepo interface {
	Create(dbc dbctx.Context, m *temporal.TemporalMarker) error
	GetByID(dbc dbctx.Context, eventID string) (*temporal.TemporalMarker, error)
	ListByMaxDepth(dbc dbctx.Context, maxDepth int) ([]*temporal.TemporalMarker, error)
	Count(dbc dbctx.Context) (int64, error)
}

type markerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMarkerRepo(db *gorm.DB, baseLog *logger.Logger) MarkerRepo {
	return &markerRepo{
		db:  db,
		log: baseLog.With("repo", "MarkerRepo"),
	}
}

func (r *markerRepo) Create(dbc dbctx.Context, m *temporal.TemporalMarker) error {
	if m == nil {
		return nil
	}
	if err := dbc.DB(r.db).Omit("Parent").Create(m).Error; err != nil {
		return store.Classify("marker_repo.create", err)
	}
	return nil
}

func (r *markerRepo) GetByID(dbc dbctx.Context, eventID string) (*temporal.TemporalMarker, error) {
	var out temporal.TemporalMarker
	err := dbc.DB(r.db).Where("event_id = ?", eventID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify("marker_repo.get_by_id", err)
	}
	return &out, nil
}

// ListByMaxDepth returns markers at or above maxDepth, ordered by depth then id.
func (r *markerRepo) ListByMaxDepth(dbc dbctx.Context, maxDepth int) ([]*temporal.TemporalMarker, error) {
	var out []*temporal.TemporalMarker
	if err := dbc.DB(r.db).
		Where("depth <= ?", maxDepth).
		Order("depth ASC, event_id ASC").
		Find(&out).Error; err != nil {
		return nil, store.Classify("marker_repo.list_by_max_depth", err)
	}
	return out, nil
}

func (r *markerRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&temporal.TemporalMarker{}).Count(&n).Error; err != nil {
		return 0, store.Classify("marker_repo.count", err)
	}
	return n, nil
}
