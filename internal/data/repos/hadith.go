package repos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/store"
	"github.com/yungbote/ipksa-ingest/internal/domain/hadith"
	"github.com/yungbote/ipksa-ingest/internal/platform/dbctx"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

type HadithRepo interface {
	Create(dbc dbctx.Context, h *hadith.RawHadith) error
	GetByID(dbc dbctx.Context, id int64) (*hadith.RawHadith, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*hadith.RawHadith, error)
	Count(dbc dbctx.Context) (int64, error)
}

type hadithRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHadithRepo(db *gorm.DB, baseLog *logger.Logger) HadithRepo {
	return &hadithRepo{
		db:  db,
		log: baseLog.With("repo", "HadithRepo"),
	}
}

// Create inserts one hadith. A clash on id or (book_id, id_in_book) comes back
// as a duplicate-coded error.
func (r *hadithRepo) Create(dbc dbctx.Context, h *hadith.RawHadith) error {
	if h == nil {
		return nil
	}
	if err := dbc.DB(r.db).Create(h).Error; err != nil {
		return store.Classify("hadith_repo.create", err)
	}
	return nil
}

func (r *hadithRepo) GetByID(dbc dbctx.Context, id int64) (*hadith.RawHadith, error) {
	var out hadith.RawHadith
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Classify("hadith_repo.get_by_id", err)
	}
	return &out, nil
}

func (r *hadithRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*hadith.RawHadith, error) {
	var out []*hadith.RawHadith
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, store.Classify("hadith_repo.get_by_ids", err)
	}
	return out, nil
}

func (r *hadithRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&hadith.RawHadith{}).Count(&n).Error; err != nil {
		return 0, store.Classify("hadith_repo.count", err)
	}
	return n, nil
}
