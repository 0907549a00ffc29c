package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/repos"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

type Repos struct {
	Hadith repos.HadithRepo
	Marker repos.MarkerRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Debug("Wiring repos...")
	return Repos{
		Hadith: repos.NewHadithRepo(db, log),
		Marker: repos.NewMarkerRepo(db, log),
	}
}
