package app

import (
	"gorm.io/gorm"

	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	Tag             repos.TagRepo
	Question        repos.QuestionRepo
	JourneyTemplate repos.JourneyTemplateRepo
	Journey         repos.JourneyRepo
	JourneyStep     repos.JourneyStepRepo
	ImportRun       repos.ImportRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Tag:             repos.NewTagRepo(db, log),
		Question:        repos.NewQuestionRepo(db, log),
		JourneyTemplate: repos.NewJourneyTemplateRepo(db, log),
		Journey:         repos.NewJourneyRepo(db, log),
		JourneyStep:     repos.NewJourneyStepRepo(db, log),
		ImportRun:       repos.NewImportRunRepo(db, log),
	}
}
