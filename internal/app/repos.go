package app

import (
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type Repos struct {
	Auth     AuthRepos
	Calendar CalendarRepos
	Prompts  PromptRepos
	Jobs     JobRepos
}

type AuthRepos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
}

type CalendarRepos struct {
	ContentCalendar  repos.ContentCalendarRepo
	CalendarEntry    repos.CalendarEntryRepo
	AnalysisSnapshot repos.AnalysisSnapshotRepo
}

type PromptRepos struct {
	Template repos.PromptTemplateRepo
	Folder   repos.PromptFolderRepo
	Saved    repos.SavedPromptRepo
}

type JobRepos struct {
	JobRun repos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Auth: AuthRepos{
			User:      repos.NewUserRepo(db, log),
			UserToken: repos.NewUserTokenRepo(db, log),
		},
		Calendar: CalendarRepos{
			ContentCalendar:  repos.NewContentCalendarRepo(db, log),
			CalendarEntry:    repos.NewCalendarEntryRepo(db, log),
			AnalysisSnapshot: repos.NewAnalysisSnapshotRepo(db, log),
		},
		Prompts: PromptRepos{
			Template: repos.NewPromptTemplateRepo(db, log),
			Folder:   repos.NewPromptFolderRepo(db, log),
			Saved:    repos.NewSavedPromptRepo(db, log),
		},
		Jobs: JobRepos{
			JobRun: repos.NewJobRunRepo(db, log),
		},
	}
}
