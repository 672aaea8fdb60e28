package repos

import (
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos/auth"
	"github.com/vintry/contentops-backend/internal/data/repos/calendar"
	"github.com/vintry/contentops-backend/internal/data/repos/jobs"
	"github.com/vintry/contentops-backend/internal/data/repos/prompts"
	"github.com/vintry/contentops-backend/internal/data/repos/user"
	"github.com/vintry/contentops-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ContentCalendarRepo = calendar.ContentCalendarRepo
type CalendarEntryRepo = calendar.CalendarEntryRepo
type AnalysisSnapshotRepo = calendar.AnalysisSnapshotRepo

type PromptTemplateRepo = prompts.PromptTemplateRepo
type PromptFolderRepo = prompts.PromptFolderRepo
type SavedPromptRepo = prompts.SavedPromptRepo

type JobRunRepo = jobs.JobRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewContentCalendarRepo(db *gorm.DB, baseLog *logger.Logger) ContentCalendarRepo {
	return calendar.NewContentCalendarRepo(db, baseLog)
}
func NewCalendarEntryRepo(db *gorm.DB, baseLog *logger.Logger) CalendarEntryRepo {
	return calendar.NewCalendarEntryRepo(db, baseLog)
}
func NewAnalysisSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) AnalysisSnapshotRepo {
	return calendar.NewAnalysisSnapshotRepo(db, baseLog)
}

func NewPromptTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PromptTemplateRepo {
	return prompts.NewPromptTemplateRepo(db, baseLog)
}
func NewPromptFolderRepo(db *gorm.DB, baseLog *logger.Logger) PromptFolderRepo {
	return prompts.NewPromptFolderRepo(db, baseLog)
}
func NewSavedPromptRepo(db *gorm.DB, baseLog *logger.Logger) SavedPromptRepo {
	return prompts.NewSavedPromptRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}
