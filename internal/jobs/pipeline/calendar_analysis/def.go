package calendar_analysis

import (
	"gorm.io/gorm"

	"github.com/vintry/contentops-backend/internal/data/repos"
	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/platform/logger"
	"github.com/vintry/contentops-backend/internal/services"
)

type Pipeline struct {
	db  *gorm.DB
	log *logger.Logger

	calendarRepo    repos.ContentCalendarRepo
	analysisService services.AnalysisService
	notifier        services.CalendarNotifier
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	calendarRepo repos.ContentCalendarRepo,
	analysisService services.AnalysisService,
	notifier services.CalendarNotifier,
) *Pipeline {
	return &Pipeline{
		db:              db,
		log:             baseLog.With("job", "calendar_analysis"),
		calendarRepo:    calendarRepo,
		analysisService: analysisService,
		notifier:        notifier,
	}
}

func (p *Pipeline) Type() string { return types.JobTypeCalendarAnalysis }
