package domain

import (
	"github.com/vintry/contentops-backend/internal/domain/auth"
	"github.com/vintry/contentops-backend/internal/domain/calendar"
	"github.com/vintry/contentops-backend/internal/domain/jobs"
	"github.com/vintry/contentops-backend/internal/domain/prompts"
	"github.com/vintry/contentops-backend/internal/domain/user"
)

// Aliases so callers can import one package for all persisted models.

type (
	User      = user.User
	UserToken = auth.UserToken

	ContentCalendar  = calendar.ContentCalendar
	CalendarEntry    = calendar.CalendarEntry
	AnalysisSnapshot = calendar.AnalysisSnapshot

	PromptTemplate = prompts.PromptTemplate
	PromptFolder   = prompts.PromptFolder
	SavedPrompt    = prompts.SavedPrompt

	JobRun = jobs.JobRun
)

const (
	CalendarStatusUploaded  = calendar.CalendarStatusUploaded
	CalendarStatusAnalyzing = calendar.CalendarStatusAnalyzing
	CalendarStatusReady     = calendar.CalendarStatusReady
	CalendarStatusFailed    = calendar.CalendarStatusFailed

	JobTypeCalendarAnalysis = jobs.JobTypeCalendarAnalysis

	JobStatusQueued    = jobs.JobStatusQueued
	JobStatusRunning   = jobs.JobStatusRunning
	JobStatusSucceeded = jobs.JobStatusSucceeded
	JobStatusFailed    = jobs.JobStatusFailed
	JobStatusCanceled  = jobs.JobStatusCanceled

	EntityTypeContentCalendar = jobs.EntityTypeContentCalendar
)
