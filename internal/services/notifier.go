package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/vintry/contentops-backend/internal/domain"
	"github.com/vintry/contentops-backend/internal/realtime"
)

// =========================
// Job notifier
// =========================

// JobNotifier publishes job lifecycle transitions to the owner's SSE channel.
// Every transition is a single JobStatusChanged event; clients read the
// status field instead of switching on event names.
type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
	JobCanceled(userID uuid.UUID, job *types.JobRun)
	JobRestarted(userID uuid.UUID, job *types.JobRun)
}

type jobNotifier struct {
	emit SSEEmitter
}

func NewJobNotifier(emit SSEEmitter) JobNotifier {
	return &jobNotifier{emit: emit}
}

func (n *jobNotifier) emitStatus(userID uuid.UUID, job *types.JobRun, extra map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	data := map[string]any{
		"job_id":   safeJobID(job),
		"job_type": safeJobType(job),
		"status":   safeJobStatus(job),
		"job":      job,
	}
	for k, v := range extra {
		data[k] = v
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventJobStatusChanged,
		Data:    data,
	})
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.emitStatus(userID, job, nil)
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	n.emitStatus(userID, job, map[string]any{
		"stage":    stage,
		"progress": progress,
		"message":  message,
	})
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	n.emitStatus(userID, job, map[string]any{
		"stage": stage,
		"error": errorMessage,
	})
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	n.emitStatus(userID, job, nil)
}

func (n *jobNotifier) JobCanceled(userID uuid.UUID, job *types.JobRun) {
	n.emitStatus(userID, job, nil)
}

func (n *jobNotifier) JobRestarted(userID uuid.UUID, job *types.JobRun) {
	n.emitStatus(userID, job, nil)
}

// =========================
// Calendar notifier
// =========================

// CalendarNotifier announces analysis outcomes for a calendar so open
// dashboards refresh without polling.
type CalendarNotifier interface {
	CalendarAnalyzed(userID uuid.UUID, calendar *types.ContentCalendar, snapshot *types.AnalysisSnapshot)
	CalendarFailed(userID uuid.UUID, calendar *types.ContentCalendar, stage string, errorMessage string)
}

type calendarNotifier struct {
	emit SSEEmitter
}

func NewCalendarNotifier(emit SSEEmitter) CalendarNotifier {
	return &calendarNotifier{emit: emit}
}

func (n *calendarNotifier) CalendarAnalyzed(userID uuid.UUID, calendar *types.ContentCalendar, snapshot *types.AnalysisSnapshot) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	data := map[string]any{
		"calendar_id": safeCalendarID(calendar),
		"calendar":    calendar,
	}
	if snapshot != nil {
		data["total_rows"] = snapshot.TotalRows
		data["published_count"] = snapshot.PublishedCount
		data["cluster_count"] = snapshot.ClusterCount
		data["generated_at"] = snapshot.GeneratedAt
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventCalendarAnalyzed,
		Data:    data,
	})
}

func (n *calendarNotifier) CalendarFailed(userID uuid.UUID, calendar *types.ContentCalendar, stage string, errorMessage string) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventCalendarFailed,
		Data: map[string]any{
			"calendar_id": safeCalendarID(calendar),
			"calendar":    calendar,
			"stage":       stage,
			"error":       errorMessage,
		},
	})
}

// =========================
// User notifier
// =========================

type UserNotifier interface {
	UserNameChanged(userID uuid.UUID, user *types.User)
	UserAvatarChanged(userID uuid.UUID, user *types.User)
}

type userNotifier struct {
	emit SSEEmitter
}

func NewUserNotifier(emit SSEEmitter) UserNotifier {
	return &userNotifier{emit: emit}
}

func (n *userNotifier) UserNameChanged(userID uuid.UUID, user *types.User) {
	if n == nil || n.emit == nil || userID == uuid.Nil || user == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventUserNameChanged,
		Data: map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"brand_name": user.BrandName,
		},
	})
}

func (n *userNotifier) UserAvatarChanged(userID uuid.UUID, user *types.User) {
	if n == nil || n.emit == nil || userID == uuid.Nil || user == nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventUserAvatarChanged,
		Data: map[string]any{
			"avatar_url": user.AvatarURL,
		},
	})
}

// =========================
// helpers
// =========================

func safeCalendarID(calendar *types.ContentCalendar) uuid.UUID {
	if calendar == nil {
		return uuid.Nil
	}
	return calendar.ID
}

func safeJobID(job *types.JobRun) uuid.UUID {
	if job == nil {
		return uuid.Nil
	}
	return job.ID
}

func safeJobType(job *types.JobRun) string {
	if job == nil {
		return ""
	}
	return job.JobType
}

func safeJobStatus(job *types.JobRun) string {
	if job == nil {
		return ""
	}
	return job.Status
}
