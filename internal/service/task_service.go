package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskboard/taskboard-backend/internal/domain"
	"github.com/taskboard/taskboard-backend/internal/realtime"
	"github.com/taskboard/taskboard-backend/internal/repository"
)

// EventPublisher is the slice of the real-time hub the task service uses.
// The hub is constructed once at startup and injected here.
type EventPublisher interface {
	PublishToUser(userID, event string, data any)
}

// CreateTaskRequest holds the data needed to create a task.
type CreateTaskRequest struct {
	Title        string          `json:"title" validate:"required,min=1,max=100"`
	Description  string          `json:"description" validate:"required,min=1"`
	DueDate      string          `json:"dueDate" validate:"required"`
	Priority     domain.Priority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
	AssignedToID *string         `json:"assignedToId"`
}

// UpdateTaskRequest carries a partial task update. Pointer fields distinguish
// an omitted field from one set to its zero value; absent fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title        *string          `json:"title" validate:"omitempty,min=1,max=100"`
	Description  *string          `json:"description" validate:"omitempty,min=1"`
	DueDate      *string          `json:"dueDate"`
	Priority     *domain.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status       *domain.Status   `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS REVIEW COMPLETED"`
	AssignedToID *string          `json:"assignedToId"`
}

// TaskFilterRequest narrows and orders a task listing. All filters are
// optional and AND-combined.
type TaskFilterRequest struct {
	Status       *domain.Status   `validate:"omitempty,oneof=TODO IN_PROGRESS REVIEW COMPLETED"`
	Priority     *domain.Priority `validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssignedToMe bool
	CreatedByMe  bool
	Overdue      bool
	SortBy       string `validate:"omitempty,oneof=dueDate createdAt priority status"`
	SortOrder    string `validate:"omitempty,oneof=asc desc"`
}

// UserSummary is the denormalized creator/assignee attached to a task.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskResponse is the standard representation of a task returned by the
// service.
type TaskResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DueDate      time.Time       `json:"dueDate"`
	Priority     domain.Priority `json:"priority"`
	Status       domain.Status   `json:"status"`
	CreatorID    string          `json:"creatorId"`
	AssignedToID *string         `json:"assignedToId"`
	Creator      *UserSummary    `json:"creator,omitempty"`
	AssignedTo   *UserSummary    `json:"assignedTo,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// TaskStatistics are the per-user dashboard counts. The three counts are
// independent; overdue is not a subset of createdByMe.
type TaskStatistics struct {
	AssignedToMe int64 `json:"assignedToMe"`
	CreatedByMe  int64 `json:"createdByMe"`
	Overdue      int64 `json:"overdue"`
}

// TaskService contains the task lifecycle business logic: creation rules,
// ownership-based authorization and the assignment notification side effect.
type TaskService interface {
	Create(ctx context.Context, creatorID string, req CreateTaskRequest) (*TaskResponse, error)
	List(ctx context.Context, userID string, filter TaskFilterRequest) ([]TaskResponse, error)
	GetByID(ctx context.Context, taskID string) (*TaskResponse, error)
	Update(ctx context.Context, taskID, userID string, req UpdateTaskRequest) (*TaskResponse, error)
	Delete(ctx context.Context, taskID, userID string) error
	Statistics(ctx context.Context, userID string) (*TaskStatistics, error)
}

type taskService struct {
	tasks         repository.TaskRepository
	notifications NotificationService
	publisher     EventPublisher
	log           *slog.Logger
}

// NewTaskService creates a new instance of taskService.
func NewTaskService(tasks repository.TaskRepository, notifications NotificationService, publisher EventPublisher, log *slog.Logger) TaskService {
	return &taskService{
		tasks:         tasks,
		notifications: notifications,
		publisher:     publisher,
		log:           log,
	}
}

// parseDueDate accepts a calendar date or a full timestamp.
func parseDueDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable due date %q", domain.ErrValidationFailed, value)
}

// startOfToday is the cutoff for due-date validation; a due date earlier than
// this is rejected, today itself is allowed.
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *taskService) Create(ctx context.Context, creatorID string, req CreateTaskRequest) (*TaskResponse, error) {
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(startOfToday()) {
		return nil, domain.ErrInvalidDueDate
	}

	task := &domain.Task{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      dueDate,
		Priority:     req.Priority,
		Status:       domain.StatusTodo,
		CreatorID:    creatorID,
		AssignedToID: req.AssignedToID,
	}
	if err := s.tasks.Create(task); err != nil {
		s.log.Error("failed to create task", "error", err)
		return nil, err
	}

	full, err := s.tasks.FindByID(task.ID)
	if err != nil {
		return nil, err
	}

	if req.AssignedToID != nil && *req.AssignedToID != creatorID {
		s.notifyAssignment(full, *req.AssignedToID)
	}

	resp := toTaskResponse(full)
	return &resp, nil
}

// notifyAssignment records and pushes the assignment notification.
// Fire-and-forget: a failure here is logged and must never fail the task
// mutation that triggered it.
func (s *taskService) notifyAssignment(task *domain.Task, assigneeID string) {
	assignerName := "Task creator"
	if task.Creator != nil {
		assignerName = task.Creator.Name
	}
	notification, err := s.notifications.CreateAssignmentNotification(task.ID, assigneeID, assignerName)
	if err != nil {
		s.log.Error("failed to create assignment notification", "taskId", task.ID, "userId", assigneeID, "error", err)
		return
	}
	resp := toTaskResponse(task)
	s.publisher.PublishToUser(assigneeID, realtime.EventTaskCreated, resp)
	s.publisher.PublishToUser(assigneeID, realtime.EventNotificationNew, notification)
}

func (s *taskService) List(ctx context.Context, userID string, filter TaskFilterRequest) ([]TaskResponse, error) {
	filters := repository.TaskFilters{
		Status:   filter.Status,
		Priority: filter.Priority,
		Overdue:  filter.Overdue,
	}
	if filter.AssignedToMe {
		filters.AssignedToID = &userID
	}
	if filter.CreatedByMe {
		filters.CreatorID = &userID
	}

	sort := repository.TaskSort{Field: filter.SortBy, Desc: filter.SortOrder == "desc"}

	tasks, err := s.tasks.FindAll(filters, sort)
	if err != nil {
		s.log.Error("failed to list tasks", "error", err)
		return nil, err
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, toTaskResponse(&tasks[i]))
	}
	return responses, nil
}

func (s *taskService) GetByID(ctx context.Context, taskID string) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) Update(ctx context.Context, taskID, userID string, req UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return nil, err
	}

	isCreator := task.CreatorID == userID
	isAssignee := task.AssignedToID != nil && *task.AssignedToID == userID
	if !isCreator && !isAssignee {
		return nil, domain.ErrNotAuthorized
	}

	// An assignee who is not the creator may touch the status field only,
	// even when the submitted value equals the stored one.
	if isAssignee && !isCreator {
		if req.Title != nil || req.Description != nil || req.DueDate != nil ||
			req.Priority != nil || req.AssignedToID != nil {
			return nil, domain.ErrNotAuthorized
		}
	}

	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.DueDate != nil {
		// Updates may set any due date, past ones included.
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		patch["due_date"] = dueDate
	}
	if req.Priority != nil {
		patch["priority"] = *req.Priority
	}
	if req.Status != nil {
		patch["status"] = *req.Status
	}
	if req.AssignedToID != nil {
		patch["assigned_to_id"] = *req.AssignedToID
	}

	if len(patch) > 0 {
		if err := s.tasks.Update(taskID, patch); err != nil {
			s.log.Error("failed to update task", "taskId", taskID, "error", err)
			return nil, err
		}
	}

	updated, err := s.tasks.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	resp := toTaskResponse(updated)
	return &resp, nil
}

func (s *taskService) Delete(ctx context.Context, taskID, userID string) error {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return err
	}
	if task.CreatorID != userID {
		return domain.ErrNotAuthorized
	}
	if err := s.tasks.Delete(taskID); err != nil {
		s.log.Error("failed to delete task", "taskId", taskID, "error", err)
		return err
	}
	return nil
}

func (s *taskService) Statistics(ctx context.Context, userID string) (*TaskStatistics, error) {
	assigned, err := s.tasks.CountAssignedTo(userID)
	if err != nil {
		return nil, err
	}
	created, err := s.tasks.CountCreatedBy(userID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.CountOverdue(userID)
	if err != nil {
		return nil, err
	}
	return &TaskStatistics{AssignedToMe: assigned, CreatedByMe: created, Overdue: overdue}, nil
}

func toTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Status:       task.Status,
		CreatorID:    task.CreatorID,
		AssignedToID: task.AssignedToID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
	if task.Creator != nil {
		resp.Creator = &UserSummary{ID: task.Creator.ID, Name: task.Creator.Name, Email: task.Creator.Email}
	}
	if task.AssignedTo != nil {
		resp.AssignedTo = &UserSummary{ID: task.AssignedTo.ID, Name: task.AssignedTo.Name, Email: task.AssignedTo.Email}
	}
	return resp
}
