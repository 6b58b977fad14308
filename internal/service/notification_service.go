package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/taskboard/taskboard-backend/internal/domain"
	"github.com/taskboard/taskboard-backend/internal/repository"
)

// TaskSummary is the slice of a task attached to a notification.
type TaskSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   domain.Status   `json:"status"`
	Priority domain.Priority `json:"priority"`
}

// NotificationResponse is the representation of a notification returned by
// the service.
type NotificationResponse struct {
	ID        string       `json:"id"`
	Message   string       `json:"message"`
	IsRead    bool         `json:"isRead"`
	UserID    string       `json:"userId"`
	TaskID    string       `json:"taskId"`
	Task      *TaskSummary `json:"task,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// NotificationService manages per-user notifications.
type NotificationService interface {
	CreateAssignmentNotification(taskID, assigneeID, assignerName string) (*NotificationResponse, error)
	ListForUser(userID string) ([]NotificationResponse, error)
	MarkAsRead(notificationID string) error
	MarkAllAsRead(userID string) error
	UnreadCount(userID string) (int64, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
	tasks         repository.TaskRepository
	log           *slog.Logger
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(notifications repository.NotificationRepository, tasks repository.TaskRepository, log *slog.Logger) NotificationService {
	return &notificationService{notifications: notifications, tasks: tasks, log: log}
}

// CreateAssignmentNotification records that assignerName delegated the task
// to assigneeID. The task is re-read so the message carries its title.
func (s *notificationService) CreateAssignmentNotification(taskID, assigneeID, assignerName string) (*NotificationResponse, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		Message: fmt.Sprintf("%s assigned you to task: %q", assignerName, task.Title),
		UserID:  assigneeID,
		TaskID:  taskID,
	}
	if err := s.notifications.Create(notification); err != nil {
		s.log.Error("failed to create notification", "taskId", taskID, "userId", assigneeID, "error", err)
		return nil, err
	}

	resp := toNotificationResponse(notification)
	return &resp, nil
}

func (s *notificationService) ListForUser(userID string) ([]NotificationResponse, error) {
	notifications, err := s.notifications.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, toNotificationResponse(&notifications[i]))
	}
	return responses, nil
}

func (s *notificationService) MarkAsRead(notificationID string) error {
	return s.notifications.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notifications.MarkAllAsRead(userID)
}

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	return s.notifications.CountUnread(userID)
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		UserID:    n.UserID,
		TaskID:    n.TaskID,
		CreatedAt: n.CreatedAt,
	}
	if n.Task != nil {
		resp.Task = &TaskSummary{
			ID:       n.Task.ID,
			Title:    n.Task.Title,
			Status:   n.Task.Status,
			Priority: n.Task.Priority,
		}
	}
	return resp
}
