package service

import (
	"fmt"
	"time"

	"github.com/taskboard/taskboard-backend/internal/domain"
	"github.com/taskboard/taskboard-backend/internal/repository"
)

// --- in-memory task repository ---

type fakeTaskRepo struct {
	seq   int
	tasks map[string]*domain.Task
	users map[string]*domain.User

	findAllResult []domain.Task
	lastFilters   repository.TaskFilters
	lastSort      repository.TaskSort

	createErr error
	updateErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks: make(map[string]*domain.Task),
		users: make(map[string]*domain.User),
	}
}

func (f *fakeTaskRepo) addUser(id, name, email string) {
	f.users[id] = &domain.User{ID: id, Name: name, Email: email}
}

func (f *fakeTaskRepo) Create(task *domain.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	if task.ID == "" {
		f.seq++
		task.ID = fmt.Sprintf("task-%d", f.seq)
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *fakeTaskRepo) FindByID(id string) (*domain.Task, error) {
	stored, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	task := *stored
	task.Creator = f.users[task.CreatorID]
	if task.AssignedToID != nil {
		task.AssignedTo = f.users[*task.AssignedToID]
	}
	return &task, nil
}

func (f *fakeTaskRepo) FindAll(filters repository.TaskFilters, sort repository.TaskSort) ([]domain.Task, error) {
	f.lastFilters = filters
	f.lastSort = sort
	return f.findAllResult, nil
}

func (f *fakeTaskRepo) Update(id string, patch map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	task, ok := f.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	for column, value := range patch {
		switch column {
		case "title":
			task.Title = value.(string)
		case "description":
			task.Description = value.(string)
		case "due_date":
			task.DueDate = value.(time.Time)
		case "priority":
			task.Priority = value.(domain.Priority)
		case "status":
			task.Status = value.(domain.Status)
		case "assigned_to_id":
			assignee := value.(string)
			task.AssignedToID = &assignee
		}
	}
	task.UpdatedAt = time.Now()
	return nil
}

func (f *fakeTaskRepo) Delete(id string) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) CountAssignedTo(userID string) (int64, error) {
	var count int64
	for _, task := range f.tasks {
		if task.AssignedToID != nil && *task.AssignedToID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskRepo) CountCreatedBy(userID string) (int64, error) {
	var count int64
	for _, task := range f.tasks {
		if task.CreatorID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskRepo) CountOverdue(userID string) (int64, error) {
	var count int64
	now := time.Now()
	for _, task := range f.tasks {
		if task.AssignedToID != nil && *task.AssignedToID == userID && task.Overdue(now) {
			count++
		}
	}
	return count, nil
}

// --- in-memory user repository ---

type fakeUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(user *domain.User) error {
	if user.ID == "" {
		f.seq++
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) FindByID(id string) (*domain.User, error) {
	stored, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := *stored
	return &user, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, stored := range f.users {
		if stored.Email == email {
			user := *stored
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(user *domain.User) error {
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetAll() ([]domain.User, error) {
	users := make([]domain.User, 0, len(f.users))
	for _, stored := range f.users {
		users = append(users, *stored)
	}
	return users, nil
}

// --- in-memory notification repository ---

type fakeNotificationRepo struct {
	seq           int
	notifications map[string]*domain.Notification
	createErr     error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*domain.Notification)}
}

func (f *fakeNotificationRepo) Create(notification *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if notification.ID == "" {
		f.seq++
		notification.ID = fmt.Sprintf("notification-%d", f.seq)
	}
	notification.CreatedAt = time.Now()
	stored := *notification
	f.notifications[notification.ID] = &stored
	return nil
}

func (f *fakeNotificationRepo) FindByUserID(userID string) ([]domain.Notification, error) {
	var result []domain.Notification
	for _, stored := range f.notifications {
		if stored.UserID == userID {
			result = append(result, *stored)
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkAsRead(id string) error {
	stored, ok := f.notifications[id]
	if !ok {
		return domain.ErrNotificationNotFound
	}
	stored.IsRead = true
	return nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(userID string) error {
	for _, stored := range f.notifications {
		if stored.UserID == userID {
			stored.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(userID string) (int64, error) {
	var count int64
	for _, stored := range f.notifications {
		if stored.UserID == userID && !stored.IsRead {
			count++
		}
	}
	return count, nil
}

// --- event publisher spy ---

type publishedEvent struct {
	userID string
	event  string
	data   any
}

type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) PublishToUser(userID, event string, data any) {
	f.events = append(f.events, publishedEvent{userID: userID, event: event, data: data})
}

func (f *fakePublisher) eventsFor(userID string) []publishedEvent {
	var result []publishedEvent
	for _, e := range f.events {
		if e.userID == userID {
			result = append(result, e)
		}
	}
	return result
}
