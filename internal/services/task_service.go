package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound            = errors.New("task not found")
	ErrTitleRequired           = errors.New("title is required")
	ErrNoAssignees             = errors.New("at least one assignee is required")
	ErrAssigneeNotFound        = errors.New("assignee not found")
	ErrAssigneeInactive        = errors.New("assignee is inactive")
	ErrAssigneeWithoutCompany  = errors.New("assignee does not belong to a company")
	ErrInvalidStatus           = errors.New("invalid task status")
	ErrInvalidPriority         = errors.New("invalid task priority")
	ErrInvalidStatusTransition = errors.New("status transition not permitted")
	ErrNoCompanyAdmin          = errors.New("company has no active admin to attribute the action to")
)

// TaskService is the task lifecycle engine: it applies the task state machine
// and emits notifications as a side effect of creation and status changes.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	notifier *NotificationService
	policy   *auth.Policy
	logger   *slog.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, notifier *NotificationService, policy *auth.Policy, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// resolveCreator returns the real user id a task's creator field references.
// Company principals are mapped to the active admin of their company with the
// lowest user id; that choice is policy, not query accident.
func (s *TaskService) resolveCreator(actor auth.Principal) (uint64, error) {
	if id, ok := actor.RealUserID(); ok {
		return id, nil
	}

	companyID, _ := actor.CompanyID()
	admin, err := s.userRepo.FirstActiveAdmin(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNoCompanyAdmin
		}
		return 0, fmt.Errorf("failed to resolve company admin: %w", err)
	}
	return admin.ID, nil
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  uint64
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// CreateTask validates the assignee, persists a PENDING task attributed to a
// real creator, and notifies the parties involved.
func (s *TaskService) CreateTask(actor auth.Principal, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	assignee, err := s.loadAssignee(input.AssigneeID)
	if err != nil {
		return nil, err
	}

	target := auth.Target{Kind: auth.TargetTask, CompanyID: assignee.CompanyID}
	if d := s.policy.Decide(actor, auth.ActionTaskCreate, target); !d.Allowed {
		return nil, d.Err
	}

	creatorID, err := s.resolveCreator(actor)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      models.TaskStatusPending,
		Priority:    priority,
		CompanyID:   *assignee.CompanyID,
		AssigneeID:  assignee.ID,
		CreatorID:   creatorID,
		DueDate:     input.DueDate,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.notifier.Notify(assignee.ID, models.NotificationTaskAssigned,
		"New Task Assigned",
		fmt.Sprintf("You have been assigned the task %q", task.Title),
		&task.ID,
	)
	if creatorID != assignee.ID {
		s.notifier.Notify(creatorID, models.NotificationTaskCreatorAssigned,
			"Task Assigned",
			fmt.Sprintf("You assigned the task %q to %s", task.Title, assignee.Username),
			&task.ID,
		)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator")
}

// BulkCreateTasksInput represents input for creating one task per assignee
type BulkCreateTasksInput struct {
	Title       string
	Description string
	AssigneeIDs []uint64
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// BulkAssignmentFailure reports why one assignee could not be given a task
type BulkAssignmentFailure struct {
	UserID uint64 `json:"user_id"`
	Error  string `json:"error"`
}

// BulkCreateResult summarizes a bulk creation run
type BulkCreateResult struct {
	SuccessCount   int
	FailureCount   int
	TotalAttempted int
	Tasks          []models.Task
	Failed         []BulkAssignmentFailure
}

// BulkCreateTasks creates one task per assignee. Each assignee's task commits
// independently; failures are collected per id rather than aborting the batch.
// The creator receives exactly one consolidated notification naming everyone
// who was successfully assigned.
func (s *TaskService) BulkCreateTasks(actor auth.Principal, input BulkCreateTasksInput) (*BulkCreateResult, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if len(input.AssigneeIDs) == 0 {
		return nil, ErrNoAssignees
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	// Capability gate once up front; tenant checks run per assignee below.
	if d := s.policy.Decide(actor, auth.ActionTaskCreate, auth.Target{Kind: auth.TargetTask}); !d.Allowed {
		return nil, d.Err
	}

	creatorID, err := s.resolveCreator(actor)
	if err != nil {
		return nil, err
	}

	result := &BulkCreateResult{TotalAttempted: len(input.AssigneeIDs)}
	var assignedNames []string
	creatorAssigned := false

	for _, assigneeID := range input.AssigneeIDs {
		assignee, err := s.loadAssignee(assigneeID)
		if err != nil {
			result.Failed = append(result.Failed, BulkAssignmentFailure{
				UserID: assigneeID,
				Error:  bulkFailureMessage(err),
			})
			continue
		}

		target := auth.Target{Kind: auth.TargetTask, CompanyID: assignee.CompanyID}
		if d := s.policy.Decide(actor, auth.ActionTaskCreate, target); !d.Allowed {
			result.Failed = append(result.Failed, BulkAssignmentFailure{
				UserID: assigneeID,
				Error:  "Cannot assign tasks to users from other companies",
			})
			continue
		}

		task := &models.Task{
			Title:       strings.TrimSpace(input.Title),
			Description: input.Description,
			Status:      models.TaskStatusPending,
			Priority:    priority,
			CompanyID:   *assignee.CompanyID,
			AssigneeID:  assignee.ID,
			CreatorID:   creatorID,
			DueDate:     input.DueDate,
		}
		if err := s.taskRepo.Create(task); err != nil {
			result.Failed = append(result.Failed, BulkAssignmentFailure{
				UserID: assigneeID,
				Error:  err.Error(),
			})
			continue
		}

		result.Tasks = append(result.Tasks, *task)
		if assignee.ID == creatorID {
			creatorAssigned = true
		} else {
			assignedNames = append(assignedNames, assignee.Username)
		}
	}

	result.SuccessCount = len(result.Tasks)
	result.FailureCount = len(result.Failed)

	// One consolidated notification, never one per task.
	if len(assignedNames) > 0 && !creatorAssigned {
		var taskID *uint64
		if len(result.Tasks) > 0 {
			taskID = &result.Tasks[0].ID
		}
		title := "Task Assigned to Users"
		if len(assignedNames) == 1 {
			title = "Task Assigned to User"
		}
		s.notifier.Notify(creatorID, models.NotificationTaskCreatorAssigned,
			title,
			fmt.Sprintf("You assigned the task %q to %s", strings.TrimSpace(input.Title), joinNames(assignedNames)),
			taskID,
		)
	}

	return result, nil
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status      *models.TaskStatus
	AssigneeID  *uint64
	CreatorID   *uint64
	Search      string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Page        int
	PageSize    int
}

// ListTasks returns tasks visible to the actor: everything for the
// super-admin, the tenant's tasks for company and admin actors, and only
// assigned-or-created tasks for user-tier actors.
func (s *TaskService) ListTasks(actor auth.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:      input.Status,
		AssigneeID:  input.AssigneeID,
		CreatorID:   input.CreatorID,
		Search:      input.Search,
		DueDateFrom: input.DueDateFrom,
		DueDateTo:   input.DueDateTo,
		Page:        input.Page,
		PageSize:    input.PageSize,
	}

	switch actor.Role() {
	case models.RoleSuperAdmin:
		// unrestricted
	case models.RoleCompany, models.RoleAdmin:
		companyID, _ := actor.CompanyID()
		filter.CompanyID = &companyID
	default:
		companyID, ok := actor.CompanyID()
		if !ok {
			return []models.Task{}, 0, nil
		}
		userID, _ := actor.RealUserID()
		filter.CompanyID = &companyID
		filter.VisibleToUserID = &userID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// MyTasks returns the tasks assigned to the acting user.
func (s *TaskService) MyTasks(actor auth.Principal, status *models.TaskStatus, page, pageSize int) ([]models.Task, int64, error) {
	userID, ok := actor.RealUserID()
	if !ok {
		return []models.Task{}, 0, nil
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		AssigneeID: &userID,
		Status:     status,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task by id. A task in another tenant surfaces as
// not-found; a same-tenant denial stays an explicit denial.
func (s *TaskService) GetTask(actor auth.Principal, id uint64) (*models.Task, error) {
	task, err := s.findTask(id, "Assignee", "Creator")
	if err != nil {
		return nil, err
	}

	if d := s.policy.Decide(actor, auth.ActionTaskRead, auth.TaskTarget(task)); !d.Allowed {
		if errors.Is(d.Err, auth.ErrCrossTenantViolation) {
			return nil, ErrTaskNotFound
		}
		return nil, d.Err
	}
	return task, nil
}

// UpdateTaskInput represents input for a full task update
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateTask applies a full update. A status change embedded in the update
// goes through the same state machine and notification path as UpdateStatus.
func (s *TaskService) UpdateTask(actor auth.Principal, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.Decide(actor, auth.ActionTaskUpdate, auth.TaskTarget(task)); !d.Allowed {
		return nil, d.Err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	statusChanged := false
	oldStatus := task.Status
	if input.Status != nil && *input.Status != task.Status {
		if err := s.applyStatus(task, *input.Status); err != nil {
			return nil, err
		}
		statusChanged = true
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if statusChanged {
		s.notifyStatusChange(actor, task, oldStatus)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator")
}

// UpdateStatus moves a task through the state machine and notifies the
// creator of the change.
func (s *TaskService) UpdateStatus(actor auth.Principal, id uint64, newStatus models.TaskStatus) (*models.Task, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.Decide(actor, auth.ActionTaskUpdateStatus, auth.TaskTarget(task)); !d.Allowed {
		return nil, d.Err
	}

	oldStatus := task.Status
	if err := s.applyStatus(task, newStatus); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	if oldStatus != task.Status {
		s.notifyStatusChange(actor, task, oldStatus)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Creator")
}

// DeleteTask removes a task row. Deletion is hard and privileged.
func (s *TaskService) DeleteTask(actor auth.Principal, id uint64) error {
	task, err := s.findTask(id)
	if err != nil {
		return err
	}

	if d := s.policy.Decide(actor, auth.ActionTaskDelete, auth.TaskTarget(task)); !d.Allowed {
		return d.Err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// applyStatus enforces the state machine and keeps completed_at write-once:
// re-completing an already completed task never moves the timestamp.
func (s *TaskService) applyStatus(task *models.Task, newStatus models.TaskStatus) error {
	if !task.Status.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, task.Status, newStatus)
	}

	task.Status = newStatus
	if newStatus == models.TaskStatusCompleted && task.CompletedAt == nil {
		completedAt := s.now()
		task.CompletedAt = &completedAt
	}
	return nil
}

func (s *TaskService) notifyStatusChange(actor auth.Principal, task *models.Task, oldStatus models.TaskStatus) {
	if actorID, ok := actor.RealUserID(); ok && actorID == task.CreatorID {
		return
	}

	s.notifier.Notify(task.CreatorID, models.NotificationTaskStatusUpdated,
		"Task Status Updated",
		fmt.Sprintf("Task %q status updated from %s to %s by %s",
			task.Title, oldStatus, task.Status, actor.DisplayName()),
		&task.ID,
	)
}

func (s *TaskService) findTask(id uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) loadAssignee(id uint64) (*models.User, error) {
	assignee, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	if !assignee.IsActive {
		return nil, ErrAssigneeInactive
	}
	if assignee.CompanyID == nil {
		return nil, ErrAssigneeWithoutCompany
	}
	return assignee, nil
}

func bulkFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrAssigneeNotFound):
		return "User not found"
	case errors.Is(err, ErrAssigneeInactive):
		return "User is inactive"
	case errors.Is(err, ErrAssigneeWithoutCompany):
		return "User does not belong to a company"
	}
	return err.Error()
}

// joinNames renders "a", "a and b", or "a, b, and c".
func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}
