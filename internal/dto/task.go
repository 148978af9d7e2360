package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// TaskDTO represents a task in API responses. Assignee and creator names are
// flattened for list rendering; the full relations ride along when preloaded.
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	CompanyID    uint64              `json:"company_id"`
	AssigneeID   uint64              `json:"assignee_id"`
	CreatorID    uint64              `json:"creator_id"`
	AssigneeName string              `json:"assignee_name,omitempty"`
	CreatorName  string              `json:"creator_name,omitempty"`
	DueDate      *time.Time          `json:"due_date"`
	CompletedAt  *time.Time          `json:"completed_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// BulkTaskResponse summarizes a bulk task creation run
type BulkTaskResponse struct {
	SuccessCount    int                              `json:"success_count"`
	FailureCount    int                              `json:"failure_count"`
	TotalAttempted  int                              `json:"total_attempted"`
	SuccessfulTasks []TaskDTO                        `json:"successful_tasks"`
	FailedIDs       []services.BulkAssignmentFailure `json:"failed_assignments"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CompanyID:   task.CompanyID,
		AssigneeID:  task.AssigneeID,
		CreatorID:   task.CreatorID,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.Assignee != nil {
		dto.AssigneeName = task.Assignee.Username
	}
	if task.Creator != nil {
		dto.CreatorName = task.Creator.Username
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return TaskListResponse{
		Tasks: items,
		Pagination: utils.PaginationResponse{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}
}

// ToBulkTaskResponse converts a bulk creation result to BulkTaskResponse
func ToBulkTaskResponse(result *services.BulkCreateResult) BulkTaskResponse {
	tasks := make([]TaskDTO, len(result.Tasks))
	for i, task := range result.Tasks {
		tasks[i] = ToTaskDTO(task)
	}
	failed := result.Failed
	if failed == nil {
		failed = []services.BulkAssignmentFailure{}
	}
	return BulkTaskResponse{
		SuccessCount:    result.SuccessCount,
		FailureCount:    result.FailureCount,
		TotalAttempted:  result.TotalAttempted,
		SuccessfulTasks: tasks,
		FailedIDs:       failed,
	}
}
