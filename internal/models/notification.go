package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned        NotificationType = "TASK_ASSIGNED"
	NotificationTaskStatusUpdated   NotificationType = "TASK_STATUS_UPDATED"
	NotificationTaskCompleted       NotificationType = "TASK_COMPLETED"
	NotificationTaskDueSoon         NotificationType = "TASK_DUE_SOON"
	NotificationTaskCreatorAssigned NotificationType = "TASK_CREATOR_ASSIGNED"
)

// Notification always targets a real user row; company principals have no
// inbox, so dispatch is suppressed for targets without a backing user.
type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	TaskID    *uint64          `gorm:"index" json:"task_id"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
