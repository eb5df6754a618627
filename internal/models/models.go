package models

import "time"

type ProcessType string

const (
	ProcessNone      ProcessType = "none"
	ProcessSummarize ProcessType = "summarize"
	ProcessExpand    ProcessType = "expand"
)

type Note struct {
	ID               string      `json:"id" db:"id"`
	UserID           string      `json:"user_id" db:"user_id"`
	FolderID         *string     `json:"folder_id" db:"folder_id"`
	Title            string      `json:"title" db:"title"`
	Content          string      `json:"content" db:"content"`
	ProcessType      ProcessType `json:"process_type" db:"process_type"`
	ProcessedContent string      `json:"processed_content,omitempty" db:"processed_content"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// NewNote is the input for creating a note. A ProcessType other than none
// runs the content through the text generator before saving.
type NewNote struct {
	Title       string
	Content     string
	FolderID    *string
	ProcessType ProcessType
}

// NoteUpdate carries optional note changes. ClearFolder moves the note out of its folder.
type NoteUpdate struct {
	Title       *string
	Content     *string
	FolderID    *string
	ClearFolder bool
}

type NoteFolder struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"`
	NoteCount   int       `json:"note_count" db:"note_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Collection is the editable part of a deck or note folder.
type Collection struct {
	Name        string
	Description string
	Color       string
}

type Deck struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Color          string    `json:"color" db:"color"`
	FlashcardCount int       `json:"flashcard_count" db:"flashcard_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type Task struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Status      TaskStatus   `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	CompletedAt *time.Time   `json:"completed_at" db:"completed_at"`
	DueDate     *time.Time   `json:"due_date" db:"due_date"`
}

// TaskUpdate carries optional task changes. ClearDueDate removes the due date.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Priority     *TaskPriority
	Status       *TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
}

type User struct {
	ID           string    `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserUpdate carries optional profile changes. Password is the new plain-text password.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}
