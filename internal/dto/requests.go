package dto

import "github.com/yukikurage/pmo-timeline-api/internal/models"

// Omitted fields of Update* requests are left untouched.

type CreateProjectRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description *string              `json:"description"`
	Status      *models.ThreadStatus `json:"status"`
	StartDate   *Date                `json:"start_date"`
	EndDate     *Date                `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *models.ThreadStatus `json:"status"`
	StartDate   *Date                `json:"start_date"`
	EndDate     *Date                `json:"end_date"`
}

type CreateThreadRequest struct {
	ProjectID   uint64               `json:"project_id" binding:"required"`
	Title       string               `json:"title" binding:"required"`
	ThreadType  string               `json:"thread_type"`
	StartDate   *Date                `json:"start_date"`
	DueDate     *Date                `json:"due_date" binding:"required"`
	Status      *models.ThreadStatus `json:"status"`
	OutcomeGoal string               `json:"outcome_goal"`
}

type UpdateThreadRequest struct {
	ProjectID   *uint64              `json:"project_id"`
	Title       *string              `json:"title"`
	ThreadType  *string              `json:"thread_type"`
	StartDate   *Date                `json:"start_date"`
	DueDate     *Date                `json:"due_date"`
	Status      *models.ThreadStatus `json:"status"`
	OutcomeGoal *string              `json:"outcome_goal"`
}

type CreateFromTemplateRequest struct {
	TemplateID  uint64 `json:"template_id" binding:"required"`
	ProjectID   uint64 `json:"project_id" binding:"required"`
	Title       string `json:"title"`
	StartDate   *Date  `json:"start_date"`
	DueDate     *Date  `json:"due_date" binding:"required"`
	OutcomeGoal string `json:"outcome_goal"`
}

type GrabRequest struct {
	MemberID uint64 `json:"member_id" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Note     string `json:"note"`
}

type ReleaseRequest struct {
	AssignmentID uint64 `json:"assignment_id" binding:"required"`
	Note         string `json:"note"`
}

type CreateTaskRequest struct {
	ThreadID   uint64               `json:"thread_id" binding:"required"`
	Title      string               `json:"title" binding:"required"`
	AssigneeID *uint64              `json:"assignee_id"`
	DueDate    *Date                `json:"due_date"`
	Status     *models.TaskStatus   `json:"status"`
	Priority   *models.TaskPriority `json:"priority"`
	Notes      string               `json:"notes"`
}

type UpdateTaskRequest struct {
	Title         *string              `json:"title"`
	AssigneeID    *uint64              `json:"assignee_id"`
	ClearAssignee bool                 `json:"clear_assignee"`
	DueDate       *Date                `json:"due_date"`
	ClearDueDate  bool                 `json:"clear_due_date"`
	Status        *models.TaskStatus   `json:"status"`
	Priority      *models.TaskPriority `json:"priority"`
	Notes         *string              `json:"notes"`
}

type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
	Save bool   `json:"save"`
}

type CreateMemberRequest struct {
	Name  string             `json:"name" binding:"required"`
	Role  *models.MemberRole `json:"role"`
	Color *string            `json:"color"`
}

type UpdateMemberRequest struct {
	Name  *string            `json:"name"`
	Role  *models.MemberRole `json:"role"`
	Color *string            `json:"color"`
}

type CreateStakeholderRequest struct {
	Name         string  `json:"name" binding:"required"`
	Type         *string `json:"type"`
	Organization *string `json:"organization"`
	Contact      *string `json:"contact"`
}

type UpdateStakeholderRequest struct {
	Name         *string `json:"name"`
	Type         *string `json:"type"`
	Organization *string `json:"organization"`
	Contact      *string `json:"contact"`
}

type ThreadStakeholderRequest struct {
	StakeholderID uint64 `json:"stakeholder_id" binding:"required"`
	RoleType      string `json:"role_type"`
}

type TemplateTaskRequest struct {
	Title     string `json:"title" binding:"required"`
	DayOffset int    `json:"day_offset"`
	Priority  string `json:"priority"`
	Notes     string `json:"notes"`
}

type CreateTemplateRequest struct {
	Name        string                `json:"name" binding:"required"`
	ThreadType  *string               `json:"thread_type"`
	Description *string               `json:"description"`
	Tasks       []TemplateTaskRequest `json:"tasks"`
}

type UpdateTemplateRequest struct {
	Name        *string               `json:"name"`
	ThreadType  *string               `json:"thread_type"`
	Description *string               `json:"description"`
	Tasks       []TemplateTaskRequest `json:"tasks"`
}

// NavigateRequest moves the timeline anchor by Offset weeks, or back to the
// current week when Today is set.
type NavigateRequest struct {
	Offset int  `json:"offset"`
	Today  bool `json:"today"`
}
