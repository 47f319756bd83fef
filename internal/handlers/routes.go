package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/pmo-timeline-api/internal/middleware"
	"github.com/yukikurage/pmo-timeline-api/internal/services"
)

// Services bundles what the API handlers depend on.
type Services struct {
	Projects     *services.ProjectService
	Threads      *services.ThreadService
	Ledger       *services.LedgerService
	Timeline     *services.TimelineService
	Tasks        *services.TaskService
	Members      *services.MemberService
	Stakeholders *services.StakeholderService
	Templates    *services.TemplateService
	Reports      *services.ReportService
}

// RegisterRoutes mounts every API resource on api. Authentication and
// sessions are the caller's concern.
func RegisterRoutes(api *gin.RouterGroup, svc Services) {
	projectHandler := NewProjectHandler(svc.Projects)
	threadHandler := NewThreadHandler(svc.Threads, svc.Ledger, svc.Timeline)
	taskHandler := NewTaskHandler(svc.Tasks)
	memberHandler := NewMemberHandler(svc.Members)
	stakeholderHandler := NewStakeholderHandler(svc.Stakeholders)
	templateHandler := NewTemplateHandler(svc.Templates)
	timelineHandler := NewTimelineHandler(svc.Timeline)
	exportHandler := NewExportHandler(svc.Reports)

	projects := api.Group("/projects")
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PATCH("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)
	}

	threads := api.Group("/threads")
	{
		threads.GET("", threadHandler.ListThreads)
		threads.POST("", threadHandler.CreateThread)
		threads.POST("/from-template", threadHandler.CreateFromTemplate)

		thread := threads.Group("/:id", middleware.LoadThread(svc.Threads))
		thread.GET("", threadHandler.GetThread)
		thread.PATCH("", threadHandler.UpdateThread)
		thread.DELETE("", threadHandler.DeleteThread)
		thread.POST("/assign", threadHandler.Assign)
		thread.POST("/release", threadHandler.Release)
		thread.GET("/current-assignments", threadHandler.CurrentAssignments)
		thread.GET("/history", threadHandler.History)
		thread.GET("/events", threadHandler.Events)
		thread.GET("/segments", threadHandler.Segments)
		thread.POST("/tasks/generate", taskHandler.GenerateTasks)
		thread.GET("/stakeholders", stakeholderHandler.ListThreadStakeholders)
		thread.POST("/stakeholders", stakeholderHandler.AddThreadStakeholder)
		thread.DELETE("/stakeholders/:stakeholder_id", stakeholderHandler.RemoveThreadStakeholder)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	members := api.Group("/members")
	{
		members.GET("", memberHandler.ListMembers)
		members.POST("", memberHandler.CreateMember)
		members.GET("/:id", memberHandler.GetMember)
		members.PATCH("/:id", memberHandler.UpdateMember)
		members.DELETE("/:id", memberHandler.DeleteMember)
	}

	stakeholders := api.Group("/stakeholders")
	{
		stakeholders.GET("", stakeholderHandler.ListStakeholders)
		stakeholders.POST("", stakeholderHandler.CreateStakeholder)
		stakeholders.GET("/:id", stakeholderHandler.GetStakeholder)
		stakeholders.PATCH("/:id", stakeholderHandler.UpdateStakeholder)
		stakeholders.DELETE("/:id", stakeholderHandler.DeleteStakeholder)
	}

	templates := api.Group("/templates")
	{
		templates.GET("", templateHandler.ListTemplates)
		templates.POST("", templateHandler.CreateTemplate)
		templates.GET("/:id", templateHandler.GetTemplate)
		templates.GET("/:id/tasks", templateHandler.ListTemplateTasks)
		templates.PATCH("/:id", templateHandler.UpdateTemplate)
		templates.DELETE("/:id", templateHandler.DeleteTemplate)
	}

	api.GET("/timeline", timelineHandler.GetTimeline)
	api.POST("/timeline/navigate", timelineHandler.Navigate)
	api.GET("/export", exportHandler.Export)
}
