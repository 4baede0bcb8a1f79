package httpapi

import (
	"github.com/gin-gonic/gin"

	"task-manager/internal/auth"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

// Server holds the handlers' dependencies.
type Server struct {
	employees    *service.EmployeeService
	tasks        *service.TaskService
	subtasks     *service.SubtaskService
	comments     *service.CommentService
	files        *service.FileStore
	tokens       *auth.TokenIssuer
	employeeRepo *repository.EmployeeRepository
}

func NewServer(employees *service.EmployeeService, tasks *service.TaskService, subtasks *service.SubtaskService, comments *service.CommentService, files *service.FileStore, tokens *auth.TokenIssuer, employeeRepo *repository.EmployeeRepository) *Server {
	return &Server{
		employees:    employees,
		tasks:        tasks,
		subtasks:     subtasks,
		comments:     comments,
		files:        files,
		tokens:       tokens,
		employeeRepo: employeeRepo,
	}
}

// Routes builds the gin engine with the full HTTP surface.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/employees", s.register)
	r.POST("/employees/login", s.login)
	r.GET("/employees", s.authRequired, s.listEmployees)
	r.GET("/employees/:employeeId", s.getEmployee)
	r.PUT("/employees/:employeeId", s.authRequired, s.updateEmployee)
	r.DELETE("/employees/:employeeId", s.authRequired, s.deleteEmployee)
	r.GET("/employees/department/:department", s.listEmployeesByDepartment)

	r.POST("/tasks", s.authRequired, s.createTask)
	r.GET("/tasks", s.authRequired, s.listTasks)
	r.GET("/tasks/:id", s.authRequired, s.getTask)
	r.PUT("/tasks/:id", s.authRequired, s.updateTask)
	r.DELETE("/tasks/:id", s.authRequired, s.deleteTask)
	r.GET("/tasks/employee/:userId", s.authRequired, s.listTasksForUser)
	r.POST("/tasks/:id/upload", s.authRequired, s.uploadTaskFiles)
	r.POST("/tasks/:id/files/delete", s.authRequired, s.deleteTaskFile)

	r.POST("/subtasks", s.authRequired, s.createSubtask)
	r.GET("/subtasks/:subtaskId", s.authRequired, s.getSubtask)
	r.PUT("/subtasks/:subtaskId", s.authRequired, s.updateSubtask)
	r.DELETE("/subtasks/:subtaskId", s.authRequired, s.deleteSubtask)
	// File routes on subtasks are open by contract.
	r.POST("/subtasks/:subtaskId/upload", s.uploadSubtaskFiles)
	r.POST("/subtasks/:subtaskId/files/delete", s.deleteSubtaskFile)

	r.POST("/tasks/:id/comments", s.authRequired, s.createTaskComment)
	r.GET("/tasks/:id/comments", s.authRequired, s.listTaskComments)
	r.POST("/subtasks/:subtaskId/comments", s.authRequired, s.createSubtaskComment)
	r.GET("/subtasks/:subtaskId/comments", s.authRequired, s.listSubtaskComments)
	r.PUT("/comments/:commentId", s.authRequired, s.updateComment)
	r.DELETE("/comments/:commentId", s.authRequired, s.deleteComment)
	r.POST("/comments/:commentId/reply", s.authRequired, s.replyToComment)

	return r
}
