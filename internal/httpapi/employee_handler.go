package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

type registerRequest struct {
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Password   string     `json:"password"`
	Role       model.Role `json:"role"`
	Department string     `json:"department"`
}

type loginRequest struct {
	EmployeeID string `json:"employeeId"`
	Password   string `json:"password"`
}

type employeeUpdateRequest struct {
	Name       *string     `json:"name"`
	Password   *string     `json:"password"`
	Department *string     `json:"department"`
	Role       *model.Role `json:"role"`
	EmployeeID *string     `json:"employeeId"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	employee, err := s.employees.Register(c.Request.Context(), service.RegisterInput{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	token, err := s.employees.Login(c.Request.Context(), req.EmployeeID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})
}

func (s *Server) listEmployees(c *gin.Context) {
	employees, err := s.employees.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (s *Server) getEmployee(c *gin.Context) {
	employee, err := s.employees.GetByEmployeeID(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (s *Server) listEmployeesByDepartment(c *gin.Context) {
	employees, err := s.employees.ListByDepartment(c.Request.Context(), c.Param("department"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (s *Server) updateEmployee(c *gin.Context) {
	var req employeeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	employee, err := s.employees.Update(c.Request.Context(), actorFrom(c), c.Param("employeeId"), service.EmployeeUpdateInput{
		Name:       req.Name,
		Password:   req.Password,
		Department: req.Department,
		Role:       req.Role,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

func (s *Server) deleteEmployee(c *gin.Context) {
	if err := s.employees.Delete(c.Request.Context(), actorFrom(c), c.Param("employeeId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
