package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"task-manager/internal/auth"
)

const actorKey = "actor"

// authRequired verifies the bearer token, checks the account still exists and
// attaches the actor to the request context.
func (s *Server) authRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	claims, err := s.tokens.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
		return
	}

	// The token may outlive the account; re-resolve the identity.
	employee, err := s.employeeRepo.FindByID(c.Request.Context(), claims.EmployeePK)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Employee not found"})
		return
	}

	c.Set(actorKey, auth.Actor{
		ID:         employee.ID,
		EmployeeID: employee.EmployeeID,
		Role:       employee.Role,
	})
	c.Next()
}

// actorFrom returns the authenticated actor attached by authRequired.
func actorFrom(c *gin.Context) auth.Actor {
	actor, _ := c.Get(actorKey)
	a, _ := actor.(auth.Actor)
	return a
}
