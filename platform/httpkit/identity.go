// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Manager-class roles may view every alert and administer assignments.
const (
	RoleStaff        = "staff"
	RoleManager      = "manager"
	RoleStoreManager = "store_manager"
	// RoleProducer is the perception pipeline's API client.
	RoleProducer = "producer"
)

// Identity represents the authenticated employee's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access employee information without depending on Gin.
type Identity interface {
	// EmployeeID returns the authenticated employee's ID (e.g. "E201").
	EmployeeID() string
	// Roles returns the employee's assigned roles.
	Roles() []string
	// HasRole checks if the employee has a specific role.
	HasRole(role string) bool
	// IsManager reports whether the employee holds a manager-class role.
	IsManager() bool
	// IsAuthenticated returns true if the employee is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	employeeID    string
	roles         []string
	authenticated bool
}

func (i *identity) EmployeeID() string {
	return i.employeeID
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsManager() bool {
	return i.HasRole(RoleManager) || i.HasRole(RoleStoreManager)
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if employee info is not present.
func GetIdentity(c *gin.Context) Identity {
	employeeID, idOK := c.Get(ContextEmployeeIDKey)
	roles, rolesOK := c.Get(ContextRolesKey)

	if !idOK {
		return &identity{authenticated: false}
	}

	id, ok := employeeID.(string)
	if !ok || id == "" {
		return &identity{authenticated: false}
	}

	var roleList []string
	if rolesOK {
		roleList, _ = roles.([]string)
	}

	return &identity{
		employeeID:    id,
		roles:         roleList,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the employee is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
