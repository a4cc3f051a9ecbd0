// File: internal/common/roles.go
package common

// Application roles. A profile's role is chosen at signup and only an admin
// can change it afterwards.
const (
	RoleCitizen   = "citizen"
	RoleCollector = "collector"
	RoleAdmin     = "admin"
)

// IsValidRole reports whether the given role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleCitizen, RoleCollector, RoleAdmin:
		return true
	}
	return false
}
