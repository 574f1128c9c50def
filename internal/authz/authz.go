// Package authz evaluates the authorization policy table. Every guarded
// operation is a (role, operation, relationship) lookup against a fixed
// casbin policy instead of ad hoc role branching inside the services.
package authz

import "strings"

// Roles carried in the auth token.
const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// Relationship between the actor and the resource the operation touches.
type Relationship string

const (
	RelOwn         Relationship = "own"
	RelSubordinate Relationship = "subordinate"
	RelAny         Relationship = "any"
)

// Operations guarded by the policy table.
const (
	OpPunchIngest        = "punch:ingest"
	OpAttendanceRead     = "attendance:read"
	OpAttendanceMark     = "attendance:mark"
	OpAttendanceUpdate   = "attendance:update"
	OpAttendanceLock     = "attendance:lock"
	OpLeaveRead          = "leave:read"
	OpLeaveSubmit        = "leave:submit"
	OpLeaveDecideManager = "leave:decide_manager"
	OpLeaveDecideFinal   = "leave:decide_final"
	OpLeaveCancel        = "leave:cancel"
	OpLeaveDelete        = "leave:delete"
	OpRegularizeRequest  = "regularization:request"
	OpRegularizeProcess  = "regularization:process"
	OpPayrollRead        = "payroll:read"
	OpPayrollGenerate    = "payroll:generate"
	OpPayrollMarkPaid    = "payroll:mark_paid"
	OpPayrollUpdateSlip  = "payroll:update_slip"
	OpWorkRulesRead      = "workrules:read"
	OpWorkRulesUpdate    = "workrules:update"
)

// Actor is the authenticated caller as decoded from the token.
type Actor struct {
	EmployeeID string
	CompanyID  string
	Role       string
}

func (a Actor) NormalizedRole() string {
	return strings.ToUpper(strings.TrimSpace(a.Role))
}

func (a Actor) IsAdmin() bool {
	return a.NormalizedRole() == RoleAdmin
}

func (a Actor) IsHR() bool {
	return a.NormalizedRole() == RoleHR
}

// Privileged reports whether the actor may act on records of other
// employees at all.
func (a Actor) Privileged() bool {
	switch a.NormalizedRole() {
	case RoleAdmin, RoleHR, RoleManager:
		return true
	default:
		return false
	}
}

// RelationTo derives the actor's relationship to the employee a record
// belongs to. managerID is the target employee's reporting manager.
func (a Actor) RelationTo(targetEmployeeID, managerID string) Relationship {
	if a.EmployeeID == targetEmployeeID {
		return RelOwn
	}
	if managerID != "" && a.EmployeeID == managerID {
		return RelSubordinate
	}
	return RelAny
}
