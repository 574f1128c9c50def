package authz

// Denials the (role, operation, relationship) table cannot express live
// here so every service applies the same versions of them.

// CanMarkOwnAttendance: HR may never write its own attendance; an employee
// or manager may only when self clock-in is enabled. Admin always may.
func CanMarkOwnAttendance(actor Actor, allowSelfClockIn bool) bool {
	switch actor.NormalizedRole() {
	case RoleAdmin:
		return true
	case RoleHR:
		return false
	default:
		return allowSelfClockIn
	}
}

// CanDecideFinalLeave: nobody decides their own request, and an HR account
// cannot decide a request raised by another HR account (that escalates to
// admin).
func CanDecideFinalLeave(actor Actor, requesterID, requesterRole string) bool {
	if actor.EmployeeID == requesterID {
		return false
	}
	if actor.IsHR() && requesterRole == RoleHR {
		return false
	}
	return true
}
