package authz

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// The model matches (role, operation, relationship). A policy row granting
// "any" covers own and subordinate requests; g rows give role inheritance
// so a manager keeps everything an employee may do.
const modelText = `
[request_definition]
r = sub, op, rel

[policy_definition]
p = sub, op, rel

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.op == p.op && (p.rel == "any" || p.rel == r.rel)
`

// One row per grant. The table is the single source of truth for who may
// call what; services derive the relationship and ask.
var policyRows = [][3]string{
	{RoleEmployee, OpAttendanceRead, "own"},
	{RoleEmployee, OpAttendanceMark, "own"},
	{RoleEmployee, OpLeaveRead, "own"},
	{RoleEmployee, OpLeaveSubmit, "own"},
	{RoleEmployee, OpLeaveCancel, "own"},
	{RoleEmployee, OpLeaveDelete, "own"},
	{RoleEmployee, OpRegularizeRequest, "own"},
	{RoleEmployee, OpPayrollRead, "own"},
	{RoleEmployee, OpWorkRulesRead, "any"},

	{RoleManager, OpAttendanceRead, "subordinate"},
	{RoleManager, OpLeaveRead, "subordinate"},
	{RoleManager, OpLeaveDecideManager, "subordinate"},

	{RoleHR, OpPunchIngest, "any"},
	{RoleHR, OpAttendanceRead, "any"},
	{RoleHR, OpAttendanceMark, "any"},
	{RoleHR, OpAttendanceUpdate, "any"},
	{RoleHR, OpLeaveRead, "any"},
	{RoleHR, OpLeaveSubmit, "any"},
	{RoleHR, OpLeaveDecideFinal, "any"},
	{RoleHR, OpLeaveCancel, "any"},
	{RoleHR, OpRegularizeProcess, "any"},
	{RoleHR, OpPayrollRead, "any"},
	{RoleHR, OpPayrollGenerate, "any"},
	{RoleHR, OpPayrollUpdateSlip, "any"},

	{RoleAdmin, OpAttendanceLock, "any"},
	{RoleAdmin, OpLeaveDelete, "any"},
	{RoleAdmin, OpPayrollMarkPaid, "any"},
	{RoleAdmin, OpWorkRulesUpdate, "any"},
}

var roleInheritance = [][2]string{
	{RoleManager, RoleEmployee},
	{RoleHR, RoleEmployee},
	{RoleAdmin, RoleHR},
	{RoleAdmin, RoleManager},
}

//go:generate mockgen -source=authz_service.go -destination=mock/authz_service_mock.go -package=mock
type Service interface {
	Allowed(actor Actor, operation string, rel Relationship) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, row := range policyRows {
		if _, err := e.AddPolicy(row[0], row[1], row[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range roleInheritance {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: e}, nil
}

func (s *service) Allowed(actor Actor, operation string, rel Relationship) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enforcer.Enforce(actor.NormalizedRole(), operation, string(rel))
}
