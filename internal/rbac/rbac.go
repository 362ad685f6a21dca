// Package rbac holds the static role/permission table and the route access
// table. Both are loaded once at process start from an embedded policy file;
// all lookups afterwards are pure reads over immutable data.
package rbac

import (
	_ "embed"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"
)

// Role identifies a company-scoped actor kind.
type Role string

const (
	RoleEmployee     Role = "EMPLOYEE"
	RoleManager      Role = "MANAGER"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleBranchAdmin  Role = "BRANCH_ADMIN"
)

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleCompanyAdmin, RoleBranchAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Permission names a single allowed action.
type Permission string

const (
	PermWorkCreate               Permission = "work.create"
	PermWorkSubmitOwn            Permission = "work.submit.own"
	PermWorkViewOwn              Permission = "work.view.own"
	PermWorkViewTeam             Permission = "work.view.team"
	PermWorkViewCompany          Permission = "work.view.company"
	PermWorkApproveAny           Permission = "work.approve.any"
	PermWorkApproveDirectReports Permission = "work.approve.direct_reports"
	PermEmployeeManage           Permission = "employee.manage"
	PermManagerManage            Permission = "manager.manage"
	PermTeamManage               Permission = "team.manage"
	PermSettingsWrite            Permission = "settings.write"
	PermReportsViewTeam          Permission = "reports.view.team"
	PermReportsViewCompany       Permission = "reports.view.company"
)

// RouteRule maps a path glob to the roles allowed through it. Globs use
// path.Match syntax, so "*" matches exactly one path segment.
type RouteRule struct {
	Pattern string
	Roles   []Role
}

// Policy is the immutable role/permission mapping plus the ordered route
// access table.
type Policy struct {
	grants map[Role]map[Permission]struct{}
	routes []RouteRule
}

//go:embed policy.yaml
var policyYAML []byte

// Default is the policy shipped with the binary.
var Default = mustLoad(policyYAML)

type policyFile struct {
	Roles  map[string][]string `yaml:"roles"`
	Routes []struct {
		Pattern string   `yaml:"pattern"`
		Roles   []string `yaml:"roles"`
	} `yaml:"routes"`
}

// Load parses a policy document and validates every role name and route
// pattern in it.
func Load(data []byte) (*Policy, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}

	p := &Policy{grants: make(map[Role]map[Permission]struct{}, len(file.Roles))}

	for name, perms := range file.Roles {
		role, err := ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("policy roles: %w", err)
		}
		set := make(map[Permission]struct{}, len(perms))
		for _, perm := range perms {
			set[Permission(perm)] = struct{}{}
		}
		p.grants[role] = set
	}

	for _, r := range file.Routes {
		if _, err := path.Match(r.Pattern, "/"); err != nil {
			return nil, fmt.Errorf("policy route %q: %w", r.Pattern, err)
		}
		roles := make([]Role, 0, len(r.Roles))
		for _, name := range r.Roles {
			role, err := ParseRole(name)
			if err != nil {
				return nil, fmt.Errorf("policy route %q: %w", r.Pattern, err)
			}
			roles = append(roles, role)
		}
		p.routes = append(p.routes, RouteRule{Pattern: r.Pattern, Roles: roles})
	}

	return p, nil
}

func mustLoad(data []byte) *Policy {
	p, err := Load(data)
	if err != nil {
		panic(fmt.Sprintf("rbac: embedded policy is invalid: %v", err))
	}
	return p
}

// HasPermission reports whether the role's fixed permission set contains perm.
func (p *Policy) HasPermission(role Role, perm Permission) bool {
	_, ok := p.grants[role][perm]
	return ok
}

// RouteAllowed matches the request path against the route table. The first
// matching pattern decides; a path matching no pattern is denied.
func (p *Policy) RouteAllowed(role Role, requestPath string) bool {
	for _, rule := range p.routes {
		matched, err := path.Match(rule.Pattern, requestPath)
		if err != nil || !matched {
			continue
		}
		for _, allowed := range rule.Roles {
			if allowed == role {
				return true
			}
		}
		return false
	}
	return false
}
