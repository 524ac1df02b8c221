package policy

import "strings"

// Role identifies a principal's authority level.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
	RoleUser    Role = "user"
	RoleViewer  Role = "viewer"
)

// Resource identifies a protected noun.
type Resource string

const (
	ResourceTickets       Resource = "tickets"
	ResourceUsers         Resource = "users"
	ResourceRoles         Resource = "roles"
	ResourceTeams         Resource = "teams"
	ResourceOrganizations Resource = "organizations"
	ResourceAssets        Resource = "assets"
	ResourceKnowledge     Resource = "knowledge"
)

// Action identifies an operation on a resource.
type Action string

const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAssign     Action = "assign"
	ActionTransition Action = "transition"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleAdmin, RoleManager, RoleAgent, RoleUser, RoleViewer}

// Resources lists every resource in declaration order.
var Resources = []Resource{
	ResourceTickets,
	ResourceUsers,
	ResourceRoles,
	ResourceTeams,
	ResourceOrganizations,
	ResourceAssets,
	ResourceKnowledge,
}

// Actions lists every action in declaration order.
var Actions = []Action{
	ActionCreate,
	ActionRead,
	ActionUpdate,
	ActionDelete,
	ActionAssign,
	ActionTransition,
}

var crud = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// policies is read-only after package init. A missing resource key means no
// permitted actions for that role.
var policies = map[Role]map[Resource][]Action{
	RoleAdmin: {
		ResourceTickets:       {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAssign, ActionTransition},
		ResourceUsers:         crud,
		ResourceRoles:         crud,
		ResourceTeams:         crud,
		ResourceOrganizations: {ActionRead, ActionUpdate},
		ResourceAssets:        crud,
		ResourceKnowledge:     crud,
	},
	RoleManager: {
		ResourceTickets:   {ActionCreate, ActionRead, ActionUpdate, ActionAssign, ActionTransition},
		ResourceUsers:     {ActionRead, ActionUpdate},
		ResourceTeams:     {ActionRead, ActionUpdate},
		ResourceAssets:    {ActionRead, ActionUpdate},
		ResourceKnowledge: {ActionCreate, ActionRead, ActionUpdate},
	},
	RoleAgent: {
		ResourceTickets:   {ActionCreate, ActionRead, ActionUpdate, ActionAssign, ActionTransition},
		ResourceKnowledge: {ActionCreate, ActionRead, ActionUpdate},
		ResourceAssets:    {ActionRead},
	},
	RoleUser: {
		ResourceTickets:   {ActionCreate, ActionRead},
		ResourceKnowledge: {ActionRead},
	},
	RoleViewer: {
		ResourceTickets:   {ActionRead},
		ResourceKnowledge: {ActionRead},
	},
}

// rank orders roles by authority for account management.
var rank = map[Role]int{
	RoleAdmin:   4,
	RoleManager: 3,
	RoleAgent:   2,
	RoleUser:    1,
	RoleViewer:  0,
}

// Outranks reports whether a carries more authority than b. Unknown roles rank lowest.
func Outranks(a, b Role) bool {
	ra, ok := rank[a]
	if !ok {
		ra = -1
	}
	rb, ok := rank[b]
	if !ok {
		rb = -1
	}
	return ra > rb
}

// Can reports whether role may perform action on resource.
func Can(role Role, resource Resource, action Action) bool {
	for _, allowed := range policies[role][resource] {
		if allowed == action {
			return true
		}
	}
	return false
}

// CanString evaluates untyped input. Any unrecognized value is denied.
func CanString(role, resource, action string) bool {
	r, ok := ParseRole(role)
	if !ok {
		return false
	}
	res, ok := ParseResource(resource)
	if !ok {
		return false
	}
	act, ok := ParseAction(action)
	if !ok {
		return false
	}
	return Can(r, res, act)
}

// Allowed returns the actions role may perform on resource in table order.
func Allowed(role Role, resource Resource) []Action {
	actions := policies[role][resource]
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// Permissions returns a copy of every resource entry granted to role.
func Permissions(role Role) map[Resource][]Action {
	entries := policies[role]
	out := make(map[Resource][]Action, len(entries))
	for resource := range entries {
		out[resource] = Allowed(role, resource)
	}
	return out
}

// ParseRole converts boundary input into a Role.
func ParseRole(val string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(val)))
	if _, ok := policies[role]; !ok {
		return "", false
	}
	return role, true
}

// ParseResource converts boundary input into a Resource.
func ParseResource(val string) (Resource, bool) {
	resource := Resource(strings.ToLower(strings.TrimSpace(val)))
	for _, known := range Resources {
		if known == resource {
			return resource, true
		}
	}
	return "", false
}

// ParseAction converts boundary input into an Action.
func ParseAction(val string) (Action, bool) {
	action := Action(strings.ToLower(strings.TrimSpace(val)))
	for _, known := range Actions {
		if known == action {
			return action, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	_, ok := policies[r]
	return ok
}
