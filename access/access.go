// Package access maps user roles onto the application modules they may open.
package access

import (
	"fmt"
	"sort"
	"strings"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
	RoleViewer  = "viewer"
)

// Modules
const (
	ModuleDashboard     = "dashboard"
	ModuleUsers         = "users"
	ModuleRoles         = "roles"
	ModulePermissions   = "permissions"
	ModuleTerms         = "terms"
	ModuleAnalytics     = "analytics"
	ModuleParts         = "parts"
	ModuleStockTransfer = "stock_transfer"
	ModuleChat          = "chat"
	ModuleConversations = "conversations"
)

// AllModules lists every module in navigation order
var AllModules = []string{
	ModuleDashboard,
	ModuleUsers,
	ModuleRoles,
	ModulePermissions,
	ModuleTerms,
	ModuleAnalytics,
	ModuleParts,
	ModuleStockTransfer,
	ModuleChat,
	ModuleConversations,
}

// DefaultRoleModules is the built-in capability table
var DefaultRoleModules = map[string][]string{
	RoleAdmin: AllModules,
	RoleManager: {
		ModuleDashboard, ModuleUsers, ModuleTerms, ModuleAnalytics,
		ModuleParts, ModuleStockTransfer, ModuleChat, ModuleConversations,
	},
	RoleAgent: {
		ModuleDashboard, ModuleParts, ModuleStockTransfer, ModuleChat, ModuleConversations,
	},
	RoleViewer: {
		ModuleDashboard, ModuleParts, ModuleConversations,
	},
}

// Table is an immutable role to module capability table
type Table struct {
	modules map[string]map[string]bool
}

// NewTable builds a table from the defaults with per-role overrides applied.
// An override replaces the role's module list; unknown module names are rejected.
func NewTable(overrides map[string][]string) (*Table, error) {
	merged := make(map[string][]string, len(DefaultRoleModules)+len(overrides))
	for role, modules := range DefaultRoleModules {
		merged[role] = modules
	}
	for role, modules := range overrides {
		merged[normalize(role)] = modules
	}

	known := make(map[string]bool, len(AllModules))
	for _, m := range AllModules {
		known[m] = true
	}

	t := &Table{modules: make(map[string]map[string]bool, len(merged))}
	for role, modules := range merged {
		set := make(map[string]bool, len(modules))
		for _, m := range modules {
			m = normalize(m)
			if !known[m] {
				return nil, fmt.Errorf("role %q references unknown module %q", role, m)
			}
			set[m] = true
		}
		t.modules[role] = set
	}
	return t, nil
}

// Allowed reports whether role may open module. Unknown roles get nothing.
func (t *Table) Allowed(role, module string) bool {
	return t.modules[normalize(role)][normalize(module)]
}

// ModulesFor returns the modules granted to role in navigation order
func (t *Table) ModulesFor(role string) []string {
	set := t.modules[normalize(role)]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for _, m := range AllModules {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}

// Roles returns every role in the table, sorted
func (t *Table) Roles() []string {
	roles := make([]string, 0, len(t.modules))
	for role := range t.modules {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var defaultTable *Table

func init() {
	var err error
	defaultTable, err = NewTable(nil)
	if err != nil {
		panic(fmt.Sprintf("failed to build default access table: %v", err))
	}
}

// Default returns the built-in table
func Default() *Table {
	return defaultTable
}

// Allowed reports whether role may open module under the built-in table
func Allowed(role, module string) bool {
	return defaultTable.Allowed(role, module)
}

// ModulesFor returns the modules granted to role under the built-in table
func ModulesFor(role string) []string {
	return defaultTable.ModulesFor(role)
}
