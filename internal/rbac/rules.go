package rbac

const (
	RoleMember = "member"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	RoleMember: {
		"assessment:view",
		"assessment:score",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
	},
	RoleEditor: {
		"assessment:*",
		"attempt:view-all",
	},
	RoleAdmin: {
		"*", // everything
	},
}
