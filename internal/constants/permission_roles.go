package constants

import pkgconst "keystone-backend/internal/pkg/constants"

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:           {pkgconst.Tenant, pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	OnboardBuilding:    {pkgconst.Admin, pkgconst.Superadmin},
	TransitionOperator: {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	ViewPortfolio:      {pkgconst.Tenant, pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	ViewTimeline:       {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	CreateIssue:        {pkgconst.Tenant, pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	UpdateIssue:        {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	CreateWorkOrder:    {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	UpdateWorkOrder:    {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	ManageOrgs:         {pkgconst.Admin, pkgconst.Superadmin},
	InviteUser:         {pkgconst.Admin, pkgconst.Superadmin},
	RemoveUser:         {pkgconst.Admin, pkgconst.Superadmin},
	AssignRole:         {pkgconst.Admin, pkgconst.Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
