package policy

// Permission describes who may run one action on one entity. The patterns
// are OR'd: a role on the allow-list, the record's creator, the record's
// assignee, or the lead of the parent project (optionally restricted to
// LeadRoles, e.g. a design_manager approving timesheets only on projects
// they lead).
type Permission struct {
	Roles     []string
	Owner     bool
	Assignee  bool
	LeadRoles []string
}

func roleIn(role string, set []string) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}

// CanPerform is the authorization oracle. It only answers yes or no; callers
// must not leak which rule matched or failed.
func CanPerform(actor Actor, perm Permission, rec Record) bool {
	if roleIn(actor.Role, perm.Roles) {
		return true
	}
	if perm.Owner && !rec.CreatedByUID.IsZero() && actor.UID == rec.CreatedByUID {
		return true
	}
	if perm.Assignee && !rec.AssigneeUID.IsZero() && actor.UID == rec.AssigneeUID {
		return true
	}
	if len(perm.LeadRoles) > 0 && roleIn(actor.Role, perm.LeadRoles) &&
		!rec.ProjectLeadUID.IsZero() && actor.UID == rec.ProjectLeadUID {
		return true
	}
	return false
}

// CanCreate answers whether a role may create records of an entity type.
// Creation has no existing record, so only the role allow-list applies.
func CanCreate(actor Actor, entity string) bool {
	perm, ok := createPermissions[entity]
	if !ok {
		return false
	}
	return roleIn(actor.Role, perm)
}

var createPermissions = map[string][]string{
	EntityProposal:    {RoleBDM, RoleCOO, RoleDirector},
	EntityProject:     {RoleCOO, RoleDirector},
	EntityTask:        {RoleCOO, RoleDirector, RoleDesignManager},
	EntityTimesheet:   {RoleDesigner, RoleDesignManager, RoleCOO, RoleDirector},
	EntityTimeOff:     {RoleDesigner, RoleDesignManager, RoleBDM, RoleCOO, RoleDirector},
	EntityVariation:   {RoleDesignManager, RoleCOO, RoleDirector},
	EntityInvoice:     {RoleCOO, RoleDirector},
	EntityPayment:     {RoleCOO, RoleDirector},
	EntityDeliverable: {RoleDesignManager, RoleCOO, RoleDirector},
}
