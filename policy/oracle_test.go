package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanPerformRoleAllowList(t *testing.T) {
	perm := Permission{Roles: []string{RoleCOO, RoleDirector}}
	rec := Record{ID: primitive.NewObjectID()}

	assert.True(t, CanPerform(Actor{Role: RoleCOO}, perm, rec))
	assert.True(t, CanPerform(Actor{Role: RoleDirector}, perm, rec))
	assert.False(t, CanPerform(Actor{Role: RoleDesigner}, perm, rec))
	assert.False(t, CanPerform(Actor{Role: RoleClient}, perm, rec))
	assert.False(t, CanPerform(Actor{Role: ""}, perm, rec))
}

func TestCanPerformOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	perm := Permission{Owner: true}
	rec := Record{CreatedByUID: owner}

	assert.True(t, CanPerform(Actor{UID: owner, Role: RoleDesigner}, perm, rec))
	assert.False(t, CanPerform(Actor{UID: primitive.NewObjectID(), Role: RoleDesigner}, perm, rec))

	// A record with no recorded creator matches nobody, including the
	// zero-UID actor.
	assert.False(t, CanPerform(Actor{}, perm, Record{}))
}

func TestCanPerformAssignee(t *testing.T) {
	assignee := primitive.NewObjectID()
	perm := Permission{Assignee: true}
	rec := Record{AssigneeUID: assignee}

	assert.True(t, CanPerform(Actor{UID: assignee}, perm, rec))
	assert.False(t, CanPerform(Actor{UID: primitive.NewObjectID()}, perm, rec))
	assert.False(t, CanPerform(Actor{}, perm, Record{}))
}

func TestCanPerformDelegatedOwnership(t *testing.T) {
	lead := primitive.NewObjectID()
	perm := Permission{LeadRoles: []string{RoleDesignManager}}
	rec := Record{ProjectLeadUID: lead}

	// Lead role AND leading the parent project, both required.
	assert.True(t, CanPerform(Actor{UID: lead, Role: RoleDesignManager}, perm, rec))
	assert.False(t, CanPerform(Actor{UID: lead, Role: RoleDesigner}, perm, rec))
	assert.False(t, CanPerform(Actor{UID: primitive.NewObjectID(), Role: RoleDesignManager}, perm, rec))
	assert.False(t, CanPerform(Actor{Role: RoleDesignManager}, perm, Record{}))
}

func TestCanPerformPatternsAreORed(t *testing.T) {
	owner := primitive.NewObjectID()
	perm := Permission{Roles: []string{RoleCOO}, Owner: true}
	rec := Record{CreatedByUID: owner}

	// Either pattern alone is enough.
	assert.True(t, CanPerform(Actor{UID: primitive.NewObjectID(), Role: RoleCOO}, perm, rec))
	assert.True(t, CanPerform(Actor{UID: owner, Role: RoleBDM}, perm, rec))
	assert.False(t, CanPerform(Actor{UID: primitive.NewObjectID(), Role: RoleBDM}, perm, rec))
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(Actor{Role: RoleBDM}, EntityProposal))
	assert.False(t, CanCreate(Actor{Role: RoleDesigner}, EntityProposal))

	assert.True(t, CanCreate(Actor{Role: RoleDesigner}, EntityTimesheet))
	assert.False(t, CanCreate(Actor{Role: RoleClient}, EntityTimesheet))

	assert.True(t, CanCreate(Actor{Role: RoleCOO}, EntityInvoice))
	assert.False(t, CanCreate(Actor{Role: RoleDesignManager}, EntityInvoice))

	// Unknown entity types match nothing.
	assert.False(t, CanCreate(Actor{Role: RoleCOO}, "budget"))
}
