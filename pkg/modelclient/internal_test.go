package modelclient

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magenta-aps/raclients/pkg/models/mo"
)

func TestGroupByKind(t *testing.T) {
	objs := []Model{
		mo.Employee{GivenName: "Anders"},
		mo.OrganisationUnit{Name: "Teknisk Forvaltning"},
		mo.Employee{GivenName: "Andersine"},
		mo.Employee{GivenName: "Joakim"},
	}

	groups := groupByKind(objs)
	require.Len(t, groups, 2)

	// First-seen order is preserved.
	assert.Equal(t, mo.KindEmployee, groups[0].kind)
	assert.Len(t, groups[0].objs, 3)
	assert.Equal(t, mo.KindOrganisationUnit, groups[1].kind)
	assert.Len(t, groups[1].objs, 1)
}

func TestChunks(t *testing.T) {
	objs := make([]Model, 7)
	for i := range objs {
		objs[i] = mo.Employee{}
	}

	out := chunks(objs, 3)
	require.Len(t, out, 3)
	assert.Len(t, out[0], 3)
	assert.Len(t, out[1], 3)
	assert.Len(t, out[2], 1)

	assert.Empty(t, chunks(nil, 3))
}

func TestExpandPathVars(t *testing.T) {
	facetUUID := uuid.New()
	obj := mo.FacetClass{FacetUUID: facetUUID, Name: "Direktion"}

	path := expandPathVars("/service/f/{facet_uuid}/", obj)
	assert.Equal(t, "/service/f/"+facetUUID.String()+"/", path)

	// Objects without path vars pass through untouched.
	assert.Equal(t, "/service/e/create", expandPathVars("/service/e/create", mo.Employee{}))
}

func TestUploadErrorMessage(t *testing.T) {
	err := &UploadError{Kind: "employee", StatusCode: 400, Description: "Missing uuid"}
	assert.Equal(t, "upload employee: status 400: Missing uuid", err.Error())

	id := uuid.MustParse("456362c4-0ee4-4e5e-a72c-751239745e62")
	err = &UploadError{Kind: "org_unit", UUID: id, StatusCode: 409}
	assert.Equal(t, "upload org_unit 456362c4-0ee4-4e5e-a72c-751239745e62: status 409", err.Error())
}

func TestMOObjectRequest_UnknownKind(t *testing.T) {
	m := NewMO("http://mo", nil)
	_, _, _, err := m.objectRequest(fakeModel{}, false)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

type fakeModel struct{}

func (fakeModel) Kind() string { return "spaceship" }
