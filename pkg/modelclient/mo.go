package modelclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magenta-aps/raclients/pkg/models/mo"
)

var moCreatePaths = map[string]string{
	mo.KindAddress:          "/service/details/create",
	mo.KindAssociation:      "/service/details/create",
	mo.KindEmployee:         "/service/e/create",
	mo.KindEngagement:       "/service/details/create",
	mo.KindFacetClass:       "/service/f/{facet_uuid}/",
	mo.KindITUser:           "/service/details/create",
	mo.KindKLE:              "/service/details/create",
	mo.KindLeave:            "/service/details/create",
	mo.KindManager:          "/service/details/create",
	mo.KindOrganisationUnit: "/service/ou/create",
	mo.KindRole:             "/service/details/create",
}

var moEditPaths = map[string]string{
	mo.KindAddress:          "/service/details/edit",
	mo.KindAssociation:      "/service/details/edit",
	mo.KindEmployee:         "/service/details/edit",
	mo.KindEngagement:       "/service/details/edit",
	mo.KindFacetClass:       "/service/f/{facet_uuid}/",
	mo.KindITUser:           "/service/details/edit",
	mo.KindKLE:              "/service/details/edit",
	mo.KindLeave:            "/service/details/edit",
	mo.KindManager:          "/service/details/edit",
	mo.KindOrganisationUnit: "/service/details/edit",
	mo.KindRole:             "/service/details/edit",
}

// MO uploads model payloads to the OS2mo service API.
type MO struct {
	*client
}

// NewMO returns an OS2mo model client. The supplied HTTP client is
// expected to carry authentication (see the auth package).
func NewMO(baseURL string, hc *http.Client, opts ...Option) *MO {
	m := &MO{}
	m.client = newClient(baseURL, hc, m, opts...)
	return m
}

// Upload creates the given objects in MO.
func (m *MO) Upload(ctx context.Context, objs []Model) ([]Result, error) {
	return m.upload(ctx, objs, false)
}

// Edit updates the given objects in MO. Every object must carry its UUID.
func (m *MO) Edit(ctx context.Context, objs []Model) ([]Result, error) {
	return m.upload(ctx, objs, true)
}

func (m *MO) objectRequest(obj Model, edit bool) (string, string, any, error) {
	paths := moCreatePaths
	if edit {
		paths = moEditPaths
	}
	path, ok := paths[obj.Kind()]
	if !ok {
		return "", "", nil, fmt.Errorf("%w: %q", ErrUnknownKind, obj.Kind())
	}
	path = expandPathVars(path, obj)

	force := 0
	if m.force {
		force = 1
	}
	path = fmt.Sprintf("%s?force=%d", path, force)

	var body any = obj
	if edit {
		id, ok := obj.(Identified)
		if !ok {
			return "", "", nil, fmt.Errorf("edit %s: object has no UUID", obj.Kind())
		}
		// MO's edit endpoint wraps the changed data in an envelope keyed
		// by the object's UUID and type discriminator.
		body = map[string]any{
			"uuid": id.UUID(),
			"type": obj.Kind(),
			"data": obj,
		}
	}
	return http.MethodPost, path, body, nil
}

func (m *MO) healthchecks() []healthcheck {
	return []healthcheck{{subpath: "/version/", key: "mo_version"}}
}
