package modelclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magenta-aps/raclients/pkg/models/lora"
)

var loraPaths = map[string]string{
	lora.KindFacet:        "/klassifikation/facet",
	lora.KindITSystem:     "/organisation/itsystem",
	lora.KindKlasse:       "/klassifikation/klasse",
	lora.KindOrganisation: "/organisation/organisation",
}

// LoRa uploads registration payloads to the LoRa registry API. Imports go
// through UUID-addressed PUT, which makes re-runs idempotent; LoRa has no
// separate edit surface.
type LoRa struct {
	*client
}

// NewLoRa returns a LoRa model client. The supplied HTTP client is
// expected to carry authentication (see the auth package).
func NewLoRa(baseURL string, hc *http.Client, opts ...Option) *LoRa {
	l := &LoRa{}
	l.client = newClient(baseURL, hc, l, opts...)
	return l
}

// Upload imports the given objects into LoRa.
func (l *LoRa) Upload(ctx context.Context, objs []Model) ([]Result, error) {
	return l.upload(ctx, objs, false)
}

func (l *LoRa) objectRequest(obj Model, _ bool) (string, string, any, error) {
	path, ok := loraPaths[obj.Kind()]
	if !ok {
		return "", "", nil, fmt.Errorf("%w: %q", ErrUnknownKind, obj.Kind())
	}
	id, ok := obj.(Identified)
	if !ok {
		return "", "", nil, fmt.Errorf("import %s: object has no UUID", obj.Kind())
	}
	return http.MethodPut, fmt.Sprintf("%s/%s", path, id.UUID()), obj, nil
}

func (l *LoRa) healthchecks() []healthcheck {
	return []healthcheck{{subpath: "/version", key: "lora_version"}}
}
