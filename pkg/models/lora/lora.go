// Package lora contains payload types for the LoRa registry API. LoRa
// objects are imported as registrations: an attributes/states/relations
// triple PUT to a UUID-addressed resource.
package lora

import "github.com/google/uuid"

// Model kinds, used to route payloads to their registry endpoints.
const (
	KindFacet        = "facet"
	KindITSystem     = "itsystem"
	KindKlasse       = "klasse"
	KindOrganisation = "organisation"
)

// Registration is the common LoRa payload shape. The Danish field names
// are LoRa's wire format.
type Registration struct {
	Attributes map[string]any `json:"attributter"`
	States     map[string]any `json:"tilstande"`
	Relations  map[string]any `json:"relationer,omitempty"`
}

// Facet is a classification facet.
type Facet struct {
	ID uuid.UUID `json:"-"`
	Registration
}

func (f Facet) Kind() string    { return KindFacet }
func (f Facet) UUID() uuid.UUID { return f.ID }

// Klasse is a class within a facet.
type Klasse struct {
	ID uuid.UUID `json:"-"`
	Registration
}

func (k Klasse) Kind() string    { return KindKlasse }
func (k Klasse) UUID() uuid.UUID { return k.ID }

// ITSystem is an external IT system known to the registry.
type ITSystem struct {
	ID uuid.UUID `json:"-"`
	Registration
}

func (s ITSystem) Kind() string    { return KindITSystem }
func (s ITSystem) UUID() uuid.UUID { return s.ID }

// Organisation is the registry root object.
type Organisation struct {
	ID uuid.UUID `json:"-"`
	Registration
}

func (o Organisation) Kind() string    { return KindOrganisation }
func (o Organisation) UUID() uuid.UUID { return o.ID }
