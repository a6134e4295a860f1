package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/magenta-aps/raclients/pkg/graph"
	"github.com/magenta-aps/raclients/pkg/modelclient"
	"github.com/magenta-aps/raclients/pkg/models/lora"
	"github.com/magenta-aps/raclients/pkg/models/mo"
)

// document is one YAML document in an input file: a model kind plus the
// object payload in that kind's JSON field names. LoRa imports are
// UUID-addressed, so their documents carry the uuid at the top level.
type document struct {
	Kind   string         `yaml:"kind"`
	UUID   string         `yaml:"uuid,omitempty"`
	Object map[string]any `yaml:"object"`
}

// readDocuments parses a multi-document YAML stream.
func readDocuments(r io.Reader) ([]document, error) {
	var docs []document
	dec := yaml.NewDecoder(r)
	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse document %d: %w", len(docs)+1, err)
		}
		if doc.Kind == "" {
			return nil, fmt.Errorf("document %d: missing kind", len(docs)+1)
		}
		docs = append(docs, doc)
	}
}

func readFile(path string) ([]document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readDocuments(f)
}

// decodeMO maps a parsed document onto its MO payload type.
func decodeMO(doc document) (modelclient.Model, error) {
	var (
		obj modelclient.Model
		err error
	)
	switch doc.Kind {
	case mo.KindAddress:
		obj, err = decodeInto[mo.Address](doc)
	case mo.KindAssociation:
		obj, err = decodeInto[mo.Association](doc)
	case mo.KindEmployee:
		obj, err = decodeInto[mo.Employee](doc)
	case mo.KindEngagement:
		obj, err = decodeInto[mo.Engagement](doc)
	case mo.KindFacetClass:
		obj, err = decodeInto[mo.FacetClass](doc)
	case mo.KindITUser:
		obj, err = decodeInto[mo.ITUser](doc)
	case mo.KindKLE:
		obj, err = decodeInto[mo.KLE](doc)
	case mo.KindLeave:
		obj, err = decodeInto[mo.Leave](doc)
	case mo.KindManager:
		obj, err = decodeInto[mo.Manager](doc)
	case mo.KindOrganisationUnit:
		obj, err = decodeInto[mo.OrganisationUnit](doc)
	case mo.KindRole:
		obj, err = decodeInto[mo.Role](doc)
	default:
		return nil, fmt.Errorf("unsupported MO kind %q", doc.Kind)
	}
	return obj, err
}

// decodeLoRa maps a parsed document onto its LoRa payload type.
func decodeLoRa(doc document) (modelclient.Model, error) {
	id, err := uuid.Parse(doc.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: LoRa documents need a valid top-level uuid: %w", doc.Kind, err)
	}
	var reg lora.Registration
	if err := graph.Decode(doc.Object, &reg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Kind, err)
	}

	switch doc.Kind {
	case lora.KindFacet:
		return lora.Facet{ID: id, Registration: reg}, nil
	case lora.KindITSystem:
		return lora.ITSystem{ID: id, Registration: reg}, nil
	case lora.KindKlasse:
		return lora.Klasse{ID: id, Registration: reg}, nil
	case lora.KindOrganisation:
		return lora.Organisation{ID: id, Registration: reg}, nil
	default:
		return nil, fmt.Errorf("unsupported LoRa kind %q", doc.Kind)
	}
}

func decodeInto[T modelclient.Model](doc document) (modelclient.Model, error) {
	var obj T
	if err := graph.Decode(doc.Object, &obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", doc.Kind, err)
	}
	return obj, nil
}
