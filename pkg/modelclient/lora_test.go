package modelclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magenta-aps/raclients/internal/testserver"
	"github.com/magenta-aps/raclients/pkg/modelclient"
	"github.com/magenta-aps/raclients/pkg/models/lora"
)

func newLoRa(t *testing.T, srv *testserver.Server, opts ...modelclient.Option) *modelclient.LoRa {
	t.Helper()
	hc, err := srv.AuthConfig().Client(context.Background())
	require.NoError(t, err)
	client := modelclient.NewLoRa(srv.URL, hc, opts...)
	t.Cleanup(client.Close)
	return client
}

func TestLoRa_UploadPutsByUUID(t *testing.T) {
	srv := testserver.New(t)
	client := newLoRa(t, srv)

	facetID := uuid.New()
	klasseID := uuid.New()
	objs := []modelclient.Model{
		lora.Facet{ID: facetID, Registration: lora.Registration{
			Attributes: map[string]any{"facetegenskaber": []any{}},
			States:     map[string]any{"facetpubliceret": []any{}},
		}},
		lora.Klasse{ID: klasseID, Registration: lora.Registration{
			Attributes: map[string]any{"klasseegenskaber": []any{}},
			States:     map[string]any{"klassepubliceret": []any{}},
		}},
	}

	results, err := client.Upload(context.Background(), objs)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	facetReqs := srv.RequestsFor("/klassifikation/facet/" + facetID.String())
	require.Len(t, facetReqs, 1)
	assert.Equal(t, "PUT", facetReqs[0].Method)

	body, ok := facetReqs[0].Body.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, body, "attributter")
	assert.Contains(t, body, "tilstande")

	assert.Len(t, srv.RequestsFor("/klassifikation/klasse/"+klasseID.String()), 1)
}

func TestLoRa_UnknownKind(t *testing.T) {
	srv := testserver.New(t)
	client := newLoRa(t, srv)

	_, err := client.Upload(context.Background(), []modelclient.Model{kindOnly{}})
	assert.ErrorIs(t, err, modelclient.ErrUnknownKind)
}

func TestLoRa_WaitUntilReady(t *testing.T) {
	srv := testserver.New(t)
	client := newLoRa(t, srv, modelclient.WithReadyDelay(10*time.Millisecond))

	srv.SetNotReady(1)
	require.NoError(t, client.WaitUntilReady(context.Background()))
}
