/*
Package raclients provides authenticated HTTP and GraphQL client helpers for
OS2mo and LoRa, the two backends of the OS2mo civil-administration stack.

Every client authenticates against Keycloak with the client-credentials
grant and transparently refreshes its access token. The package bundles
three kinds of helpers:

  - graph.Client executes GraphQL documents against MO, with decoding and
    cursor-pagination helpers.
  - modelclient.MO and modelclient.LoRa bulk-upload model payloads, with
    chunked concurrent submission, exponential-backoff retries and a
    readiness wait.
  - auth.Config builds authenticated *http.Client values for anything else.

# Usage

Construct clients from a shared Config:

	package main

	import (
		"context"
		"log"

		"github.com/magenta-aps/raclients"
		"github.com/magenta-aps/raclients/pkg/auth"
	)

	func main() {
		cfg := raclients.Config{
			MOURL: "http://mo.example.org",
			Auth: auth.Config{
				ClientID:     "AzureDiamond",
				ClientSecret: "hunter2",
				AuthRealm:    "mordor",
				AuthServer:   "http://keycloak.example.org/auth",
			},
		}

		ctx := context.Background()
		client, err := raclients.NewGraphQLClient(ctx, cfg)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		var result map[string]any
		query := `query { org { uuid } }`
		if err := client.Execute(ctx, query, nil, &result); err != nil {
			log.Fatal(err)
		}
		log.Println(result)
	}

A single client instance is safe for concurrent use and meant to be shared
for the lifetime of an application; Close releases its idle connections.
*/
package raclients
