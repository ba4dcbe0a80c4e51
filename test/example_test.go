package test

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	scitokens "github.com/djw8605/xrootd-scitokens"
	tokenval "github.com/djw8605/xrootd-scitokens/jwt"
	"github.com/djw8605/xrootd-scitokens/privilege"
	"github.com/djw8605/xrootd-scitokens/revocation"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	validator, _ := tokenval.NewValidator(tokenval.Config{
		Revocations: revocation.New(rdb, "site-a"),
	})

	engine, _ := scitokens.New().
		WithValidator(validator).
		WithMetricsEnabled(true).
		Build()
	_ = engine
}

// ExampleEngine_Authorize shows a typical per-request decision: the raw token
// rides on the context, the entity describes the client, and the returned mask
// answers the specific operation.
func ExampleEngine_Authorize() {
	var engine *scitokens.Engine

	ctx := scitokens.WithToken(context.Background(), "eyJhbGciOi...")
	ent := &scitokens.Entity{Host: "worker01.example.org"}

	mask := engine.Authorize(ctx, ent, privilege.OpRead, "/store/data/file.root")
	if mask.Has(privilege.Read) {
		fmt.Println("read granted to", ent.Name)
	}
}

// ExampleEngine_Reconfigure shows an audience reload from configuration bytes.
func ExampleEngine_Reconfigure() {
	var engine *scitokens.Engine

	err := engine.Reconfigure([]byte("[Global]\naudience = https://wlcg.cern.ch\n"))
	if err != nil {
		_ = err
	}
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *scitokens.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}
