package main

import (
	"net"
	"testing"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository/sqlitetest"
	"storefront/internal/server"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
)

func TestListenFailureReleasesResources(t *testing.T) {
	c := qt.New(t)

	// Hold the port so the server cannot bind it
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)
	t.Cleanup(func() { listener.Close() })

	db, err := database.FromGorm(sqlitetest.Open(t), zap.NewNop())
	c.Assert(err, qt.IsNil)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "development"},
		JWT:    config.JWTConfig{Secret: "main-test"},
	}
	srv := server.NewServer(cfg, zap.NewNop(), db, nil)
	srv.Addr = listener.Addr().String()

	err = listenAndServe(srv, zap.NewNop())
	c.Assert(err, qt.ErrorMatches, "HTTP server error: .*")

	c.Assert(db.SQL().Ping(), qt.ErrorMatches, ".*database is closed")
}
