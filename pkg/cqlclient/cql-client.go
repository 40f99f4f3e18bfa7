package cqlclient

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

type Config struct {
	Hosts       []string
	Keyspace    string
	Consistency string
}

func NewSession(cfg *Config) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.ConnectTimeout = 10 * time.Second
	cluster.Timeout = 5 * time.Second

	switch cfg.Consistency {
	case "ONE":
		cluster.Consistency = gocql.One
	case "QUORUM":
		cluster.Consistency = gocql.Quorum
	case "LOCAL_QUORUM":
		cluster.Consistency = gocql.LocalQuorum
	default:
		cluster.Consistency = gocql.LocalOne
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create cassandra session: %w", err)
	}

	return session, nil
}
