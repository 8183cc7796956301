package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"oxyspa/b2b/internal/config"
)

// DatabaseInspector is the part of *mongo.Database the probe uses.
type DatabaseInspector interface {
	ListCollectionNames(ctx context.Context, filter interface{}, opts ...*options.ListCollectionsOptions) ([]string, error)
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// IDiagnosticService reports backend connectivity for humans.
type IDiagnosticService interface {
	// Probe never fails; problems are reported as status strings.
	Probe(ctx context.Context) map[string]interface{}
}

const (
	probeTimeout        = 3 * time.Second
	maxProbeCollections = 10
	maxProbeErrorLen    = 50
)

type diagnosticService struct {
	cfg *config.Config
	db  DatabaseInspector // nil when the store is not initialized
	rdb RedisPinger       // nil when the queue is disabled
}

// NewDiagnosticService creates the connectivity probe. db and rdb may be nil.
func NewDiagnosticService(cfg *config.Config, db DatabaseInspector, rdb RedisPinger) IDiagnosticService {
	return &diagnosticService{cfg: cfg, db: db, rdb: rdb}
}

func (s *diagnosticService) Probe(ctx context.Context) (status map[string]interface{}) {
	status = map[string]interface{}{
		"backend":           "Running",
		"database":          "Not Available",
		"database_url":      nil,
		"database_name":     nil,
		"connection_status": "Not Connected",
		"collections":       []string{},
		"queue":             "Not Configured",
	}

	defer func() {
		if r := recover(); r != nil {
			status["database"] = "Error: " + truncate(fmt.Sprint(r), maxProbeErrorLen)
		}
		// Configuration presence only; values are never echoed.
		status["database_url"] = setOrNot(s.cfg != nil && s.cfg.DatabaseURL != "")
		status["database_name"] = setOrNot(s.cfg != nil && s.cfg.DatabaseName != "")
	}()

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			status["queue"] = "Error: " + truncate(err.Error(), maxProbeErrorLen)
		} else {
			status["queue"] = "Connected"
		}
	}

	if s.db == nil {
		status["database"] = "Available but not initialized"
		return status
	}

	status["database"] = "Available"
	status["connection_status"] = "Connected"

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		status["database"] = "Connected but Error: " + truncate(err.Error(), maxProbeErrorLen)
		return status
	}
	if len(names) > maxProbeCollections {
		names = names[:maxProbeCollections]
	}
	status["collections"] = names
	status["database"] = "Connected & Working"
	return status
}

func setOrNot(ok bool) string {
	if ok {
		return "Set"
	}
	return "Not Set"
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
