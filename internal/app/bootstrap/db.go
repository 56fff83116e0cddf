// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/leadhub/internal/app/store/audit"
	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
		"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the Mongo client and builds the backend client.
// The backend is not contacted here; it needs a user's token.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	backend := gateway.New(appCfg.GraphQLEndpoint, &http.Client{}, logger)
	logger.Info("GraphQL backend configured", zap.String("endpoint", backend.Endpoint()))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Backend:       backend,
	}, nil
}

// EnsureSchema creates the audit and ledger indexes. Each step is
// idempotent; all problems are reported together.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var problems []string

	if err := sessions.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "sessions: "+err.Error())
	}
	if err := audit.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		logger.Error("index setup failed", zap.Strings("problems", problems))
		return fmt.Errorf("ensure indexes: %s", strings.Join(problems, "; "))
	}
	logger.Info("indexes ensured")
	return nil
}
