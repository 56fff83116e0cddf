// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end dependencies for the app: the Mongo client
// for the audit trail and login ledger, and the GraphQL backend client
// that owns every account and lead.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Backend       *gateway.Client
}
