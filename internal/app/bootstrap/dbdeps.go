// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/applyhub/internal/app/system/notify"
)

// DBDeps holds database/back-end dependencies for the app. The email
// dispatcher lives here so the lifecycle hooks share one instance without
// package-level state: ConnectDB builds it, Startup starts it, BuildHandler
// hands it to provisioning, Shutdown stops it.
type DBDeps struct {
	ApplyHubMongoClient   *mongo.Client
	ApplyHubMongoDatabase *mongo.Database
	Notify                *notify.Dispatcher
}
