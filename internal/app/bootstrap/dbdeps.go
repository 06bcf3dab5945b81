// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/chinavoyage/internal/app/system/mailer"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// This struct is created in ConnectDB and passed to subsequent lifecycle
// hooks: EnsureSchema, Startup, BuildHandler, and Shutdown. The Shutdown
// hook closes these connections when the application terminates.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage for blog and testimonial images
	FileStorage storage.Store

	// Mailer sends agency notifications; Notifier decides what to send.
	Mailer   *mailer.Mailer
	Notifier *mailer.Notifier
}
