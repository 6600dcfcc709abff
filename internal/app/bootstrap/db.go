// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	accountstore "github.com/dalemusser/applyhub/internal/app/store/accounts"
	auditstore "github.com/dalemusser/applyhub/internal/app/store/audit"
	submissionstore "github.com/dalemusser/applyhub/internal/app/store/submissions"
	"github.com/dalemusser/applyhub/internal/app/system/mailer"
	"github.com/dalemusser/applyhub/internal/app/system/notify"
	"github.com/dalemusser/applyhub/internal/app/system/timeouts"
)

// ConnectDB establishes the MongoDB connection used by all stores and
// builds the outbound email backend (SMTP sender behind a bounded queue).
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	sender := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	return DBDeps{
		ApplyHubMongoClient:   client,
		ApplyHubMongoDatabase: client.Database(appCfg.MongoDatabase),
		Notify:                notify.NewDispatcher(sender, logger, appCfg.NotifyQueueSize, appCfg.NotifySendTimeout),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on: submission list
// ordering, the unique account email (which makes provisioning an
// insert-if-absent), and audit query paths.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.ApplyHubMongoDatabase

	if err := submissionstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("submissions indexes: %w", err)
	}
	if err := accountstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("accounts indexes: %w", err)
	}
	if err := auditstore.New(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}

	logger.Info("database indexes ensured")
	return nil
}
