// internal/app/system/provision/provision.go
package provision

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dalemusser/applyhub/internal/app/store/accounts"
	"github.com/dalemusser/applyhub/internal/app/system/auditlog"
	"github.com/dalemusser/applyhub/internal/app/system/credentials"
	"github.com/dalemusser/applyhub/internal/app/system/mailer"
	"github.com/dalemusser/applyhub/internal/app/system/notify"
	"github.com/dalemusser/applyhub/internal/domain/models"
)

// Config holds the values rendered into outbound notices.
type Config struct {
	OrgName  string
	LoginURL string
}

// Provisioner turns an approval decision into a member account plus an
// emailed set of credentials, and a rejection into a notice. Account
// creation is idempotent: re-approving a submission whose email already has
// an account is a no-op and no second credential email goes out.
type Provisioner struct {
	accounts   *accounts.Store
	dispatcher *notify.Dispatcher
	audit      *auditlog.Logger
	log        *zap.Logger
	cfg        Config
}

// New creates a Provisioner.
func New(accts *accounts.Store, dispatcher *notify.Dispatcher, audit *auditlog.Logger, logger *zap.Logger, cfg Config) *Provisioner {
	return &Provisioner{
		accounts:   accts,
		dispatcher: dispatcher,
		audit:      audit,
		log:        logger,
		cfg:        cfg,
	}
}

// ProvisionApproved creates a member account for an approved submission and
// queues the credential email. If an account already exists for the email,
// nothing happens and no error is returned: the applicant already has their
// credentials.
func (p *Provisioner) ProvisionApproved(ctx context.Context, sub *models.Submission) error {
	plaintext, hash, err := credentials.Generate()
	if err != nil {
		return fmt.Errorf("generate credentials: %w", err)
	}

	// New accounts start unverified.
	acct := &models.Account{
		Email:        sub.Email,
		PasswordHash: hash,
		FullName:     sub.FullName,
		Role:         models.RoleMember,
		Verified:     false,
	}

	if err := p.accounts.Create(ctx, acct); err != nil {
		if err == accounts.ErrDuplicateEmail {
			p.log.Info("account already provisioned, skipping credential email",
				zap.String("email", acct.Email),
				zap.String("submission_id", sub.ID.Hex()))
			return nil
		}
		return fmt.Errorf("create account: %w", err)
	}

	p.audit.AccountProvisioned(ctx, sub.ID.Hex(), acct.Email)

	email := mailer.BuildApprovalEmail(mailer.ApprovalEmailData{
		OrgName:  p.cfg.OrgName,
		FullName: sub.FullName,
		Email:    acct.Email,
		Password: plaintext,
		LoginURL: p.cfg.LoginURL,
	})
	if jobID := p.dispatcher.Enqueue(email); jobID == "" {
		// Account exists but the email was dropped; the admin can reset the
		// password manually. Logged by the dispatcher.
		p.log.Error("approval email dropped, credentials unreachable",
			zap.String("email", acct.Email),
			zap.String("submission_id", sub.ID.Hex()))
	}
	return nil
}

// Reject queues a rejection notice. No account is involved, so this never
// touches storage.
func (p *Provisioner) Reject(sub *models.Submission) {
	email := mailer.BuildRejectionEmail(sub.Email, mailer.RejectionEmailData{
		OrgName:  p.cfg.OrgName,
		FullName: sub.FullName,
	})
	p.dispatcher.Enqueue(email)
}

// ProvisionBatch provisions a set of approved submissions concurrently.
// Each submission is handled independently so one failure never blocks the
// rest; errors are logged, not returned.
func (p *Provisioner) ProvisionBatch(ctx context.Context, subs []models.Submission) {
	var wg sync.WaitGroup
	for i := range subs {
		sub := subs[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.ProvisionApproved(ctx, &sub); err != nil {
				p.log.Error("provisioning failed",
					zap.Error(err),
					zap.String("email", sub.Email),
					zap.String("submission_id", sub.ID.Hex()))
			}
		}()
	}
	wg.Wait()
}
