package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/repository"
)

// bulkUsecase implements BulkUsecase
type bulkUsecase struct {
	zones     ZoneUsecase
	dnsRepo   repository.DNSRepository
	redirects RedirectUsecase
	logger    *logrus.Entry

	mu     sync.Mutex
	state  ExecutionState
	report *domain.ExecutionReport
}

// NewBulkUsecase creates a new bulk operation executor
func NewBulkUsecase(zones ZoneUsecase, dnsRepo repository.DNSRepository, redirects RedirectUsecase, logger *logrus.Logger) BulkUsecase {
	return &bulkUsecase{
		zones:     zones,
		dnsRepo:   dnsRepo,
		redirects: redirects,
		logger:    logger.WithField("component", "bulk-executor"),
	}
}

// Run processes the job's targets strictly in input order, one provider
// conversation at a time. Each target's outcome is folded into a fresh
// report snapshot that is handed to the progress observer before the next
// target starts, so listeners see outcomes in exactly target order. A
// failing target is recorded and never stops the remaining ones.
func (u *bulkUsecase) Run(ctx context.Context, job domain.BulkJob, progress ProgressFunc) (*domain.ExecutionReport, error) {
	if err := validateJob(job); err != nil {
		return nil, err
	}

	u.mu.Lock()
	if u.state == StateRunning {
		u.mu.Unlock()
		return nil, fmt.Errorf("bulk run already in progress")
	}
	u.state = StateRunning
	u.mu.Unlock()

	u.logger.WithFields(logrus.Fields{
		"kind":    job.Operation.Kind,
		"targets": len(job.Targets),
	}).Info("bulk run started")

	report := domain.NewExecutionReport(len(job.Targets))
	u.setReport(report)

	for _, zoneID := range job.Targets {
		outcome := u.applyToZone(ctx, zoneID, job.Operation)
		report = report.Append(outcome)
		u.setReport(report)
		if progress != nil {
			progress(report)
		}
	}

	u.mu.Lock()
	u.state = StateComplete
	u.mu.Unlock()

	u.logger.WithFields(logrus.Fields{
		"success": len(report.Success),
		"partial": len(report.Partial),
		"error":   len(report.Error),
	}).Info("bulk run complete")
	return &report, nil
}

// State returns the current lifecycle state
func (u *bulkUsecase) State() ExecutionState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Report returns the latest report snapshot, nil when idle
func (u *bulkUsecase) Report() *domain.ExecutionReport {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.report
}

// Dismiss discards the held report and returns to idle
func (u *bulkUsecase) Dismiss() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != StateRunning {
		u.state = StateIdle
		u.report = nil
	}
}

func (u *bulkUsecase) setReport(r domain.ExecutionReport) {
	u.mu.Lock()
	u.report = &r
	u.mu.Unlock()
}

// applyToZone applies the operation to a single target and classifies the
// outcome. Nothing here returns an error: every failure becomes a
// classified outcome so the run can continue.
func (u *bulkUsecase) applyToZone(ctx context.Context, zoneID string, op domain.Operation) domain.ZoneOutcome {
	zone, err := u.zones.ResolveZone(ctx, zoneID)
	if err != nil {
		return domain.ZoneOutcome{
			ZoneName:       zoneID,
			Classification: domain.ClassError,
			Detail:         []string{err.Error()},
		}
	}

	switch op.Kind {
	case domain.OperationDNSBulk:
		return u.applyRecords(ctx, zone, op.Records)
	case domain.OperationRedirect:
		return u.applyRedirect(ctx, zone, op.Redirect)
	default:
		return domain.ZoneOutcome{
			ZoneName:       zone.Name,
			Classification: domain.ClassError,
			Detail:         []string{fmt.Sprintf("unknown operation kind %q", op.Kind)},
		}
	}
}

// applyRecords creates each rendered record in turn. The provider has no
// true batch endpoint, so per-record failures surface as sub-errors:
// all created -> success, some failed -> partial, all failed -> error.
func (u *bulkUsecase) applyRecords(ctx context.Context, zone *domain.Zone, templates []domain.RecordTemplate) domain.ZoneOutcome {
	var subErrors []string
	for _, tpl := range templates {
		rec := tpl.Render(zone.Name)
		rec.ZoneID = zone.ID
		rec.Name = fullRecordName(rec.Name, zone.Name)

		if _, err := u.dnsRepo.CreateRecord(ctx, zone.ID, &rec); err != nil {
			subErrors = append(subErrors, fmt.Sprintf("%s %s: %s", rec.Type, rec.Name, errorDetail(err)))
		}
	}

	switch {
	case len(subErrors) == 0:
		return domain.ZoneOutcome{ZoneName: zone.Name, Classification: domain.ClassSuccess}
	case len(subErrors) == len(templates):
		return domain.ZoneOutcome{ZoneName: zone.Name, Classification: domain.ClassError, Detail: subErrors}
	default:
		return domain.ZoneOutcome{ZoneName: zone.Name, Classification: domain.ClassPartial, Detail: subErrors}
	}
}

// applyRedirect renders the template for the zone and delegates to the
// ruleset composer; any failing step classifies the whole zone as error.
func (u *bulkUsecase) applyRedirect(ctx context.Context, zone *domain.Zone, tpl domain.RedirectTemplate) domain.ZoneOutcome {
	rendered := tpl.Render(zone.Name)
	if _, err := u.redirects.AppendRule(ctx, zone.ID, rendered); err != nil {
		return domain.ZoneOutcome{
			ZoneName:       zone.Name,
			Classification: domain.ClassError,
			Detail:         []string{errorDetail(err)},
		}
	}
	return domain.ZoneOutcome{ZoneName: zone.Name, Classification: domain.ClassSuccess}
}

// validateJob rejects empty input before any network call
func validateJob(job domain.BulkJob) error {
	if len(job.Targets) == 0 {
		return domain.ErrEmptyTargets
	}

	switch job.Operation.Kind {
	case domain.OperationDNSBulk:
		if len(job.Operation.Records) == 0 {
			return fmt.Errorf("%w: no record templates", domain.ErrEmptyTemplate)
		}
		for _, tpl := range job.Operation.Records {
			if !domain.IsValidRecordType(tpl.Type) {
				return fmt.Errorf("%w: invalid record type %s", domain.ErrInvalidRecord, tpl.Type)
			}
		}
	case domain.OperationRedirect:
		if strings.TrimSpace(job.Operation.Redirect.SourcePattern) == "" {
			return fmt.Errorf("%w: redirect source pattern", domain.ErrEmptyTemplate)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidOperation, job.Operation.Kind)
	}
	return nil
}

// errorDetail prefers the provider's own messages over wrapper text
func errorDetail(err error) string {
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) && len(provErr.Messages) > 0 {
		return strings.Join(provErr.Messages, "; ")
	}
	return err.Error()
}
