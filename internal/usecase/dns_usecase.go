package usecase

import (
	"context"
	"fmt"
	"strings"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/repository"
	"cf-bulk-manager/pkg/storage"
)

// dnsUsecase implements DNSUsecase
type dnsUsecase struct {
	dnsRepo  repository.DNSRepository
	settings storage.SettingsStorage
}

// NewDNSUsecase creates a new DNS usecase
func NewDNSUsecase(dnsRepo repository.DNSRepository, settings storage.SettingsStorage) DNSUsecase {
	return &dnsUsecase{
		dnsRepo:  dnsRepo,
		settings: settings,
	}
}

// ListRecords returns all DNS records for a zone
func (u *dnsUsecase) ListRecords(ctx context.Context, zoneID string) ([]domain.DNSRecord, error) {
	records, err := u.dnsRepo.ListRecords(ctx, zoneID, domain.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// CreateRecord creates a new DNS record
func (u *dnsUsecase) CreateRecord(ctx context.Context, zoneID string, input RecordInput) (*domain.DNSRecord, error) {
	record, err := u.buildRecord(zoneID, input)
	if err != nil {
		return nil, err
	}

	created, err := u.dnsRepo.CreateRecord(ctx, zoneID, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	return created, nil
}

// UpdateRecord updates an existing DNS record
func (u *dnsUsecase) UpdateRecord(ctx context.Context, zoneID, recordID string, input RecordInput) (*domain.DNSRecord, error) {
	record, err := u.buildRecord(zoneID, input)
	if err != nil {
		return nil, err
	}

	updated, err := u.dnsRepo.UpdateRecord(ctx, zoneID, recordID, record)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	return updated, nil
}

// DeleteRecord deletes a DNS record
func (u *dnsUsecase) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	return u.dnsRepo.DeleteRecord(ctx, zoneID, recordID)
}

// buildRecord validates input and applies stored defaults
func (u *dnsUsecase) buildRecord(zoneID string, input RecordInput) (*domain.DNSRecord, error) {
	if !domain.IsValidRecordType(input.Type) {
		return nil, fmt.Errorf("%w: invalid record type %s", domain.ErrInvalidRecord, input.Type)
	}

	if input.TTL == 0 {
		if settings, err := u.settings.LoadSettings(); err == nil {
			input.TTL = settings.DefaultTTL
		}
	}

	return &domain.DNSRecord{
		ZoneID:   zoneID,
		Name:     input.Name,
		Type:     input.Type,
		Content:  input.Content,
		TTL:      input.TTL,
		Proxied:  input.Proxied,
		Priority: input.Priority,
	}, nil
}

// fullRecordName ensures the record name includes the zone name
func fullRecordName(recordName, zoneName string) string {
	if strings.HasSuffix(recordName, zoneName) {
		return recordName
	}
	if recordName == "@" || recordName == "" {
		return zoneName
	}
	return recordName + "." + zoneName
}
