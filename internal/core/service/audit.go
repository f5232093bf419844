package service

import "github.com/fsrp/document-portal/internal/core/domain"

// NopAuditRecorder drops every event. Used when auditing is disabled.
type NopAuditRecorder struct{}

func (NopAuditRecorder) Record(domain.AccessEvent) {}
