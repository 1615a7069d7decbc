// Package audit exposes lineage and compliance views over the generated
// audit-metadata table.
package audit

import (
	"errors"
	"sort"
	"time"

	"carbonsense.dev/carbonsense/pkg/generator"
)

// ErrNotFound is returned when a data point ID has no lineage record.
var ErrNotFound = errors.New("audit: data point not found")

// Packet is the auditor-ready compliance summary over the whole trail.
type Packet struct {
	AuditTimestamp      time.Time      `json:"audit_timestamp"`
	TotalDataPoints     int            `json:"total_data_points"`
	VerifiedPct         float64        `json:"auditor_verified_percentage"`
	SourceSystems       map[string]int `json:"source_systems"`
	ComplianceStandards []string       `json:"compliance_standards"`
	LineageIntegrity    string         `json:"lineage_integrity"`
	AnomaliesDetected   int            `json:"anomalies_detected"`
}

// Trail answers lineage queries over one immutable audit table.
type Trail struct {
	records generator.AuditTable
}

// NewTrail wraps an audit table for querying.
func NewTrail(records generator.AuditTable) *Trail {
	return &Trail{records: records}
}

// Lineage returns the audit record for a data point ID.
func (t *Trail) Lineage(dataPointID string) (generator.AuditRecord, error) {
	for _, rec := range t.records {
		if rec.DataPointID == dataPointID {
			return rec, nil
		}
	}
	return generator.AuditRecord{}, ErrNotFound
}

// Anomalies lists the records that failed auditor verification.
func (t *Trail) Anomalies() []generator.AuditRecord {
	anomalies := make([]generator.AuditRecord, 0)
	for _, rec := range t.records {
		if !rec.AuditorVerified {
			anomalies = append(anomalies, rec)
		}
	}
	return anomalies
}

// Packet summarises the trail for an auditor: verification rate, source
// system counts and the distinct calculation standards in use.
func (t *Trail) Packet() Packet {
	packet := Packet{
		AuditTimestamp:   time.Now(),
		TotalDataPoints:  len(t.records),
		SourceSystems:    make(map[string]int),
		LineageIntegrity: "SHA256_VERIFIED",
	}

	standards := make(map[string]struct{})
	verified := 0
	for _, rec := range t.records {
		packet.SourceSystems[rec.SourceSystem]++
		standards[rec.CalculationMethod] = struct{}{}
		if rec.AuditorVerified {
			verified++
		}
	}
	packet.AnomaliesDetected = len(t.records) - verified
	if len(t.records) > 0 {
		packet.VerifiedPct = float64(verified) / float64(len(t.records)) * 100
	}

	packet.ComplianceStandards = make([]string, 0, len(standards))
	for std := range standards {
		packet.ComplianceStandards = append(packet.ComplianceStandards, std)
	}
	sort.Strings(packet.ComplianceStandards)

	return packet
}
