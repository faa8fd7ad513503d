package servicesync

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Reporter receives run events for display. Nothing it does feeds back into
// the run.
type Reporter interface {
	Fetched(count int)
	SchemaFailed(err error)
	Discrepancies(src SourceService, discrepancies []Discrepancy)
	Missing(src SourceService)
	Resolved(src SourceService)
	ResolveFailed(src SourceService, err error)
	Failure(src SourceService, err error)
	Summary(result Result)
}

// ConsoleReporter writes the human-readable report.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) Fetched(count int) {
	if count == 0 {
		fmt.Fprintln(r.w, "No services found")
		return
	}
	fmt.Fprintf(r.w, "Services Found (%d)\n", count)
}

func (r *ConsoleReporter) SchemaFailed(err error) {
	fmt.Fprintf(r.w, "Failed to create Mapping table: %v\n", err)
}

func (r *ConsoleReporter) Discrepancies(src SourceService, discrepancies []Discrepancy) {
	if len(discrepancies) == 0 {
		return
	}
	r.header(src)
	for _, d := range discrepancies {
		fmt.Fprintf(r.w, "  → Discrepancy with %s: %s | %s\n", d.Field, d.Source, d.Target)
	}
}

func (r *ConsoleReporter) Missing(src SourceService) {
	r.header(src)
	fmt.Fprintln(r.w, "  → Missing Data")
}

func (r *ConsoleReporter) Resolved(src SourceService) {
	fmt.Fprintln(r.w, "  Discrepancy resolved.")
}

func (r *ConsoleReporter) ResolveFailed(src SourceService, err error) {
	fmt.Fprintf(r.w, "  Failed to resolve discrepancy: %v\n", err)
}

func (r *ConsoleReporter) Failure(src SourceService, err error) {
	fmt.Fprintf(r.w, "  Service #%d: %v\n", src.ID, err)
}

func (r *ConsoleReporter) Summary(result Result) {
	fmt.Fprintf(r.w, "\n Total discrepancies/missing records found: %d\n", result.Discrepant)
	fmt.Fprintf(r.w, " Total services mapped: %d\n", result.Processed)
}

func (r *ConsoleReporter) header(src SourceService) {
	fmt.Fprintf(r.w, "Service #%d | %s | %s | %s | %s | \n", src.ID, src.Network, src.MobileNumber, src.StartDate, src.EndDate)
}

// LogReporter mirrors the report as structured log entries.
type LogReporter struct {
	logger *logrus.Logger
}

func NewLogReporter(logger *logrus.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) entry(src SourceService) *logrus.Entry {
	return r.logger.WithFields(logrus.Fields{
		"service_id":    src.ID,
		"mobile_number": src.MobileNumber,
	})
}

func (r *LogReporter) Fetched(count int) {
	r.logger.WithField("count", count).Info("services fetched")
}

func (r *LogReporter) SchemaFailed(err error) {
	r.logger.WithError(err).Error("failed to create mapping table")
}

func (r *LogReporter) Discrepancies(src SourceService, discrepancies []Discrepancy) {
	for _, d := range discrepancies {
		r.entry(src).WithFields(logrus.Fields{
			"field":  d.Field,
			"source": d.Source,
			"target": d.Target,
		}).Warn("discrepancy")
	}
}

func (r *LogReporter) Missing(src SourceService) {
	r.entry(src).Warn("service missing locally")
}

func (r *LogReporter) Resolved(src SourceService) {
	r.entry(src).Info("discrepancy resolved")
}

func (r *LogReporter) ResolveFailed(src SourceService, err error) {
	r.entry(src).WithError(err).Error("failed to resolve discrepancy")
}

func (r *LogReporter) Failure(src SourceService, err error) {
	r.entry(src).WithError(err).Error("service skipped")
}

func (r *LogReporter) Summary(result Result) {
	r.logger.WithFields(logrus.Fields{
		"run_id":           result.RunID,
		"processed":        result.Processed,
		"discrepant":       result.Discrepant,
		"missing":          result.Missing,
		"resolved":         result.Resolved,
		"resolve_failed":   result.ResolveFailed,
		"mappings_created": result.MappingsCreated,
		"mapping_errors":   result.MappingErrors,
		"lookup_errors":    result.LookupErrors,
	}).Info("sync run finished")
}

// MultiReporter fans every event out to each reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Fetched(count int) {
	for _, r := range m {
		r.Fetched(count)
	}
}

func (m MultiReporter) SchemaFailed(err error) {
	for _, r := range m {
		r.SchemaFailed(err)
	}
}

func (m MultiReporter) Discrepancies(src SourceService, discrepancies []Discrepancy) {
	for _, r := range m {
		r.Discrepancies(src, discrepancies)
	}
}

func (m MultiReporter) Missing(src SourceService) {
	for _, r := range m {
		r.Missing(src)
	}
}

func (m MultiReporter) Resolved(src SourceService) {
	for _, r := range m {
		r.Resolved(src)
	}
}

func (m MultiReporter) ResolveFailed(src SourceService, err error) {
	for _, r := range m {
		r.ResolveFailed(src, err)
	}
}

func (m MultiReporter) Failure(src SourceService, err error) {
	for _, r := range m {
		r.Failure(src, err)
	}
}

func (m MultiReporter) Summary(result Result) {
	for _, r := range m {
		r.Summary(result)
	}
}
