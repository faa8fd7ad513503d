package servicesync

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/service_sync/config"
	"bitbucket.org/mmdatafocus/service_sync/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SourceFetcher returns the complete upstream dataset.
type SourceFetcher interface {
	FetchAll(ctx context.Context) ([]SourceService, error)
}

// Reconciler compares every upstream service with the local tables, reports
// the differences, optionally writes the upstream values back and records the
// id mapping between both sides.
type Reconciler struct {
	source   SourceFetcher
	target   TargetStore
	mappings MappingStore
	reporter Reporter
	logger   *logrus.Logger
	key      KeyFunc
	now      func() time.Time
}

type Option func(*Reconciler)

// WithKeyFunc overrides exact mobile-number matching.
func WithKeyFunc(key KeyFunc) Option {
	return func(r *Reconciler) {
		if key != nil {
			r.key = key
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewReconciler(source SourceFetcher, target TargetStore, mappings MappingStore, reporter Reporter, opts ...Option) *Reconciler {
	r := &Reconciler{
		source:   source,
		target:   target,
		mappings: mappings,
		reporter: reporter,
		logger:   config.GetLogger(),
		key:      ExactKey,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = MultiReporter{}
	}
	return r
}

// Run processes the whole upstream dataset once. Only a failure to load one
// of the two datasets stops it early; per-record failures are reported and
// the run moves on to the next record.
func (r *Reconciler) Run(ctx context.Context, opts RunOptions) (Result, error) {
	result := Result{
		RunID:     uuid.NewString(),
		Resolve:   opts.Resolve,
		StartedAt: r.now(),
	}
	ctx, span := tracer.Start(ctx, "servicesync.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", result.RunID), attribute.Bool("resolve", opts.Resolve))

	logger := r.logger.WithFields(logrus.Fields{"run_id": result.RunID, "resolve": opts.Resolve})
	logger.Info("Fetching services...")

	sources, err := r.source.FetchAll(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	r.reporter.Fetched(len(sources))
	if len(sources) == 0 {
		result.FinishedAt = r.now()
		r.reporter.Summary(result)
		return result, ErrNoSourceRecords
	}

	if err := r.mappings.EnsureSchema(ctx); err != nil {
		schemaErr := &SchemaError{Err: err}
		config.LogError(r.logger, "servicesync", "Run", "EnsureSchema", nil, schemaErr)
		r.reporter.SchemaFailed(schemaErr)
	} else {
		logger.Info("Mapping table ready")
	}

	pool, err := r.target.ListServices(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("list local services: %w", err)
	}
	matcher := NewMatcher(pool, r.key)

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = r.now()
			return result, err
		}
		r.processOne(ctx, src, matcher, opts, &result)
	}

	result.FinishedAt = r.now()
	span.SetAttributes(
		attribute.Int("processed", result.Processed),
		attribute.Int("discrepant", result.Discrepant),
	)
	r.reporter.Summary(result)
	return result, nil
}

func (r *Reconciler) processOne(ctx context.Context, src SourceService, matcher *Matcher, opts RunOptions, result *Result) {
	result.Processed++

	target, found := matcher.Find(src)

	var (
		sub     *models.ServiceProduct
		product *models.Product
	)
	if found {
		var err error
		sub, product, err = r.related(ctx, target)
		if err != nil {
			result.LookupErrors++
			config.LogError(r.logger, "servicesync", "processOne", "related", src, err)
			r.reporter.Failure(src, err)
			return
		}
	}

	cmp := CompareRecords(src, target, sub, product)
	if cmp.HasIssues() {
		result.Discrepant++
	}
	if cmp.Missing {
		result.Missing++
		r.reporter.Missing(src)
		return
	}
	r.reporter.Discrepancies(src, cmp.Discrepancies)

	if opts.Resolve && len(cmp.Discrepancies) > 0 {
		if err := r.resolve(ctx, src); err != nil {
			result.ResolveFailed++
			config.LogError(r.logger, "servicesync", "processOne", "resolve", src, err)
			r.reporter.ResolveFailed(src, err)
		} else {
			result.Resolved++
			r.reporter.Resolved(src)
		}
	}

	r.recordMapping(ctx, src, models.MappingTypeService, target.ID, src.ID, result)
	if sub != nil && src.ServiceProduct != nil {
		r.recordMapping(ctx, src, models.MappingTypeServiceProduct, sub.ID, src.ServiceProduct.ID, result)
	}
}

// related loads the service product of target and the product it points to.
// Either may be nil.
func (r *Reconciler) related(ctx context.Context, target *models.Service) (*models.ServiceProduct, *models.Product, error) {
	sub, err := r.target.FindServiceProduct(ctx, target.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("find service product for service %d: %w", target.ID, err)
	}
	if sub == nil {
		return nil, nil, nil
	}
	product, err := r.target.FindProduct(ctx, sub.ProductId)
	if err != nil {
		return sub, nil, fmt.Errorf("find product %d: %w", sub.ProductId, err)
	}
	return sub, product, nil
}

func (r *Reconciler) resolve(ctx context.Context, src SourceService) error {
	rows, err := r.target.ResolveService(ctx, repairFor(src))
	if err != nil {
		return &RepairError{MobileNumber: src.MobileNumber, Err: err}
	}
	if rows == 0 {
		return &RepairError{MobileNumber: src.MobileNumber, Err: ErrZeroRowsAffected}
	}
	return nil
}

func (r *Reconciler) recordMapping(ctx context.Context, src SourceService, mappingType models.MappingType, localId, externalId int, result *Result) {
	created, err := r.mappings.Record(ctx, mappingType, localId, externalId)
	if err != nil {
		mErr := &MappingWriteError{Type: mappingType, LocalId: localId, ExternalId: externalId, Err: err}
		result.MappingErrors++
		config.LogError(r.logger, "servicesync", "recordMapping", mappingType.String(), src, mErr)
		r.reporter.Failure(src, mErr)
		return
	}
	if created {
		result.MappingsCreated++
	}
}
