package usecase

import (
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/service/classifier"
	"github.com/secmon-lab/uxlens/pkg/service/fixspec"
	"github.com/secmon-lab/uxlens/pkg/service/ingest"
	"github.com/secmon-lab/uxlens/pkg/service/logstore"
)

const (
	defaultIngestConcurrency  = 4
	defaultPersistConcurrency = 8
)

type UseCases struct {
	repo       interfaces.FixspecRepository
	notifier   interfaces.Notifier
	ingestor   *ingest.Ingestor
	classifier *classifier.Classifier
	generator  *fixspec.Generator
	logStore   *logstore.Store

	ingestConcurrency  int
	persistConcurrency int
}

type Option func(*UseCases)

func WithIngestor(x *ingest.Ingestor) Option {
	return func(uc *UseCases) {
		uc.ingestor = x
	}
}

func WithClassifier(c *classifier.Classifier) Option {
	return func(uc *UseCases) {
		uc.classifier = c
	}
}

func WithGenerator(g *fixspec.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = g
	}
}

// WithLogStore enables canonical log reads
func WithLogStore(s *logstore.Store) Option {
	return func(uc *UseCases) {
		uc.logStore = s
	}
}

// WithNotifier enables notifications for newly created urgent fixspecs
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithIngestConcurrency bounds how many files are ingested in parallel
func WithIngestConcurrency(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.ingestConcurrency = n
		}
	}
}

// WithPersistConcurrency bounds how many fixspecs are saved in parallel
func WithPersistConcurrency(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.persistConcurrency = n
		}
	}
}

func New(repo interfaces.FixspecRepository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:               repo,
		ingestConcurrency:  defaultIngestConcurrency,
		persistConcurrency: defaultPersistConcurrency,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.ingestor == nil {
		uc.ingestor = ingest.New()
	}
	if uc.classifier == nil {
		uc.classifier = classifier.New()
	}
	if uc.generator == nil {
		uc.generator = fixspec.New()
	}

	return uc
}
