package scan

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/unpushed/internal/discovery"
	"github.com/temirov/unpushed/internal/gitstatus"
)

const (
	scanStartedMessageConstant           = "starting repository scan"
	repositoryFoundMessageConstant       = "found repository"
	repositoryCleanMessageConstant       = "repository is clean"
	repositoryMissingHeadMessageConstant = "repository has no HEAD"
	classificationFailedMessageConstant  = "failed to check repository"

	logFieldSearchPathConstant     = "search_path"
	logFieldWorkerCountConstant    = "threads"
	logFieldRepositoryPathConstant = "repo_path"
)

// RepositoryClassifier derives the status of one repository.
type RepositoryClassifier interface {
	Classify(repositoryPath string) (gitstatus.RepoStatus, error)
}

// RepositoryWalker yields repository roots discovered beneath a scan root.
type RepositoryWalker interface {
	WalkRepositories(rootPath string, visitor discovery.RepositoryVisitor) error
}

// ServiceOptions captures the runtime parameters of one scan.
type ServiceOptions struct {
	RootPath          string
	WorkerCount       int
	ReportMissingHead bool
}

// Service coordinates repository discovery, classification, and reporting.
type Service struct {
	walker     RepositoryWalker
	classifier RepositoryClassifier
	reporter   Reporter
	logger     *zap.Logger
}

// NewService constructs a Service using the provided collaborators.
func NewService(walker RepositoryWalker, classifier RepositoryClassifier, reporter Reporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		walker:     walker,
		classifier: classifier,
		reporter:   reporter,
		logger:     logger,
	}
}

// Run walks the configured root and classifies every discovered repository on
// a bounded worker pool. The walker is the single producer; classification
// failures are logged per repository and never abort the scan. The scan always
// runs the discovered set to completion.
func (service *Service) Run(executionContext context.Context, options ServiceOptions) error {
	rootPath := options.RootPath
	if len(rootPath) == 0 {
		rootPath = defaultRootPathConstant
	}

	workerCount := options.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	service.logger.Info(
		scanStartedMessageConstant,
		zap.String(logFieldSearchPathConstant, rootPath),
		zap.Int(logFieldWorkerCountConstant, workerCount),
	)

	workerGroup := &errgroup.Group{}
	workerGroup.SetLimit(workerCount)

	walkError := service.walker.WalkRepositories(rootPath, func(repositoryPath string) {
		workerGroup.Go(func() error {
			service.classifyAndReport(repositoryPath, options.ReportMissingHead)
			return nil
		})
	})

	// Workers never return errors; per-repository failures are logged.
	_ = workerGroup.Wait()

	return walkError
}

func (service *Service) classifyAndReport(repositoryPath string, reportMissingHead bool) {
	service.logger.Info(repositoryFoundMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))

	repositoryStatus, classificationError := service.classifier.Classify(repositoryPath)
	if classificationError != nil {
		service.logger.Warn(
			classificationFailedMessageConstant,
			zap.String(logFieldRepositoryPathConstant, repositoryPath),
			zap.Error(classificationError),
		)
		return
	}

	switch repositoryStatus {
	case gitstatus.RepoStatusHasUnpushed:
		if !reportMissingHead {
			service.reporter.PrintPath(repositoryPath)
		}
	case gitstatus.RepoStatusMissingHead:
		if reportMissingHead {
			service.reporter.PrintPath(repositoryPath)
		} else {
			service.logger.Warn(repositoryMissingHeadMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
		}
	case gitstatus.RepoStatusClean:
		service.logger.Debug(repositoryCleanMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
	}
}
