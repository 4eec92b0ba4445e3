package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/extract"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/mssql"
	"github.com/yungbote/dbhealth-backend/internal/repos"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// Runner is one live connection to a monitored SQL Server. mssql.Client
// is the production implementation; tests substitute fakes.
type Runner interface {
	ExecuteDiagnostic(ctx context.Context, kind types.ProcedureKind) ([]types.RawRow, error)
	Execute(ctx context.Context, command string) ([]types.ResultSet, error)
	ProbeServerInfo(ctx context.Context) (version *string, memoryMB *int)
	CheckDiagnosticProcedures(ctx context.Context) (bool, error)
	InstallScript(ctx context.Context, script io.Reader) (int, error)
	Close() error
}

// RunnerFactory opens a Runner for one registered target.
type RunnerFactory func(ctx context.Context, target *types.DatabaseTarget) (Runner, error)

func MssqlRunnerFactory(baseLog *logger.Logger) RunnerFactory {
	return func(ctx context.Context, target *types.DatabaseTarget) (Runner, error) {
		return mssql.NewClient(ctx, target, baseLog)
	}
}

// DiagnosticService coordinates remote diagnostic execution with the
// local result store: target registration, run refreshes and the lazy
// secondary extraction for index findings.
type DiagnosticService interface {
	// RegisterTarget stores a new endpoint, or returns the existing one
	// when (host, port, user) is already registered. New targets get a
	// best-effort server probe and procedure check.
	RegisterTarget(ctx context.Context, target *types.DatabaseTarget) (*types.DatabaseTarget, error)
	// RemoveTarget drops the target and every stored result for it.
	RemoveTarget(ctx context.Context, id uint) (bool, error)
	// Refresh executes one diagnostic procedure remotely and replaces
	// the stored run for (kind, target).
	Refresh(ctx context.Context, kind types.ProcedureKind, databaseTargetID uint) (*types.Run, error)
	// RefreshAll refreshes every procedure kind for one target
	// concurrently; the first failure cancels the rest.
	RefreshAll(ctx context.Context, databaseTargetID uint) error
	// EnsureDetails returns the index finding at ordinal, running its
	// secondary extraction first if the children were never loaded.
	EnsureDetails(ctx context.Context, databaseTargetID uint, ordinal int) (*types.IndexFindingRecord, error)
	// InstallDiagnostics runs every .sql installer in scriptDir against
	// the target and records whether the procedures now exist. It
	// returns the number of batches executed.
	InstallDiagnostics(ctx context.Context, databaseTargetID uint, scriptDir string) (int, error)
}

type diagnosticService struct {
	db      *gorm.DB
	log     *logger.Logger
	targets repos.DatabaseTargetRepo
	results repos.ResultRepo
	details repos.DetailRepo
	factory RunnerFactory

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewDiagnosticService(db *gorm.DB, baseLog *logger.Logger, targets repos.DatabaseTargetRepo, results repos.ResultRepo, details repos.DetailRepo, factory RunnerFactory) DiagnosticService {
	return &diagnosticService{
		db:      db,
		log:     baseLog.With("service", "DiagnosticService"),
		targets: targets,
		results: results,
		details: details,
		factory: factory,
		locks:   map[uint]*sync.Mutex{},
	}
}

// targetLock serializes refreshes per target so two callers cannot
// replace the same run concurrently. Different targets proceed in
// parallel.
func (s *diagnosticService) targetLock(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func (s *diagnosticService) RegisterTarget(ctx context.Context, target *types.DatabaseTarget) (*types.DatabaseTarget, error) {
	existingID, err := s.targets.Exists(ctx, nil, target.Host, target.Port, target.User)
	if err != nil {
		return nil, err
	}
	if existingID != 0 {
		return s.targets.GetByID(ctx, nil, existingID)
	}
	created, err := s.targets.Create(ctx, nil, target)
	if err != nil {
		return nil, err
	}

	runner, err := s.factory(ctx, created)
	if err != nil {
		s.log.Warn("Target registered but unreachable, skipping probe", "database_target_id", created.ID, "error", err)
		return created, nil
	}
	defer runner.Close()

	version, memoryMB := runner.ProbeServerInfo(ctx)
	if version != nil || memoryMB != nil {
		if err := s.targets.UpdateServerInfo(ctx, nil, created.ID, version, memoryMB); err != nil {
			return nil, err
		}
		created.Version = version
		created.InstanceMemoryMB = memoryMB
	}
	installed, err := runner.CheckDiagnosticProcedures(ctx)
	if err != nil {
		s.log.Warn("Could not check diagnostic procedures", "database_target_id", created.ID, "error", err)
		return created, nil
	}
	if err := s.targets.UpdateProcedureStatus(ctx, nil, created.ID, installed); err != nil {
		return nil, err
	}
	created.HasProcedures = &installed
	return created, nil
}

func (s *diagnosticService) RemoveTarget(ctx context.Context, id uint) (bool, error) {
	lock := s.targetLock(id)
	lock.Lock()
	defer lock.Unlock()

	var removed bool
	err := s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.results.ClearAll(ctx, txx, id); err != nil {
			return err
		}
		var err error
		removed, err = s.targets.Delete(ctx, txx, id)
		return err
	})
	return removed, err
}

func (s *diagnosticService) Refresh(ctx context.Context, kind types.ProcedureKind, databaseTargetID uint) (*types.Run, error) {
	lock := s.targetLock(databaseTargetID)
	lock.Lock()
	defer lock.Unlock()
	return s.refresh(ctx, kind, databaseTargetID)
}

func (s *diagnosticService) refresh(ctx context.Context, kind types.ProcedureKind, databaseTargetID uint) (*types.Run, error) {
	target, err := s.targets.GetByID(ctx, nil, databaseTargetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: id %d", types.ErrUnknownDatabase, databaseTargetID)
	}

	runner, err := s.factory(ctx, target)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	rows, err := runner.ExecuteDiagnostic(ctx, kind)
	if err != nil {
		return nil, err
	}
	run, err := s.results.StoreRun(ctx, nil, kind, databaseTargetID, rows)
	if err != nil {
		return nil, err
	}
	s.log.Info("Refreshed diagnostic run", "procedure", kind, "database_target_id", databaseTargetID, "rows", len(rows))
	return run, nil
}

func (s *diagnosticService) RefreshAll(ctx context.Context, databaseTargetID uint) error {
	lock := s.targetLock(databaseTargetID)
	lock.Lock()
	defer lock.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range types.AllKinds() {
		kind := kind
		g.Go(func() error {
			_, err := s.refresh(gctx, kind, databaseTargetID)
			if err != nil {
				return fmt.Errorf("refresh %s: %w", kind, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *diagnosticService) EnsureDetails(ctx context.Context, databaseTargetID uint, ordinal int) (*types.IndexFindingRecord, error) {
	record, err := s.results.GetRecord(ctx, nil, types.KindBlitzIndex, ordinal, databaseTargetID)
	if err != nil {
		return nil, err
	}
	finding := record.(*types.IndexFindingRecord)
	if finding.DetailsLoaded || !finding.HasSecondaryCommand() {
		return finding, nil
	}

	target, err := s.targets.GetByID(ctx, nil, databaseTargetID)
	if err != nil {
		return nil, err
	}
	runner, err := s.factory(ctx, target)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	pipeline := extract.NewPipeline(runner, s.details, s.log)
	if err := pipeline.ExtractDetails(ctx, finding); err != nil {
		return nil, err
	}
	return finding, nil
}

func (s *diagnosticService) InstallDiagnostics(ctx context.Context, databaseTargetID uint, scriptDir string) (int, error) {
	target, err := s.targets.GetByID(ctx, nil, databaseTargetID)
	if err != nil {
		return 0, err
	}
	if target == nil {
		return 0, fmt.Errorf("%w: id %d", types.ErrUnknownDatabase, databaseTargetID)
	}
	scripts, err := installerScripts(scriptDir)
	if err != nil {
		return 0, err
	}

	runner, err := s.factory(ctx, target)
	if err != nil {
		return 0, err
	}
	defer runner.Close()

	executed := 0
	for _, path := range scripts {
		f, err := os.Open(path)
		if err != nil {
			return executed, err
		}
		n, err := runner.InstallScript(ctx, f)
		f.Close()
		executed += n
		if err != nil {
			return executed, fmt.Errorf("install %s: %w", filepath.Base(path), err)
		}
		s.log.Info("Installed diagnostic script", "script", filepath.Base(path), "batches", n)
	}

	installed, err := runner.CheckDiagnosticProcedures(ctx)
	if err != nil {
		return executed, err
	}
	if err := s.targets.UpdateProcedureStatus(ctx, nil, databaseTargetID, installed); err != nil {
		return executed, err
	}
	return executed, nil
}

func installerScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(scripts)
	return scripts, nil
}
