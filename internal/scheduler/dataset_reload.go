package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/dashboard"
)

// DatasetReloadConfig representa a configuração do agendador de recarga da base
type DatasetReloadConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// DatasetReloadService agenda a recarga periódica da base de atendimentos
type DatasetReloadService struct {
	scheduler           *gocron.Scheduler
	config              DatasetReloadConfig
	dashboard           dashboard.Dashboarder
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastDataset         *domain.DatasetInfo
	lastError           error
}

// NewDatasetReloadService cria uma nova instância do serviço de recarga
func NewDatasetReloadService(dashboardService dashboard.Dashboarder, appConfig *config.Config) *DatasetReloadService {
	reloadConfig := DatasetReloadConfig{
		CronSchedule: appConfig.DatasetReload.CronSchedule,
		SyncEnabled:  appConfig.DatasetReload.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": reloadConfig.CronSchedule,
		"sync_enabled":  reloadConfig.SyncEnabled,
	}).Info("Configuração do agendador de recarga da base carregada")

	return &DatasetReloadService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    reloadConfig,
		dashboard: dashboardService,
	}
}

// Start inicia o agendador
func (s *DatasetReloadService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Recarga agendada da base desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de recarga da base")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.ReloadDataset(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar recarga da base: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de recarga da base")
		s.scheduler.Stop()
	}()

	return nil
}

// ReloadDataset recarrega a base, ignorando a chamada se já houver uma recarga em andamento
func (s *DatasetReloadService) ReloadDataset(ctx context.Context) error {
	if !s.beginSync() {
		logrus.Info("Recarga da base já em andamento, ignorando")
		return dashboard.ErrReloadAlreadyRunning
	}
	return s.runSync(ctx)
}

// TriggerManualSync inicia manualmente uma recarga em background.
// Retorna falso quando já existe uma recarga em andamento.
func (s *DatasetReloadService) TriggerManualSync() bool {
	if !s.beginSync() {
		logrus.Info("Recarga da base já em andamento, ignorando solicitação manual")
		return false
	}

	logrus.Info("Iniciando recarga manual da base")
	go s.runSync(context.Background())
	return true
}

// beginSync marca a recarga como em andamento. Falso se outra já estiver rodando.
func (s *DatasetReloadService) beginSync() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	if s.syncRunning {
		return false
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	return true
}

// runSync executa a recarga já marcada por beginSync e libera a marcação ao final
func (s *DatasetReloadService) runSync(ctx context.Context) error {
	info, err := s.dashboard.Reload(ctx)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	s.syncRunning = false
	s.lastError = err

	if err != nil {
		logrus.WithError(err).Error("Erro ao recarregar base de atendimentos")
		return err
	}

	s.lastDataset = info
	s.lastSyncCompletedAt = time.Now()
	logrus.WithFields(logrus.Fields{
		"dataset_version": info.Version,
		"duration":        s.lastSyncCompletedAt.Sub(s.lastSyncStartedAt).String(),
	}).Info("Recarga da base concluída")

	return nil
}

// IsRunning indica se há uma recarga em andamento
func (s *DatasetReloadService) IsRunning() bool {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	return s.syncRunning
}

// GetStatus retorna o status atual do agendador
func (s *DatasetReloadService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_error":             nil,
		"dataset_version":        nil,
	}

	if s.lastError != nil {
		status["last_error"] = s.lastError.Error()
	}
	if s.lastDataset != nil {
		status["dataset_version"] = s.lastDataset.Version
	}

	return status
}
