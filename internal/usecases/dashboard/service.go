// Package dashboard mantém o retrato carregado da base e monta as visões do painel
package dashboard

//go:generate mockgen -source=service.go -destination=mocks/mock_dashboard.go -package=mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"github.com/vfg2006/sus-dashboard-api/internal/config"
	"github.com/vfg2006/sus-dashboard-api/internal/domain"
	"github.com/vfg2006/sus-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sus-dashboard-api/pkg/utils"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RecordSource fornece os registros brutos de atendimento (arquivo CSV ou postgres)
type RecordSource interface {
	Name() string
	Load(ctx context.Context) ([]domain.VisitRecord, error)
}

// Dashboarder é a interface consumida pela API e pelo agendador
type Dashboarder interface {
	Reload(ctx context.Context) (*domain.DatasetInfo, error)
	Dataset() (*domain.DatasetInfo, error)
	View(req domain.ViewRequest) (*domain.DashboardView, error)
	Municipalities(field domain.SortField, descending bool) ([]domain.MunicipalityAggregate, error)
	MunicipalityNames() ([]string, error)
	Lookup(name string) (*domain.MunicipalityAggregate, error)
	Ranking(n int) (*domain.Ranking, error)
}

type Service struct {
	source      RecordSource
	strategy    aggregating.Strategy
	rankingSize int

	mu      sync.RWMutex
	current *domain.Dataset

	reloadMu sync.Mutex
	now      func() time.Time
}

func NewService(source RecordSource, cfg config.Dataset) (*Service, error) {
	strategy, err := aggregating.ParseStrategy(cfg.Grouping)
	if err != nil {
		return nil, err
	}

	if cfg.RankingSize <= 0 {
		return nil, ErrInvalidRankingSize
	}

	return &Service{
		source:      source,
		strategy:    strategy,
		rankingSize: cfg.RankingSize,
		now:         time.Now,
	}, nil
}

// Reload carrega a fonte, reconstrói o conjunto agregado e troca o retrato atual.
// Em caso de erro o retrato anterior continua valendo.
func (s *Service) Reload(ctx context.Context) (*domain.DatasetInfo, error) {
	if !s.reloadMu.TryLock() {
		return nil, ErrReloadAlreadyRunning
	}
	defer s.reloadMu.Unlock()

	startedAt := s.now()

	records, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: erro ao carregar %s: %w", s.source.Name(), err)
	}

	aggregates, err := aggregating.Build(records, aggregating.WithStrategy(s.strategy))
	if err != nil {
		return nil, fmt.Errorf("dashboard: erro ao agregar %s: %w", s.source.Name(), err)
	}

	version, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("dashboard: erro ao gerar versão do dataset: %w", err)
	}

	dataset := &domain.Dataset{
		Version:     version,
		Source:      s.source.Name(),
		LoadedAt:    s.now(),
		RecordCount: len(records),
		Aggregates:  aggregates,
	}

	s.mu.Lock()
	s.current = dataset
	s.mu.Unlock()

	info := datasetInfo(dataset)
	logrus.WithFields(logrus.Fields{
		"dataset_version":      info.Version,
		"dataset_source":       info.Source,
		"records":              info.RecordCount,
		"municipalities":       info.MunicipalityCount,
		"undefined_rate_count": info.UndefinedRateCount,
		"grouping":             s.strategy.String(),
		"duration":             s.now().Sub(startedAt).String(),
	}).Info("dashboard: base de atendimentos recarregada")

	return info, nil
}

func (s *Service) snapshot() (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.current, nil
}

// Dataset retorna o resumo do retrato atual
func (s *Service) Dataset() (*domain.DatasetInfo, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return datasetInfo(dataset), nil
}

// View monta a visão geral ou a visão de foco em um município
func (s *Service) View(req domain.ViewRequest) (*domain.DashboardView, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	switch req.Mode {
	case domain.ViewModeFocus:
		return s.focusView(dataset, req.Municipality)
	case domain.ViewModeOverview, "":
		return s.overviewView(dataset), nil
	default:
		return nil, fmt.Errorf("modo de visualização inválido: %q", req.Mode)
	}
}

func (s *Service) overviewView(dataset *domain.Dataset) *domain.DashboardView {
	aggregates := dataset.Aggregates

	return &domain.DashboardView{
		Mode:           domain.ViewModeOverview,
		DatasetVersion: dataset.Version,
		VolumeChart:    aggregating.SortedByVolume(aggregates, true),
		RateChart:      aggregating.SortedByRate(aggregates, true),
		Ranking:        buildRanking(aggregates, s.rankingSize),
		Map:            BuildMapLayer(aggregates),
	}
}

func (s *Service) focusView(dataset *domain.Dataset, municipality *string) (*domain.DashboardView, error) {
	if municipality == nil || strings.TrimSpace(*municipality) == "" {
		return nil, ErrMunicipalityRequired
	}

	selected, err := aggregating.Lookup(dataset.Aggregates, *municipality)
	if err != nil {
		return nil, err
	}

	focused := []domain.MunicipalityAggregate{selected}
	name := selected.Municipality

	metrics := &domain.FocusMetrics{
		Population:      selected.Population,
		AreaKm2:         selected.AreaKm2,
		LiteracyPercent: selected.LiteracyPercent(),
	}
	if rate, ok := selected.Rate(); ok {
		metrics.VisitsPer100k = &rate
	}

	return &domain.DashboardView{
		Mode:           domain.ViewModeFocus,
		Municipality:   &name,
		DatasetVersion: dataset.Version,
		VolumeChart:    focused,
		Metrics:        metrics,
		Map:            BuildMapLayer(focused),
	}, nil
}

// Municipalities retorna a tabela completa ordenada pelo campo pedido
func (s *Service) Municipalities(field domain.SortField, descending bool) ([]domain.MunicipalityAggregate, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	if field == domain.SortByRate {
		return aggregating.SortedByRate(dataset.Aggregates, descending), nil
	}
	return aggregating.SortedByVolume(dataset.Aggregates, descending), nil
}

// MunicipalityNames retorna os nomes distintos em ordem alfabética (pt-BR), para o seletor do modo de foco
func (s *Service) MunicipalityNames() ([]string, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(dataset.Aggregates))
	names := make([]string, 0, len(dataset.Aggregates))
	for _, aggregate := range dataset.Aggregates {
		if seen[aggregate.Municipality] {
			continue
		}
		seen[aggregate.Municipality] = true
		names = append(names, aggregate.Municipality)
	}

	collator := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(names, func(i, j int) bool {
		return collator.CompareString(names[i], names[j]) < 0
	})

	return names, nil
}

// Lookup busca um município pelo nome exato
func (s *Service) Lookup(name string) (*domain.MunicipalityAggregate, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	aggregate, err := aggregating.Lookup(dataset.Aggregates, name)
	if err != nil {
		return nil, err
	}
	return &aggregate, nil
}

// Ranking retorna top e bottom n por taxa. n <= 0 usa o tamanho configurado.
func (s *Service) Ranking(n int) (*domain.Ranking, error) {
	dataset, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	if n <= 0 {
		n = s.rankingSize
	}
	return buildRanking(dataset.Aggregates, n), nil
}

func buildRanking(aggregates []domain.MunicipalityAggregate, n int) *domain.Ranking {
	return &domain.Ranking{
		Size:   n,
		Top:    aggregating.TopByRate(aggregates, n),
		Bottom: aggregating.BottomByRate(aggregates, n),
	}
}

// BuildMapLayer posiciona cada município no seu centroide e calcula a extensão dos pontos
func BuildMapLayer(aggregates []domain.MunicipalityAggregate) domain.MapLayer {
	layer := domain.MapLayer{Points: make([]domain.MapPoint, 0, len(aggregates))}
	if len(aggregates) == 0 {
		return layer
	}

	bounds := geom.NewBounds(geom.XY)
	for _, aggregate := range aggregates {
		point := geom.NewPointFlat(geom.XY, []float64{aggregate.CentroidLongitude, aggregate.CentroidLatitude})
		bounds.Extend(point)

		mapPoint := domain.MapPoint{
			Municipality: aggregate.Municipality,
			Longitude:    point.X(),
			Latitude:     point.Y(),
			VisitVolume:  aggregate.VisitVolume,
			Population:   aggregate.Population,
		}
		if rate, ok := aggregate.Rate(); ok {
			mapPoint.VisitsPer100k = &rate
		}
		layer.Points = append(layer.Points, mapPoint)
	}

	layer.Bounds = &domain.Bounds{
		MinLongitude: bounds.Min(0),
		MinLatitude:  bounds.Min(1),
		MaxLongitude: bounds.Max(0),
		MaxLatitude:  bounds.Max(1),
	}

	return layer
}

func datasetInfo(dataset *domain.Dataset) *domain.DatasetInfo {
	undefined := 0
	for _, aggregate := range dataset.Aggregates {
		if _, ok := aggregate.Rate(); !ok {
			undefined++
		}
	}

	return &domain.DatasetInfo{
		Version:            dataset.Version,
		Source:             dataset.Source,
		LoadedAt:           dataset.LoadedAt,
		RecordCount:        dataset.RecordCount,
		MunicipalityCount:  len(dataset.Aggregates),
		UndefinedRateCount: undefined,
	}
}
