package dashboard

import "errors"

var (
	ErrDatasetNotLoaded     = errors.New("base de atendimentos ainda não carregada")
	ErrMunicipalityRequired = errors.New("modo de foco exige um município selecionado")
	ErrInvalidRankingSize   = errors.New("tamanho do ranking deve ser positivo")
	ErrReloadAlreadyRunning = errors.New("recarga da base já em andamento")
)
