package aggregating

import (
	"errors"
	"fmt"
)

// Erros específicos da agregação de atendimentos
var (
	ErrNoRecords         = errors.New("nenhum registro de atendimento informado")
	ErrMissingKey        = errors.New("registro sem chave de agrupamento")
	ErrAttributeMismatch = errors.New("atributos estáticos divergentes para o mesmo município")
	ErrNotFound          = errors.New("município não encontrado")
	ErrInvalidStrategy   = errors.New("estratégia de agrupamento inválida")
)

// MissingKeyError indica um registro sem valor em um campo da chave de agrupamento
type MissingKeyError struct {
	Field    string // Campo vazio
	RecordID string // ID do registro
	Row      int    // Linha de origem
}

// Error implementa a interface error
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: campo %s vazio (id=%q, linha %d)", ErrMissingKey.Error(), e.Field, e.RecordID, e.Row)
}

// Unwrap retorna o erro base
func (e *MissingKeyError) Unwrap() error {
	return ErrMissingKey
}

// AttributeMismatchError indica que um registro diverge do primeiro registro do seu município
type AttributeMismatchError struct {
	Municipality string
	Field        string
	Expected     any
	Actual       any
	RecordID     string
	Row          int
}

// Error implementa a interface error
func (e *AttributeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s em %q esperado %v, encontrado %v (id=%q, linha %d)",
		ErrAttributeMismatch.Error(), e.Field, e.Municipality, e.Expected, e.Actual, e.RecordID, e.Row)
}

// Unwrap retorna o erro base
func (e *AttributeMismatchError) Unwrap() error {
	return ErrAttributeMismatch
}

// NotFoundError indica que o município consultado não existe no conjunto agregado
type NotFoundError struct {
	Municipality string
}

// Error implementa a interface error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound.Error(), e.Municipality)
}

// Unwrap retorna o erro base
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IsNotFound verifica se o erro representa um município inexistente
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
