package csvloader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumns = errors.New("colunas obrigatórias ausentes")
	ErrInvalidValue   = errors.New("valor inválido")
)

// MissingColumnError lista as colunas obrigatórias não encontradas no cabeçalho
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumns
}

// ParseError indica uma célula que não pôde ser convertida
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: linha %d, coluna %s, valor %q: %v", ErrInvalidValue.Error(), e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrInvalidValue, e.Err}
}
