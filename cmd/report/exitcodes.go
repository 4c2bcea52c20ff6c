package main

// Códigos de saída do report
const (
	ExitOK          = 0 // Relatório gerado
	ExitInvalidArgs = 1 // Flags ou configuração inválidas
	ExitDataError   = 2 // Base inconsistente ou município não encontrado
	ExitIOError     = 3 // Falha ao ler o CSV ou escrever a saída
)

type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string {
	return e.msg
}

func exitError(code int, msg string) error {
	return &exitCodeError{code: code, msg: msg}
}
