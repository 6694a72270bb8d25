package llm

import (
	"context"
	"errors"
)

// LLMClient define la interfaz para generar respuestas con un LLM.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// JSONClient pide al proveedor una respuesta que sea un objeto JSON.
type JSONClient interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// VisionClient envia instruccion + imagenes y espera un objeto JSON.
type VisionClient interface {
	GenerateWithImages(ctx context.Context, prompt string, imageURLs []string) (string, error)
}

var (
	// ErrTransport cubre red, timeouts y respuestas HTTP no exitosas.
	ErrTransport = errors.New("llm transport error")
	// ErrMalformedOutput indica que el proveedor respondio pero sin contenido usable.
	ErrMalformedOutput = errors.New("llm malformed output")
)
