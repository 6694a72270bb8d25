package domain

import "errors"

var (
	// ErrSourceUnavailable: una fuente fallo o expiro; aporta cero candidatos.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNoCandidatesFound no es un fallo: la corrida termina en Done sin obras.
	ErrNoCandidatesFound = errors.New("no candidates found")
	ErrSynthesisFailed   = errors.New("query synthesis failed")
	ErrCurationFailed    = errors.New("curation failed")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrProfileReadFailed = errors.New("taste profile read failed")
	ErrArtworkNotFound   = errors.New("artwork not found")
)
