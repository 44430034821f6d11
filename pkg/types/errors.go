package types

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConstraint      = errors.New("constraint violation")
	ErrTranscription   = errors.New("transcription failed")
	ErrExtractionParse = errors.New("failed to parse snag extraction response")
	ErrExternalService = errors.New("external service error")
	ErrAlreadySynced   = errors.New("snag already synced to ClickUp")
)

var (
	ErrSnagNotFound  = fmt.Errorf("snag %w", ErrNotFound)
	ErrMediaNotFound = fmt.Errorf("media %w", ErrNotFound)
	ErrAuditNotFound = fmt.Errorf("audit %w", ErrNotFound)
)
