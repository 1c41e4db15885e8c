package ingest

import (
	"log"

	"datastory/domain/table"
	apperrors "datastory/internal/errors"
)

// LoaderConfig aggregates the ingestion settings
type LoaderConfig struct {
	Encoding EncodingConfig `json:"encoding"`
	Coercion CoercionConfig `json:"coercion"`
	Cleaning CleaningConfig `json:"cleaning"`
}

// DefaultLoaderConfig returns sensible defaults (cleaning disabled)
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Encoding: DefaultEncodingConfig(),
		Coercion: DefaultCoercionConfig(),
		Cleaning: DefaultCleaningConfig(),
	}
}

// Loader turns raw uploaded bytes into a typed table. Loading is pure
// and repeatable: the same bytes always produce the same table.
type Loader struct {
	config  LoaderConfig
	coercer *TypeCoercer
	cleaner *Cleaner
}

// NewLoader creates a loader with the given config
func NewLoader(config LoaderConfig) *Loader {
	return &Loader{
		config:  config,
		coercer: NewTypeCoercer(config.Coercion),
		cleaner: NewCleaner(config.Cleaning),
	}
}

// Load sniffs the container format (XLSX workbook or delimited text),
// decodes, infers column kinds, and coerces every cell.
func (l *Loader) Load(raw []byte) (*table.TypedTable, error) {
	if len(raw) == 0 {
		return nil, apperrors.InvalidInput("input is empty")
	}

	rawTable, err := l.loadRaw(raw)
	if err != nil {
		return nil, err
	}

	typed, err := l.coercer.CoerceTable(rawTable)
	if err != nil {
		return nil, err
	}

	if l.config.Cleaning.Enabled {
		l.cleaner.Clean(typed)
	}

	log.Printf("[Loader] Loaded %s", typed)
	return typed, nil
}

func (l *Loader) loadRaw(raw []byte) (*table.RawTable, error) {
	if IsXLSX(raw) {
		return ParseXLSX(raw)
	}

	text, enc, err := DetectEncoding(raw, l.config.Encoding)
	if err != nil {
		return nil, err
	}
	return ParseCSV(text, enc)
}
