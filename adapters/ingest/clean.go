package ingest

import (
	"log"

	"datastory/domain/table"
)

// CleaningConfig controls the optional post-coercion cleanup pass.
// Disabled by default: the extractor handles missing values and extreme
// rows itself, so cleaning is only for callers that want a tidied table
// for display or export.
type CleaningConfig struct {
	Enabled     bool    `json:"enabled"`
	FillMissing bool    `json:"fill_missing"` // median-fill numeric gaps
	ClipValues  bool    `json:"clip_values"`  // clip numerics to the IQR fence
	IQRFactor   float64 `json:"iqr_factor"`
}

// DefaultCleaningConfig returns the disabled default
func DefaultCleaningConfig() CleaningConfig {
	return CleaningConfig{
		Enabled:     false,
		FillMissing: true,
		ClipValues:  true,
		IQRFactor:   1.5,
	}
}

// Cleaner applies the configured cleanup to numeric columns in place
type Cleaner struct {
	config CleaningConfig
}

// NewCleaner creates a cleaner with the given config
func NewCleaner(config CleaningConfig) *Cleaner {
	return &Cleaner{config: config}
}

// Clean mutates the typed table per the config. Column statistics are
// recomputed for every touched column.
func (c *Cleaner) Clean(t *table.TypedTable) {
	if !c.config.Enabled {
		return
	}

	touched := 0
	for i := range t.Columns {
		column := &t.Columns[i]
		if column.Kind != table.KindNumeric || column.NonNull == 0 {
			continue
		}
		changed := false
		if c.config.FillMissing {
			changed = c.fillMissing(column) || changed
		}
		if c.config.ClipValues {
			changed = c.clipToFence(column) || changed
		}
		if changed {
			column.Stats = table.ColumnStats{Numeric: numericStats(column)}
			touched++
		}
	}

	if touched > 0 {
		log.Printf("[Cleaner] Cleaned %d numeric columns", touched)
	}
}

func (c *Cleaner) fillMissing(column *table.TypedColumn) bool {
	median := column.Stats.Numeric.Median
	changed := false
	for i := range column.Values {
		if column.Values[i].Missing {
			column.Values[i] = table.NewNumericValue(median)
			column.NonNull++
			changed = true
		}
	}
	return changed
}

func (c *Cleaner) clipToFence(column *table.TypedColumn) bool {
	s := column.Stats.Numeric
	iqr := s.Q75 - s.Q25
	if iqr == 0 {
		return false
	}
	lower := s.Q25 - c.config.IQRFactor*iqr
	upper := s.Q75 + c.config.IQRFactor*iqr

	changed := false
	for i := range column.Values {
		v := &column.Values[i]
		if v.Missing {
			continue
		}
		if v.Number < lower {
			v.Number = lower
			changed = true
		} else if v.Number > upper {
			v.Number = upper
			changed = true
		}
	}
	return changed
}
