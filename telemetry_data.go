// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"context"
	"encoding/json"
	"time"
)

// TelemetryData holds all telemetry data of a package operation.
type TelemetryData struct {
	// ExtractedDirs is the number of extracted directories
	ExtractedDirs int64 `json:"extracted_dirs"`

	// ExtractedFiles is the number of extracted regular files
	ExtractedFiles int64 `json:"extracted_files"`

	// ExtractedHardlinks is the number of extracted hard links
	ExtractedHardlinks int64 `json:"extracted_hardlinks"`

	// ExtractedSymlinks is the number of extracted symlinks
	ExtractedSymlinks int64 `json:"extracted_symlinks"`

	// ExtractedType is the archive member the operation worked on
	ExtractedType string `json:"extracted_type"`

	// ExtractionDuration is the time the operation took
	ExtractionDuration time.Duration `json:"extraction_duration"`

	// ExtractionErrors is the number of errors during extraction
	ExtractionErrors int64 `json:"extraction_errors"`

	// ExtractionSize is the size of the extracted entry data
	ExtractionSize int64 `json:"extraction_size"`

	// InputSize is the number of bytes read from the package file
	InputSize int64 `json:"input_size"`

	// LastExtractionError is the last error during extraction
	LastExtractionError error `json:"last_extraction_error"`

	// PackageName is the name of the package the operation worked on
	PackageName string `json:"package_name"`

	// SkippedEntries is the number of entries that resolved to no
	// installable path or had an unsupported type
	SkippedEntries int64 `json:"skipped_entries"`
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastExtractionError != nil {
		lastError = m.LastExtractionError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastExtractionError string `json:"last_extraction_error"`
		*Alias
	}{
		LastExtractionError: lastError,
		Alias:               (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on [TelemetryData]
// after an operation has finished which can be used to submit the [TelemetryData]
// to a telemetry service, for example.
type TelemetryHook func(context.Context, *TelemetryData)

// Equals returns true if the given [TelemetryData] is equal to the receiver.
func (td *TelemetryData) Equals(other *TelemetryData) bool {
	if td == nil && other == nil {
		return true
	}
	if td == nil || other == nil {
		return false
	}
	return td.ExtractedDirs == other.ExtractedDirs &&
		td.ExtractedFiles == other.ExtractedFiles &&
		td.ExtractedHardlinks == other.ExtractedHardlinks &&
		td.ExtractedSymlinks == other.ExtractedSymlinks &&
		td.ExtractedType == other.ExtractedType &&
		td.ExtractionErrors == other.ExtractionErrors &&
		td.ExtractionSize == other.ExtractionSize &&
		td.PackageName == other.PackageName &&
		td.SkippedEntries == other.SkippedEntries
}
