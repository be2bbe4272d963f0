package telemetry

import "codeberg.org/veldr/pointerstat/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Recording Errors
	ErrInvalidSample  = errors.ErrorCode("telemetry_invalid_sample")
	ErrRecordFailed   = errors.ErrorCode("telemetry_record_failed")
	ErrOperationAbort = errors.ErrorCode("telemetry_operation_aborted")

	// Storage Errors
	ErrStorageInit   = errors.ErrorCode("telemetry_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("telemetry_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("telemetry_storage_close_failed")

	// Service Errors
	ErrServiceShutdown = errors.ErrorCode("telemetry_service_shutdown_failed")
)
