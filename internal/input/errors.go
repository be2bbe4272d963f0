package input

import "codeberg.org/veldr/pointerstat/internal/errors"

const (
	// Device lifecycle errors
	ErrOpenFailed  = errors.ErrorCode("input_open_failed")
	ErrCloseFailed = errors.ErrorCode("input_close_failed")
	ErrReadFailed  = errors.ErrorCode("input_read_failed")

	// Discovery errors
	ErrNoPointingDevice = errors.ErrorCode("input_no_pointing_device")
	ErrScanFailed       = errors.ErrorCode("input_device_scan_failed")
)
