package input

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/veldr/pointerstat/internal/errors"
)

const devicesList = "/proc/bus/input/devices"

// Discover scans the kernel device list for the first handler that the
// input core classified as a mouse and returns its event node path.
func Discover() (string, error) {
	errFactory := errors.New()

	f, err := os.Open(devicesList)
	if err != nil {
		return "", errFactory.Wrap(ErrScanFailed, err)
	}
	defer f.Close()

	node, err := scanDevices(f)
	if err != nil {
		return "", err
	}

	return filepath.Join("/dev/input", node), nil
}

// scanDevices finds the event node of the first mouse handler in a
// /proc/bus/input/devices listing.
func scanDevices(r io.Reader) (string, error) {
	errFactory := errors.New()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "H: Handlers=") {
			continue
		}

		fields := strings.Fields(strings.TrimPrefix(line, "H: Handlers="))
		isMouse := false
		event := ""
		for _, f := range fields {
			if strings.HasPrefix(f, "mouse") {
				isMouse = true
			}
			if strings.HasPrefix(f, "event") {
				event = f
			}
		}
		if isMouse && event != "" {
			return event, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errFactory.Wrap(ErrScanFailed, err)
	}

	return "", errFactory.New(ErrNoPointingDevice)
}
