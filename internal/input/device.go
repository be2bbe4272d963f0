package input

import (
	"bytes"
	"encoding/binary"

	"codeberg.org/veldr/pointerstat/internal/errors"
	"codeberg.org/veldr/pointerstat/internal/logger"
	"golang.org/x/sys/unix"
)

// Source delivers relative motion events one at a time.
// Poll never blocks: it returns false when no complete motion is available.
type Source interface {
	Poll() (Motion, bool, error)
	Close() error
}

// Device reads motion frames from a Linux evdev character device
type Device struct {
	fd      int
	path    string
	buf     []byte
	reader  *bytes.Reader
	decoder frameDecoder
}

// Open opens an evdev device in non-blocking mode. An empty path
// triggers auto-discovery of the first relative pointing device.
func Open(path string) (*Device, error) {
	errFactory := errors.New()

	if path == "" {
		discovered, err := Discover()
		if err != nil {
			return nil, err
		}
		path = discovered
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errFactory.Wrap(ErrOpenFailed, err).WithData(path)
	}

	logger.Info().Str("device", path).Msg("Opened input device")

	size := binary.Size(rawEvent{})
	buf := make([]byte, size)

	return &Device{
		fd:     fd,
		path:   path,
		buf:    buf,
		reader: bytes.NewReader(buf),
	}, nil
}

// Poll drains available raw events until a motion frame completes or the
// kernel queue is empty. At most one motion is returned per call.
func (d *Device) Poll() (Motion, bool, error) {
	errFactory := errors.New()

	for {
		n, err := unix.Read(d.fd, d.buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				return Motion{}, false, nil
			}
			return Motion{}, false, errFactory.Wrap(ErrReadFailed, err).WithData(d.path)
		}
		if n != len(d.buf) {
			// Short read: discard the partial record
			continue
		}

		d.reader.Reset(d.buf)
		var ev rawEvent
		if err := binary.Read(d.reader, binary.LittleEndian, &ev); err != nil {
			// Skip malformed events
			continue
		}

		if m, ok := d.decoder.feed(ev); ok {
			return m, true, nil
		}
	}
}

// Path returns the device node this source reads from
func (d *Device) Path() string {
	return d.path
}

func (d *Device) Close() error {
	if err := unix.Close(d.fd); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err).WithData(d.path)
	}
	return nil
}
