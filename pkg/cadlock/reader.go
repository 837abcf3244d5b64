package cadlock

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/cadlock/pkg/codec"
)

// The reader works on any named file, it never assumes it is reading
// the running executable. Self launch just passes the resolved path of
// the current binary.

// ParseContainer reads and validates the trailing footer of the
// container at the given path. Anything that keeps the file from being
// opened as a container comes back wrapped in ErrInvalidContainer,
// other errors are plain I/O failures.
func ParseContainer(path string) (footer codec.Footer, err error) {
	f, err := os.Open(path)
	if err != nil {
		return footer, fmt.Errorf("ParseContainer: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return footer, fmt.Errorf("ParseContainer: %w", err)
	}

	if info.Size() < codec.FooterSize {
		return footer, fmt.Errorf("%w: %s is smaller than a footer", ErrInvalidContainer, path)
	}

	buf := make([]byte, codec.FooterSize)
	if _, err = f.ReadAt(buf, info.Size()-codec.FooterSize); err != nil {
		return footer, fmt.Errorf("ParseContainer: %w", err)
	}

	footer, err = codec.ParseFooter(buf)
	if err != nil {
		// both sentinels stay visible through errors.Is
		return footer, fmt.Errorf("%w: %w", ErrInvalidContainer, err)
	}

	// The payload occupies the bytes immediately before the footer, so
	// it must fit in what is left of the file.
	if footer.PayloadSize > uint64(info.Size()-codec.FooterSize) {
		return footer, fmt.Errorf("%w: payload of %d bytes does not fit in a %d byte file", ErrInvalidContainer, footer.PayloadSize, info.Size())
	}

	return footer, nil
}

// IsContainer reports whether the file at the given path carries a
// valid container footer.
func IsContainer(path string) bool {
	_, err := ParseContainer(path)
	return err == nil
}

// ExtractPayload reads the encrypted payload preceding the footer and
// returns it decrypted. The footer should come from ParseContainer on
// the same path; the geometry is still re-checked in case the file
// changed in between.
func ExtractPayload(path string, footer codec.Footer) (payload []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ExtractPayload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("ExtractPayload: %w", err)
	}

	start := info.Size() - codec.FooterSize - int64(footer.PayloadSize)
	if start < 0 {
		return nil, fmt.Errorf("%w: payload of %d bytes does not fit in a %d byte file", ErrInvalidContainer, footer.PayloadSize, info.Size())
	}

	payload = make([]byte, footer.PayloadSize)
	if footer.PayloadSize == 0 {
		return payload, nil
	}
	if _, err = f.ReadAt(payload, start); err != nil {
		return nil, fmt.Errorf("ExtractPayload: %w", err)
	}

	codec.Apply(payload, []byte(codec.DefaultKey))
	return payload, nil
}
