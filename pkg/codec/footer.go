package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// The container format is a host executable with the encrypted payload
// and a fixed-size footer appended. The footer is the last FooterSize
// bytes of the file; everything before it up to payload size is the
// payload; everything before that is the stub. All integers are
// little-endian.
//
// Layout:
//
//	offset  0: payload size, uint64
//	offset  8: launch budget, uint32 (0 means unlimited)
//	offset 12: build identity, 16 bytes
//	offset 28: security flags, uint32
//	offset 32: magic, 7 sentinel bytes "CADLOCK" + 1 version byte
//
// Historical containers end in "CADLOCK\x00"; the trailing NUL is
// reinterpreted as format version 0, which this package reads and
// writes unchanged.

const (
	// FooterSize is the fixed size in bytes of the container footer.
	FooterSize = 40

	// Version is the container format version this package produces.
	Version = 0
)

// magicSentinel identifies a container footer. The eighth magic byte is
// the format version and is checked separately.
var magicSentinel = [7]byte{'C', 'A', 'D', 'L', 'O', 'C', 'K'}

// Security flags embedded in the footer.
const (
	// FlagMeltdown makes the tamper monitor hard-kill the viewer when a
	// forbidden window title shows up.
	FlagMeltdown uint32 = 1 << 0

	// FlagShowCountdown reports the remaining launch budget to the user
	// on every open.
	FlagShowCountdown uint32 = 1 << 1

	// FlagSelfDestruct deletes the container once the launch budget is
	// exhausted.
	FlagSelfDestruct uint32 = 1 << 2
)

var (
	// ErrNoFooter is returned when the trailing bytes do not carry the
	// magic sentinel, meaning the file is not a container at all.
	ErrNoFooter = errors.New("no container footer found")

	// ErrVersion is returned when the sentinel matches but the version
	// byte is newer than this binary understands.
	ErrVersion = errors.New("unsupported container version")
)

// Footer is the parsed form of a container footer.
type Footer struct {
	// PayloadSize is the size in bytes of the encrypted payload that
	// immediately precedes the footer.
	PayloadSize uint64

	// MaxLaunches is the launch budget. Zero means unlimited.
	MaxLaunches uint32

	// BuildId is the random 16 byte identity minted at build time. It
	// keys the launch ledger.
	BuildId [16]byte

	// SecurityFlags is the flag bitset, see the Flag constants.
	SecurityFlags uint32

	// Version is the format version byte. Only Version is produced,
	// older readers reject anything newer.
	Version byte
}

// Bytes serializes the footer into its fixed 40 byte wire form.
func (f Footer) Bytes() []byte {
	b := make([]byte, FooterSize)
	binary.LittleEndian.PutUint64(b[0:8], f.PayloadSize)
	binary.LittleEndian.PutUint32(b[8:12], f.MaxLaunches)
	copy(b[12:28], f.BuildId[:])
	binary.LittleEndian.PutUint32(b[28:32], f.SecurityFlags)
	copy(b[32:39], magicSentinel[:])
	b[39] = f.Version
	return b
}

// ParseFooter parses the last FooterSize bytes of a container. The
// magic sentinel is compared byte for byte; a wrong sentinel returns
// ErrNoFooter, a right sentinel with an unknown version byte returns
// ErrVersion so callers can tell "not ours" from "too new".
func ParseFooter(b []byte) (f Footer, err error) {
	if len(b) != FooterSize {
		err = fmt.Errorf("ParseFooter: got %d bytes, want %d", len(b), FooterSize)
		return
	}
	for i := range magicSentinel {
		if b[32+i] != magicSentinel[i] {
			err = ErrNoFooter
			return
		}
	}
	if b[39] > Version {
		err = fmt.Errorf("%w: %d", ErrVersion, b[39])
		return
	}
	f.PayloadSize = binary.LittleEndian.Uint64(b[0:8])
	f.MaxLaunches = binary.LittleEndian.Uint32(b[8:12])
	copy(f.BuildId[:], b[12:28])
	f.SecurityFlags = binary.LittleEndian.Uint32(b[28:32])
	f.Version = b[39]
	return
}

// HasFlag reports whether the given security flag is set.
func (f Footer) HasFlag(flag uint32) bool {
	return f.SecurityFlags&flag != 0
}

// BuildIdHex returns the build identity in the lowercase hex form used
// as the ledger key.
func (f Footer) BuildIdHex() string {
	return hex.EncodeToString(f.BuildId[:])
}

// flagNames maps the human names accepted by profiles and printed by
// inspect to their bit values.
var flagNames = map[string]uint32{
	"meltdown":      FlagMeltdown,
	"countdown":     FlagShowCountdown,
	"self-destruct": FlagSelfDestruct,
}

// FlagNames returns the sorted human names of the flags set in the
// given bitset.
func FlagNames(flags uint32) (names []string) {
	for name, bit := range flagNames {
		if flags&bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return
}

// ParseFlagNames converts a list of human flag names into a bitset.
// Unknown names are an error listing the accepted ones.
func ParseFlagNames(names []string) (flags uint32, err error) {
	for _, name := range names {
		bit, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			accepted := make([]string, 0, len(flagNames))
			for n := range flagNames {
				accepted = append(accepted, n)
			}
			sort.Strings(accepted)
			return 0, fmt.Errorf("unknown security flag %q, accepted: %s", name, strings.Join(accepted, ", "))
		}
		flags |= bit
	}
	return
}
