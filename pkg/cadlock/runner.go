package cadlock

import (
	"fmt"

	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/mirkobrombin/cadlock/pkg/tools"
)

// Open runs the whole viewing flow for the container at the given
// path: parse the footer, gate on the launch budget, count the launch,
// extract the drawing and hand it to a viewer session.
//
// The order is deliberate. The budget check compares the count before
// this launch, so a budget of N admits exactly N viewings, and the
// increment is committed before the viewer is spawned, so a launch
// that reaches the screen is always a counted launch.
//
// Note: a broken ledger does not keep the drawing closed. Ledger
// failures degrade to an uncounted launch with a warning instead of a
// refusal.
func (c *Locker) Open(path string) (err error) {
	path = tools.ResolvePath(path)

	footer, err := ParseContainer(path)
	if err != nil {
		return
	}

	buildId := footer.BuildIdHex()
	logger.Debugf("container %s: build %s, payload %d bytes, budget %d, flags %v",
		path, buildId, footer.PayloadSize, footer.MaxLaunches, codec.FlagNames(footer.SecurityFlags))

	count := uint32(0)
	store, storeErr := NewStore(c.Options.StorePath)
	degraded := storeErr != nil
	if degraded {
		logger.Warnf("%s: %s, assuming first launch", ErrLedgerDegraded, storeErr)
	} else {
		defer store.Close()
		count, storeErr = store.GetLaunchCount(buildId)
		if storeErr != nil {
			logger.Warnf("%s: %s, assuming first launch", ErrLedgerDegraded, storeErr)
			count = 0
			degraded = true
		}
	}

	if footer.MaxLaunches > 0 && count >= footer.MaxLaunches {
		if footer.HasFlag(codec.FlagSelfDestruct) {
			c.scheduleSelfDestruct(path)
		}
		return fmt.Errorf("%w: %d of %d launches used", ErrLaunchLimitReached, count, footer.MaxLaunches)
	}

	if !degraded {
		newCount, incErr := store.IncrementLaunchCount(buildId)
		if incErr != nil {
			logger.Warnf("%s: %s, this launch is not counted", ErrLedgerDegraded, incErr)
		} else {
			count = newCount
		}
	}

	if footer.HasFlag(codec.FlagShowCountdown) && footer.MaxLaunches > 0 {
		remaining := uint32(0)
		if footer.MaxLaunches > count {
			remaining = footer.MaxLaunches - count
		}
		fmt.Printf("You have %d view(s) of this drawing remaining.\n", remaining)
	}

	payload, err := ExtractPayload(path, footer)
	if err != nil {
		return
	}

	return c.StartSession(buildId, path, payload, footer.SecurityFlags)
}
