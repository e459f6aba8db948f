package models

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Fallbacks used when the node omits a field from /v2/pox.
const (
	DefaultCycleLength   int64 = 2100
	DefaultPrepareLength int64 = 100
	UnknownBlocksUntil   int64 = -1
)

// CycleRef identifies a PoX reward cycle.
type CycleRef struct {
	ID int64 `json:"id"`
}

// NextCycleRef is the next_cycle object of /v2/pox. Negative counters mean the
// node could not tell how far away the boundary is.
type NextCycleRef struct {
	ID                      int64 `json:"id"`
	BlocksUntilPreparePhase int64 `json:"blocks_until_prepare_phase"`
	BlocksUntilRewardPhase  int64 `json:"blocks_until_reward_phase"`
}

// CycleInfoRaw is the subset of the node's /v2/pox document the exporter reads.
type CycleInfoRaw struct {
	CurrentCycle                CycleRef     `json:"current_cycle"`
	CurrentBurnchainBlockHeight int64        `json:"current_burnchain_block_height"`
	NextCycle                   NextCycleRef `json:"next_cycle"`
	RewardCycleLength           int64        `json:"reward_cycle_length"`
	PrepareCycleLength          int64        `json:"prepare_cycle_length"`
}

// NewCycleInfoRaw returns a CycleInfoRaw pre-filled with the defaults for
// absent fields. Decoding JSON into it leaves missing fields untouched.
func NewCycleInfoRaw() *CycleInfoRaw {
	return &CycleInfoRaw{
		NextCycle: NextCycleRef{
			BlocksUntilPreparePhase: UnknownBlocksUntil,
			BlocksUntilRewardPhase:  UnknownBlocksUntil,
		},
		RewardCycleLength:  DefaultCycleLength,
		PrepareCycleLength: DefaultPrepareLength,
	}
}

// AddressLockInfo is the stacking part of /extended/v1/address/{addr}/stx.
type AddressLockInfo struct {
	UnlockHeight int64  `json:"burnchain_unlock_height"`
	Locked       string `json:"locked"`
}

// NewAddressLockInfo returns an AddressLockInfo with nothing locked.
func NewAddressLockInfo() *AddressLockInfo {
	return &AddressLockInfo{Locked: "0"}
}

// LockedAmount parses the string-encoded locked balance.
func (a *AddressLockInfo) LockedAmount() (*uint256.Int, error) {
	s := strings.TrimSpace(a.Locked)
	if s == "" {
		return uint256.NewInt(0), nil
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid locked amount %q: %w", a.Locked, err)
	}
	return amount, nil
}

// DerivedMetrics is what one scrape of /v2/pox turns into. When Reachable is
// false every other field is zero and must not be rendered.
type DerivedMetrics struct {
	Reachable bool

	CurrentCycle      int64
	NextCycle         int64
	CurrentBurnHeight int64

	BlocksUntilPrepare int64
	BlocksUntilReward  int64

	// Absolute burn heights, 0 when the node reported an unknown boundary.
	NextPrepareStartBlock int64
	NextRewardStartBlock  int64

	CycleLength   int64
	PrepareLength int64
	RewardLength  int64
}

// RegistrationVerdict tells whether any monitored address stays locked into
// the next reward phase.
type RegistrationVerdict int

const (
	NotConfigured RegistrationVerdict = -1
	NotRegistered RegistrationVerdict = 0
	Registered    RegistrationVerdict = 1
)

func (v RegistrationVerdict) String() string {
	switch v {
	case NotConfigured:
		return "not_configured"
	case NotRegistered:
		return "not_registered"
	case Registered:
		return "registered"
	default:
		return fmt.Sprintf("RegistrationVerdict(%d)", int(v))
	}
}
