package pox

import (
	"context"

	"go.uber.org/zap"

	"pox-exporter/logger"
	"pox-exporter/models"
)

// AddressLockLookup fetches the stacking lock of a single address.
type AddressLockLookup interface {
	FetchAddressLock(ctx context.Context, address string) (*models.AddressLockInfo, error)
}

// ResolveRegistration reports whether any address keeps STX locked past
// nextRewardStart, i.e. is stacked into the next reward phase.
//
// Addresses are checked one at a time in the given order and the first locked
// one wins. A failed lookup only skips that address.
func ResolveRegistration(ctx context.Context, addresses []string, nextRewardStart int64, lookup AddressLockLookup) models.RegistrationVerdict {
	if len(addresses) == 0 {
		return models.NotConfigured
	}

	for _, addr := range addresses {
		info, err := lookup.FetchAddressLock(ctx, addr)
		if err != nil {
			logger.Logger.Debug("Address lookup failed, skipping",
				zap.String("address", addr), zap.Error(err))
			continue
		}

		locked, err := info.LockedAmount()
		if err != nil {
			logger.Logger.Debug("Unparsable locked amount, skipping",
				zap.String("address", addr), zap.Error(err))
			continue
		}

		// strict: unlocking exactly at the reward start means not stacked for it
		if !locked.IsZero() && info.UnlockHeight > nextRewardStart {
			return models.Registered
		}
	}

	return models.NotRegistered
}
