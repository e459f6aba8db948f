package pox_test

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pox-exporter/logger"
	"pox-exporter/models"
)

func init() {
	logger.Logger = zap.NewNop()
}

type lockResult struct {
	info *models.AddressLockInfo
	err  error
}

type mockRepo struct {
	mu       sync.Mutex
	cycle    *models.CycleInfoRaw
	cycleErr error
	locks    map[string]lockResult
	lookups  []string
}

func newMockRepo(cycle *models.CycleInfoRaw) *mockRepo {
	return &mockRepo{cycle: cycle, locks: make(map[string]lockResult)}
}

func (m *mockRepo) FetchCycleInfo(ctx context.Context) (*models.CycleInfoRaw, error) {
	if m.cycleErr != nil {
		return nil, m.cycleErr
	}
	c := *m.cycle
	return &c, nil
}

func (m *mockRepo) FetchAddressLock(ctx context.Context, address string) (*models.AddressLockInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, address)
	res, ok := m.locks[address]
	if !ok {
		return nil, fmt.Errorf("address %s not found", address)
	}
	return res.info, res.err
}

func (m *mockRepo) setLock(address string, locked string, unlockHeight int64) {
	m.locks[address] = lockResult{info: &models.AddressLockInfo{Locked: locked, UnlockHeight: unlockHeight}}
}

func (m *mockRepo) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookups...)
}

// exampleCycle is cycle 84 at burn height 900000, 50 blocks before prepare.
func exampleCycle() *models.CycleInfoRaw {
	raw := models.NewCycleInfoRaw()
	raw.CurrentCycle.ID = 84
	raw.CurrentBurnchainBlockHeight = 900000
	raw.NextCycle.ID = 85
	raw.NextCycle.BlocksUntilPreparePhase = 50
	raw.NextCycle.BlocksUntilRewardPhase = 150
	raw.RewardCycleLength = 2100
	raw.PrepareCycleLength = 100
	return raw
}
