package pox

import "pox-exporter/models"

// ComputeCycle turns a /v2/pox document into absolute phase boundaries.
// A nil document means the node could not be reached.
func ComputeCycle(raw *models.CycleInfoRaw) models.DerivedMetrics {
	if raw == nil {
		return models.DerivedMetrics{Reachable: false}
	}

	height := raw.CurrentBurnchainBlockHeight
	untilPrepare := raw.NextCycle.BlocksUntilPreparePhase
	untilReward := raw.NextCycle.BlocksUntilRewardPhase

	return models.DerivedMetrics{
		Reachable:             true,
		CurrentCycle:          raw.CurrentCycle.ID,
		NextCycle:             raw.NextCycle.ID,
		CurrentBurnHeight:     height,
		BlocksUntilPrepare:    untilPrepare,
		BlocksUntilReward:     untilReward,
		NextPrepareStartBlock: startBlock(height, untilPrepare),
		NextRewardStartBlock:  startBlock(height, untilReward),
		CycleLength:           raw.RewardCycleLength,
		PrepareLength:         raw.PrepareCycleLength,
		RewardLength:          raw.RewardCycleLength - raw.PrepareCycleLength,
	}
}

// startBlock is 0 when the distance to the boundary is unknown (negative).
func startBlock(height, blocksUntil int64) int64 {
	if blocksUntil < 0 {
		return 0
	}
	return height + blocksUntil
}
