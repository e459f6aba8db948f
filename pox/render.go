package pox

import (
	"strconv"
	"strings"

	"pox-exporter/models"
)

const (
	MetricUp                  = "stacks_pox_up"
	MetricBlocksUntilPrepare  = "stacks_pox_blocks_until_prepare_phase"
	MetricBlocksUntilReward   = "stacks_pox_blocks_until_reward_phase"
	MetricCurrentCycle        = "stacks_pox_current_cycle"
	MetricNextCycle           = "stacks_pox_next_cycle"
	MetricCurrentBurnHeight   = "stacks_pox_current_burn_height"
	MetricNextPrepareStart    = "stacks_pox_next_prepare_start_block"
	MetricNextRewardStart     = "stacks_pox_next_reward_start_block"
	MetricCycleLength         = "stacks_pox_cycle_length"
	MetricPrepareLength       = "stacks_pox_prepare_length"
	MetricRewardLength        = "stacks_pox_reward_length"
	MetricInfo                = "stacks_pox_info"
	MetricRegisteredNextCycle = "stacks_pox_registered_next_cycle"
)

type metricDesc struct {
	name string
	help string
}

// Declared for every scrape, reachable or not, in this order.
var metricDescs = []metricDesc{
	{MetricUp, "1 if Stacks node API is reachable"},
	{MetricBlocksUntilPrepare, "Blocks until next prepare phase starts"},
	{MetricBlocksUntilReward, "Blocks until next reward phase starts"},
	{MetricCurrentCycle, "Current PoX cycle number"},
	{MetricNextCycle, "Next PoX cycle number"},
	{MetricCurrentBurnHeight, "Current Bitcoin block height"},
	{MetricNextPrepareStart, "Block number where next prepare phase starts"},
	{MetricNextRewardStart, "Block number where next reward phase starts"},
	{MetricCycleLength, "PoX cycle length in blocks"},
	{MetricPrepareLength, "Prepare phase length in blocks"},
	{MetricRewardLength, "Reward phase length in blocks"},
	{MetricInfo, "PoX cycle metadata"},
	{MetricRegisteredNextCycle, "1 if registered for next cycle, 0 if not, -1 if not configured"},
}

// Render writes the exposition document for one scrape. Only the preamble and
// the up gauge are written when m is unreachable; verdict is ignored then.
func Render(m models.DerivedMetrics, verdict models.RegistrationVerdict) string {
	var b strings.Builder

	for _, d := range metricDescs {
		b.WriteString("# HELP " + d.name + " " + d.help + "\n")
		b.WriteString("# TYPE " + d.name + " gauge\n")
	}

	if !m.Reachable {
		writeSample(&b, MetricUp, 0)
		return b.String()
	}
	writeSample(&b, MetricUp, 1)

	writeSample(&b, MetricBlocksUntilPrepare, m.BlocksUntilPrepare)
	writeSample(&b, MetricBlocksUntilReward, m.BlocksUntilReward)
	writeSample(&b, MetricCurrentCycle, m.CurrentCycle)
	writeSample(&b, MetricNextCycle, m.NextCycle)
	writeSample(&b, MetricCurrentBurnHeight, m.CurrentBurnHeight)
	writeSample(&b, MetricNextPrepareStart, m.NextPrepareStartBlock)
	writeSample(&b, MetricNextRewardStart, m.NextRewardStartBlock)
	writeSample(&b, MetricCycleLength, m.CycleLength)
	writeSample(&b, MetricPrepareLength, m.PrepareLength)
	writeSample(&b, MetricRewardLength, m.RewardLength)

	// label values are plain integers, nothing to escape
	b.WriteString(MetricInfo +
		`{current_cycle="` + strconv.FormatInt(m.CurrentCycle, 10) +
		`",next_cycle="` + strconv.FormatInt(m.NextCycle, 10) +
		`",burn_height="` + strconv.FormatInt(m.CurrentBurnHeight, 10) +
		`"} 1` + "\n")

	writeSample(&b, MetricRegisteredNextCycle, int64(verdict))

	return b.String()
}

func writeSample(b *strings.Builder, name string, value int64) {
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(value, 10))
	b.WriteByte('\n')
}
