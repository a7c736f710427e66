package accounting

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"tradeJournal/internal/domain"
)

// RewardRiskInput carries the trade fields the R:R calculation reads.
type RewardRiskInput struct {
	Direction    domain.Direction
	StopLoss     decimal.Decimal
	TrailingStop decimal.Decimal
	CMP          decimal.Decimal
	AvgExitPrice decimal.Decimal
	Status       domain.PositionStatus
}

// EntryRewardRisk is the R:R breakdown of one entry lot.
type EntryRewardRisk struct {
	Label    domain.LotLabel
	Price    decimal.Decimal
	Quantity int64
	Stop     decimal.Decimal
	Risk     decimal.Decimal // per share, never negative
	Reward   decimal.Decimal // per share, signed
	RR       float64         // +Inf when the entry is risk-free
	RiskFree bool
}

// RewardRiskResult exposes both position aggregates. TraditionalRR averages
// the per-entry ratios of risk-bearing entries only, and is +Inf when every
// entry is risk-free. EffectiveRR divides the whole position's reward by its
// risk and is +Inf when nothing is at risk.
type RewardRiskResult struct {
	Entries               []EntryRewardRisk
	TraditionalRR         float64
	EffectiveRR           float64
	HasRiskFreeComponents bool
}

type stoppedEntry struct {
	label domain.LotLabel
	price decimal.Decimal
	stop  decimal.Decimal
}

// StopFor returns the stop protecting an entry lot: the stop-loss for the
// initial entry, the trailing stop for a pyramid when one is set.
func StopFor(label domain.LotLabel, sl, tsl decimal.Decimal) decimal.Decimal {
	if label != domain.Initial && tsl.IsPositive() {
		return tsl
	}
	return sl
}

// RewardRisk computes per-entry and aggregate reward:risk. The reward basis
// follows the position status: CMP for open positions, the average exit
// price for closed ones, and for partial ones a per-entry FIFO blend of
// realized and unrealized reward. A zero CMP means no quote yet, so open
// and unrealized reward is 0 and an unquoted open trade has an R:R of 0.
func RewardRisk(in RewardRiskInput, entries []domain.EntryLot, exits []domain.ExitLot) RewardRiskResult {
	var res RewardRiskResult
	if len(entries) == 0 {
		return res
	}

	lots := make([]Lot[stoppedEntry], len(entries))
	for i, e := range entries {
		lots[i] = Lot[stoppedEntry]{
			Quantity: e.Quantity,
			Payload: stoppedEntry{
				label: e.Label,
				price: e.Price,
				stop:  StopFor(e.Label, in.StopLoss, in.TrailingStop),
			},
		}
	}

	var partial Allocation[stoppedEntry, decimal.Decimal]
	if in.Status == domain.StatusPartial {
		partial = MatchFIFO(lots, exitPriceLots(exits))
	}

	var rrs, weights []float64
	rewardValue, riskValue := decimal.Zero, decimal.Zero
	for i, lot := range lots {
		p := lot.Payload
		qty := decimal.NewFromInt(lot.Quantity)
		risk := signedMove(in.Direction, p.stop, p.price).Abs()

		var reward decimal.Decimal
		switch in.Status {
		case domain.StatusClosed:
			reward = rewardAt(in.Direction, p.price, in.AvgExitPrice)
		case domain.StatusPartial:
			ea := partial.Entries[i]
			realized := rewardAt(in.Direction, p.price, ea.AvgFillPrice(identity))
			unrealized := rewardAt(in.Direction, p.price, in.CMP)
			reward = realized.Mul(decimal.NewFromInt(ea.Matched)).
				Add(unrealized.Mul(decimal.NewFromInt(ea.Open))).
				Div(qty)
		default:
			reward = rewardAt(in.Direction, p.price, in.CMP)
		}

		e := EntryRewardRisk{
			Label:    p.label,
			Price:    p.price,
			Quantity: lot.Quantity,
			Stop:     p.stop,
			Risk:     risk,
			Reward:   reward,
		}
		if risk.IsZero() {
			e.RiskFree = true
			e.RR = math.Inf(1)
			res.HasRiskFreeComponents = true
		} else {
			e.RR = reward.Div(risk).Abs().InexactFloat64()
			rrs = append(rrs, e.RR)
			weights = append(weights, float64(lot.Quantity))
		}
		res.Entries = append(res.Entries, e)

		rewardValue = rewardValue.Add(reward.Mul(qty))
		riskValue = riskValue.Add(risk.Mul(qty))
	}

	switch {
	case len(rrs) > 0:
		res.TraditionalRR = stat.Mean(rrs, weights)
	case res.HasRiskFreeComponents:
		res.TraditionalRR = math.Inf(1)
	}

	if riskValue.IsZero() {
		res.EffectiveRR = math.Inf(1)
	} else {
		res.EffectiveRR = rewardValue.Abs().Div(riskValue).InexactFloat64()
	}
	return res
}

// rewardAt is the per-share reward of exiting at price, or zero when no
// price is known yet.
func rewardAt(dir domain.Direction, entry, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	return signedMove(dir, entry, price)
}

func identity(d decimal.Decimal) decimal.Decimal { return d }
