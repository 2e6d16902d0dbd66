package game

import "time"

// StaminaPool is the pool name gating grid movement
const StaminaPool = "stamina"

// ResourcePool is a capped counter that regenerates lazily. There is no
// background scheduler: every read goes through Recompute, which applies
// whole regeneration ticks and advances LastRegenAt by exactly the ticks
// consumed so fractional progress toward the next tick is preserved.
type ResourcePool struct {
	Current         int       `json:"current"`
	Max             int       `json:"max"`
	LastRegenAt     time.Time `json:"last_regen_at"`
	RegenIntervalMs int64     `json:"regen_interval_ms"`
	RegenAmount     int       `json:"regen_amount"`
}

// NewResourcePool creates a full pool with regeneration anchored at now
func NewResourcePool(max int, interval time.Duration, amount int, now time.Time) *ResourcePool {
	return &ResourcePool{
		Current:         max,
		Max:             max,
		LastRegenAt:     now,
		RegenIntervalMs: interval.Milliseconds(),
		RegenAmount:     amount,
	}
}

// RegenInterval returns the tick interval as a duration
func (p *ResourcePool) RegenInterval() time.Duration {
	return time.Duration(p.RegenIntervalMs) * time.Millisecond
}

// Recompute applies all whole regeneration ticks elapsed since
// LastRegenAt. Safe under arbitrarily long gaps between reads.
func (p *ResourcePool) Recompute(now time.Time) {
	interval := p.RegenInterval()
	if interval <= 0 || p.RegenAmount <= 0 {
		return
	}

	elapsed := now.Sub(p.LastRegenAt)
	if elapsed < interval {
		return
	}

	ticks := int64(elapsed / interval)
	p.Current += int(ticks) * p.RegenAmount
	if p.Current > p.Max {
		p.Current = p.Max
	}

	// Advance by whole ticks only, never snap to now
	p.LastRegenAt = p.LastRegenAt.Add(time.Duration(ticks) * interval)
}

// HasEnough reports whether the pool can cover cost after regeneration
func (p *ResourcePool) HasEnough(now time.Time, cost int) bool {
	p.Recompute(now)
	return p.Current >= cost
}

// Consume debits cost from the pool. It returns false and leaves the
// pool untouched (beyond regeneration) when the balance is insufficient.
func (p *ResourcePool) Consume(now time.Time, cost int) bool {
	p.Recompute(now)
	if p.Current < cost {
		return false
	}
	p.Current -= cost
	return true
}

// TimeUntilNextRegen returns how long until the next tick lands
func (p *ResourcePool) TimeUntilNextRegen(now time.Time) time.Duration {
	interval := p.RegenInterval()
	if interval <= 0 {
		return 0
	}
	p.Recompute(now)
	return interval - (now.Sub(p.LastRegenAt) % interval)
}
