// Package permabuff implements toggleable, persistent buff subscriptions:
// the registry table, the cast toggle protocol, the per-turn upkeep
// evaluator and the bulk lifecycle sweep.
//
// Only Toggler, Dropper and Table.Restore change a subscription's active
// flag. The Evaluator reads it and never writes it.
package permabuff

import "fmt"

// Companion holds the per-subscription values that are meaningful only while
// the subscription is active. It is zeroed on every deactivation.
type Companion struct {
	// Reserve is regeneration's pool of healing still to be paid out.
	Reserve int
	// SlayingBonus is song of slaying's accumulated damage bonus.
	SlayingBonus int
}

// Aux accumulates what a subscription has given and cost over its life.
// Only a bulk sweep that both turns off and ends durations clears it.
type Aux struct {
	Benefit int
	Hunger  int
	MP      int
}

// Subscription is one row of the Table.
type Subscription struct {
	active    bool
	Companion Companion
	Aux       Aux
}

// Active reports whether the subscription is switched on.
func (s Subscription) Active() bool {
	return s.active
}

// Table is one entity's set of permabuff subscriptions plus the global flags
// that are not tied to a single subscription. Every subscription exists
// from construction, inactive.
//
// It is not safe for concurrent use.
type Table struct {
	subs [numIDs]Subscription

	// ShroudRecharge marks that the shroud has absorbed a hit and is rebuilding.
	ShroudRecharge bool
	// ProjectileDebt is magic owed by a projectile-protection effect.
	ProjectileDebt int
}

// NewTable returns a Table with every subscription inactive.
func NewTable() *Table {
	return &Table{}
}

// Active reports whether id is switched on.
func (t *Table) Active(id ID) bool {
	return id.Valid() && t.subs[id].active
}

// Get returns a copy of the subscription for id.
func (t *Table) Get(id ID) Subscription {
	if !id.Valid() {
		return Subscription{}
	}
	return t.subs[id]
}

// ActiveIDs returns the IDs of every active subscription in declaration order.
func (t *Table) ActiveIDs() []ID {
	var out []ID
	for i := range t.subs {
		if t.subs[i].active {
			out = append(out, ID(i))
		}
	}
	return out
}

// SetCompanion updates the companion values for id. Writes to an inactive
// subscription are dropped so nothing carries over into the next activation.
//
// Postcondition: returns true if the write was applied.
func (t *Table) SetCompanion(id ID, c Companion) bool {
	if !t.Active(id) {
		return false
	}
	t.subs[id].Companion = c
	return true
}

// AddAux adds delta to the accumulators for id.
func (t *Table) AddAux(id ID, delta Aux) {
	if !id.Valid() {
		return
	}
	a := &t.subs[id].Aux
	a.Benefit += delta.Benefit
	a.Hunger += delta.Hunger
	a.MP += delta.MP
}

func (t *Table) activate(id ID, start Companion) {
	t.subs[id].active = true
	t.subs[id].Companion = start
}

func (t *Table) deactivate(id ID) {
	t.subs[id].active = false
	t.subs[id].Companion = Companion{}
}

// SubscriptionSnapshot is the persisted form of one subscription.
type SubscriptionSnapshot struct {
	ID        string
	Active    bool
	Companion Companion
	Aux       Aux
}

// Snapshot is the persisted form of a Table.
type Snapshot struct {
	Subscriptions  []SubscriptionSnapshot
	ShroudRecharge bool
	ProjectileDebt int
}

// Snapshot captures the whole table.
func (t *Table) Snapshot() Snapshot {
	snap := Snapshot{
		ShroudRecharge: t.ShroudRecharge,
		ProjectileDebt: t.ProjectileDebt,
	}
	for i, s := range t.subs {
		snap.Subscriptions = append(snap.Subscriptions, SubscriptionSnapshot{
			ID:        idNames[i],
			Active:    s.active,
			Companion: s.Companion,
			Aux:       s.Aux,
		})
	}
	return snap
}

// Restore replaces the table's contents with snap. Subscriptions absent from
// snap are reset. Companion values recorded against an inactive subscription
// are discarded.
//
// Postcondition: on error the Table is unchanged.
func (t *Table) Restore(snap Snapshot) error {
	var next [numIDs]Subscription
	for _, s := range snap.Subscriptions {
		id, err := ParseID(s.ID)
		if err != nil {
			return fmt.Errorf("restoring permabuffs: %w", err)
		}
		next[id] = Subscription{active: s.Active, Aux: s.Aux}
		if s.Active {
			next[id].Companion = s.Companion
		}
	}
	t.subs = next
	t.ShroudRecharge = snap.ShroudRecharge
	t.ProjectileDebt = snap.ProjectileDebt
	return nil
}

// CopyFrom overwrites the table with src's subscriptions and flags.
func (t *Table) CopyFrom(src *Table) {
	t.subs = src.subs
	t.ShroudRecharge = src.ShroudRecharge
	t.ProjectileDebt = src.ProjectileDebt
}
