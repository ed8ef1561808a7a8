package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// MiscastHook is the Lua global called for every miscast:
// on_miscast(spell, severity, flavour).
const MiscastHook = "on_miscast"

// MiscastApplier routes miscasts to Lua. A spell's own scope is preferred;
// the global scripts handle everything else.
type MiscastApplier struct {
	mgr    *Manager
	logger *zap.Logger
}

// NewMiscastApplier returns a MiscastApplier calling into mgr.
//
// Precondition: mgr and logger must be non-nil.
func NewMiscastApplier(mgr *Manager, logger *zap.Logger) *MiscastApplier {
	return &MiscastApplier{mgr: mgr, logger: logger}
}

// ApplyMiscast calls on_miscast with the spell ID, severity and flavour flag.
// Script errors are logged and otherwise ignored.
func (a *MiscastApplier) ApplyMiscast(id spell.ID, severity int, flavour bool) {
	ret, err := a.mgr.CallHook(id.String(), MiscastHook,
		lua.LString(id.String()), lua.LNumber(severity), lua.LBool(flavour))
	if err != nil {
		a.logger.Warn("miscast hook failed", zap.Stringer("spell", id), zap.Error(err))
		return
	}
	a.logger.Debug("miscast applied",
		zap.Stringer("spell", id),
		zap.Int("severity", severity),
		zap.Bool("flavour", flavour),
		zap.String("result", ret.String()),
	)
}
