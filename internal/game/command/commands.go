// Package command provides the console command registry, parser, and the
// built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryMagic  = "magic"
	CategoryCombat = "combat"
	CategoryTime   = "time"
	CategoryInfo   = "info"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to console handlers.
const (
	HandlerCast   = "cast"
	HandlerTurn   = "turn"
	HandlerDrop   = "drop"
	HandlerLearn  = "learn"
	HandlerForget = "forget"
	HandlerSlay   = "slay"
	HandlerHit    = "hit"
	HandlerStatus = "status"
	HandlerSpells = "spells"
	HandlerSave   = "save"
	HandlerLoad   = "load"
	HandlerHelp   = "help"
	HandlerQuit   = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command for the help listing.
	Category string
	// Handler names the console handler that runs the command.
	Handler string
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "cast", Aliases: []string{"z", "c"}, Help: "Cast a spell (cast <spell>)", Category: CategoryMagic, Handler: HandlerCast},
		{Name: "drop", Aliases: []string{"dispel"}, Help: "Sweep every permabuff (drop [off] [end] [extend])", Category: CategoryMagic, Handler: HandlerDrop},
		{Name: "learn", Aliases: []string{"memorise", "mem"}, Help: "Memorise a spell (learn <spell>)", Category: CategoryMagic, Handler: HandlerLearn},
		{Name: "forget", Aliases: []string{"amnesia"}, Help: "Forget a memorised spell", Category: CategoryMagic, Handler: HandlerForget},

		{Name: "slay", Aliases: []string{"kill"}, Help: "Credit kills to the song of slaying (slay [count])", Category: CategoryCombat, Handler: HandlerSlay},
		{Name: "hit", Aliases: []string{"struck"}, Help: "Take a hit the shroud may deflect (hit [damage])", Category: CategoryCombat, Handler: HandlerHit},

		{Name: "turn", Aliases: []string{"t", "wait", "."}, Help: "End the turn (turn [count])", Category: CategoryTime, Handler: HandlerTurn},

		{Name: "status", Aliases: []string{"st", "@"}, Help: "Show HP, form, timers and permabuffs", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "spells", Aliases: []string{"sp", "i"}, Help: "List memorised spells", Category: CategoryInfo, Handler: HandlerSpells},

		{Name: "save", Aliases: nil, Help: "Save the caster to the database", Category: CategorySystem, Handler: HandlerSave},
		{Name: "load", Aliases: nil, Help: "Load the caster from the database", Category: CategorySystem, Handler: HandlerLoad},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the console", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// NeedsDatabase reports whether the handler only works with persistence on.
func NeedsDatabase(handler string) bool {
	return handler == HandlerSave || handler == HandlerLoad
}
