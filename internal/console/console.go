// Package console runs the interactive line-oriented front end: it reads
// commands, drives a selfench.Session and prints the game's messages.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/command"
	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/player"
	"github.com/cory-johannsen/selfench/internal/game/selfench"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// maxTurnsPerCommand bounds "turn N" so a typo cannot hang the console.
const maxTurnsPerCommand = 100

// ErrQuit is returned by Exec when the player asks to leave.
var ErrQuit = errors.New("quit")

// Store persists the caster between runs. *postgres.BuffStateRepository
// satisfies it.
type Store interface {
	Save(ctx context.Context, s player.Snapshot) error
	Load(ctx context.Context, id uuid.UUID) (player.Snapshot, error)
}

// Config holds the console's collaborators.
type Config struct {
	Session  *selfench.Session
	Book     *spell.Book
	Registry *command.Registry
	// Store is nil when persistence is disabled.
	Store    Store
	DropDice dice.Expression
	Logger   *zap.Logger
}

// Console is the interactive front end. It is not safe for concurrent use.
type Console struct {
	cfg Config
	in  *bufio.Scanner
	out io.Writer
}

// New returns a Console reading commands from in and writing to out.
//
// Precondition: cfg.Session, cfg.Book, cfg.Registry and cfg.Logger are non-nil.
func New(cfg Config, in *bufio.Scanner, out io.Writer) *Console {
	return &Console{cfg: cfg, in: in, out: out}
}

// Run reads and executes commands until quit, end of input or ctx is done.
//
// Postcondition: returns nil on quit or end of input, ctx.Err() on cancellation.
func (c *Console) Run(ctx context.Context) error {
	c.printf("Welcome, %s. Type 'help' for commands.\n", c.player().Name)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.printf("> ")
		if !c.in.Scan() {
			c.printf("\n")
			return c.in.Err()
		}
		err := c.Exec(ctx, c.in.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.printf("%v\n", err)
		}
	}
}

// Exec runs one command line.
//
// Postcondition: returns ErrQuit for quit, a player-facing error for bad
// input, or nil.
func (c *Console) Exec(ctx context.Context, line string) error {
	parsed := command.Parse(line)
	if parsed.Command == "" {
		return nil
	}
	cmd, ok := c.cfg.Registry.Resolve(parsed.Command)
	if !ok {
		return fmt.Errorf("unknown command %q; try 'help'", parsed.Command)
	}
	if command.NeedsDatabase(cmd.Handler) && c.cfg.Store == nil {
		return errors.New("persistence is disabled")
	}
	c.cfg.Logger.Debug("command", zap.String("handler", cmd.Handler), zap.Strings("args", parsed.Args))

	switch cmd.Handler {
	case command.HandlerCast:
		return c.cast(parsed)
	case command.HandlerTurn:
		return c.turn(parsed)
	case command.HandlerSlay:
		return c.slay(parsed)
	case command.HandlerHit:
		return c.hit(parsed)
	case command.HandlerDrop:
		return c.drop(parsed)
	case command.HandlerLearn:
		return c.learn(parsed)
	case command.HandlerForget:
		c.cfg.Session.SelectiveAmnesia("")
		return nil
	case command.HandlerStatus:
		c.status()
		return nil
	case command.HandlerSpells:
		c.spells()
		return nil
	case command.HandlerSave:
		return c.save(ctx)
	case command.HandlerLoad:
		return c.load(ctx)
	case command.HandlerHelp:
		c.help()
		return nil
	case command.HandlerQuit:
		c.printf("Goodbye.\n")
		return ErrQuit
	}
	return fmt.Errorf("command %q has no handler", cmd.Name)
}

func (c *Console) player() *player.Player {
	return c.cfg.Session.Player()
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// resolveSpell maps the arguments to a spell ID. An exact ID wins; otherwise
// a unique prefix among the memorised spells is accepted.
func (c *Console) resolveSpell(parsed command.ParseResult) (spell.ID, error) {
	name := parsed.Identifier()
	if name == "" {
		return "", errors.New("which spell?")
	}
	if id, err := spell.ParseID(name); err == nil {
		return id, nil
	}
	var matches []spell.ID
	for _, id := range c.player().Memorised {
		if strings.HasPrefix(id.String(), name) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no spell matches %q", parsed.RawArgs)
	}
	return "", fmt.Errorf("%q is ambiguous", parsed.RawArgs)
}

func (c *Console) memorised(id spell.ID) bool {
	for _, m := range c.player().Memorised {
		if m == id {
			return true
		}
	}
	return false
}

func (c *Console) cast(parsed command.ParseResult) error {
	id, err := c.resolveSpell(parsed)
	if err != nil {
		return err
	}
	if !c.memorised(id) {
		return fmt.Errorf("you don't have %s memorised", id)
	}
	res, err := c.cfg.Session.Cast(id)
	if err != nil {
		return err
	}
	// Only a successful cast costs a turn.
	if res.Billable() {
		c.cfg.Session.EndTurn()
	}
	return nil
}

// countArg reads an optional positive first argument, defaulting to 1 and
// capped at maxTurnsPerCommand.
func countArg(parsed command.ParseResult, what string) (int, error) {
	if len(parsed.Args) == 0 {
		return 1, nil
	}
	v, err := strconv.Atoi(parsed.Args[0])
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", what, parsed.Args[0])
	}
	return min(v, maxTurnsPerCommand), nil
}

func (c *Console) turn(parsed command.ParseResult) error {
	n, err := countArg(parsed, "turn count")
	if err != nil {
		return err
	}
	healed := 0
	for range n {
		healed += c.cfg.Session.EndTurn().Healed
	}
	if healed > 0 {
		c.printf("You regenerate %d HP.\n", healed)
	}
	return nil
}

func (c *Console) slay(parsed command.ParseResult) error {
	n, err := countArg(parsed, "kill count")
	if err != nil {
		return err
	}
	if !c.cfg.Session.AddSlayingBonus(n) {
		return errors.New("you aren't singing a song of slaying")
	}
	bonus := c.player().Permabuffs.Get(permabuff.Song).Companion.SlayingBonus
	c.printf("Your song swells. Slaying bonus %+d.\n", bonus)
	return nil
}

// hit takes one blow. A working shroud deflects it; otherwise the damage
// lands and the turn ends.
func (c *Console) hit(parsed command.ParseResult) error {
	dmg, err := countArg(parsed, "damage")
	if err != nil {
		return err
	}
	if !c.cfg.Session.AbsorbWithShroud() {
		p := c.player()
		p.SetHP(p.HP - dmg)
		c.printf("You take %d damage.\n", dmg)
	}
	c.cfg.Session.EndTurn()
	return nil
}

func (c *Console) drop(parsed command.ParseResult) error {
	opts := permabuff.DropOptions{
		TurnOff:           parsed.HasFlag("off"),
		EndDurations:      parsed.HasFlag("end", "expire"),
		IncreaseDurations: parsed.HasFlag("extend", "increase"),
		Dice:              c.cfg.DropDice,
	}
	if !opts.TurnOff && !opts.EndDurations && !opts.IncreaseDurations {
		return errors.New("usage: drop [off] [end] [extend]")
	}
	c.cfg.Session.DropPermabuffs(opts)
	return nil
}

func (c *Console) learn(parsed command.ParseResult) error {
	id, err := c.resolveSpell(parsed)
	if err != nil {
		return err
	}
	def, ok := c.cfg.Book.Get(id)
	if !ok {
		return fmt.Errorf("%s is not in the spell book", id)
	}
	if c.memorised(id) {
		return fmt.Errorf("you already know %s", def.Name)
	}
	p := c.player()
	if free := p.SpellLevelsFree(c.cfg.Book); def.Level > free {
		return fmt.Errorf("%s needs %d spell levels; you have %d free", def.Name, def.Level, free)
	}
	p.Learn(id)
	c.printf("You memorise %s.\n", def.Name)
	return nil
}

func (c *Console) status() {
	p := c.player()
	form := string(p.Form)
	if form == "" {
		form = "none"
	}
	c.printf("%s  HP %d/%d  Form: %s\n", p.Name, p.HP, p.MaxHP, form)

	var timers []string
	for _, id := range duration.All() {
		if n := p.Durations.Remaining(id); n > 0 {
			timers = append(timers, fmt.Sprintf("%s(%d)", id, n))
		}
	}
	if len(timers) == 0 {
		timers = append(timers, "none")
	}
	c.printf("Timers: %s\n", strings.Join(timers, " "))

	for _, id := range permabuff.All() {
		sub := p.Permabuffs.Get(id)
		state := "off"
		if sub.Active() {
			state = "on"
		}
		c.printf("  %-9s %-3s reserve=%d bonus=%d benefit=%d\n",
			id, state, sub.Companion.Reserve, sub.Companion.SlayingBonus, sub.Aux.Benefit)
	}
}

func (c *Console) spells() {
	p := c.player()
	if len(p.Memorised) == 0 {
		c.printf("You don't know any spells.\n")
		return
	}
	for i, id := range p.Memorised {
		name, level := id.String(), 0
		if def, ok := c.cfg.Book.Get(id); ok {
			name, level = def.Name, def.Level
		}
		c.printf("%c - %-20s level %d\n", slotLetter(i), name, level)
	}
	c.printf("%d spell levels free.\n", p.SpellLevelsFree(c.cfg.Book))
}

func (c *Console) save(ctx context.Context) error {
	p := c.player()
	if err := c.cfg.Store.Save(ctx, p.Snapshot()); err != nil {
		c.cfg.Logger.Error("saving player", zap.Stringer("player", p.ID), zap.Error(err))
		return errors.New("save failed")
	}
	c.printf("Saved %s (%s).\n", p.Name, p.ID)
	return nil
}

func (c *Console) load(ctx context.Context) error {
	p := c.player()
	snap, err := c.cfg.Store.Load(ctx, p.ID)
	if err != nil {
		c.cfg.Logger.Warn("loading player", zap.Stringer("player", p.ID), zap.Error(err))
		return errors.New("nothing to load")
	}
	if err := p.Restore(snap); err != nil {
		c.cfg.Logger.Error("restoring player", zap.Stringer("player", p.ID), zap.Error(err))
		return errors.New("saved state is corrupt")
	}
	c.printf("Loaded %s.\n", p.Name)
	return nil
}

func (c *Console) help() {
	cats := c.cfg.Registry.CommandsByCategory()
	for _, cat := range c.cfg.Registry.Categories() {
		c.printf("%s:\n", cat)
		for _, cmd := range cats[cat] {
			c.printf("  %-8s %s\n", cmd.Name, cmd.Help)
		}
	}
}

func slotLetter(i int) rune {
	if i < 26 {
		return rune('a' + i)
	}
	return rune('A' + i - 26)
}
