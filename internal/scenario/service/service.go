// Package service orchestrates scenario rooms: it applies player
// commands serially per room, resolves combat, tracks exhaustion, and
// re-evaluates objectives after every state change.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/emberfall/internal/core/combat"
	apperrors "github.com/louisbranch/emberfall/internal/errors"
	"github.com/louisbranch/emberfall/internal/protocol"
	"github.com/louisbranch/emberfall/internal/scenario/domain"
	"github.com/louisbranch/emberfall/internal/scenario/exhaustion"
	"github.com/louisbranch/emberfall/internal/scenario/objective"
	"github.com/louisbranch/emberfall/internal/storage"
	"github.com/louisbranch/emberfall/internal/telemetry"
)

const tracerName = "github.com/louisbranch/emberfall/internal/scenario/service"

// Service hosts active scenario rooms and applies commands to them.
// It implements protocol.Handler.
type Service struct {
	mu    sync.Mutex
	rooms map[string]*Room

	rules      exhaustion.Rules
	objectives *objective.Engine
	emitter    *telemetry.Emitter
	counters   storage.CounterStore
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRules overrides the exhaustion thresholds.
func WithRules(rules exhaustion.Rules) Option {
	return func(s *Service) { s.rules = rules }
}

// WithEmitter sets the domain notification emitter.
func WithEmitter(emitter *telemetry.Emitter) Option {
	return func(s *Service) { s.emitter = emitter }
}

// WithCounters sets the conditional counter store backing limited-use
// scenario resources.
func WithCounters(counters storage.CounterStore) Option {
	return func(s *Service) { s.counters = counters }
}

// New creates a scenario service.
func New(engine *objective.Engine, logger *slog.Logger, opts ...Option) *Service {
	if engine == nil {
		engine = objective.New(nil, logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		rooms:      make(map[string]*Room),
		rules:      exhaustion.DefaultRules(),
		objectives: engine,
		tracer:     otel.Tracer(tracerName),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRoom registers a room with the service.
func (s *Service) AddRoom(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
}

// RemoveRoom drops a room once its scenario ends.
func (s *Service) RemoveRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

// Room returns a registered room by id.
func (s *Service) Room(roomID string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

// Handle applies one command to its room. Commands for the same room
// run serially under the room lock.
func (s *Service) Handle(ctx context.Context, roomID string, req protocol.Request) error {
	ctx, span := s.tracer.Start(ctx, "scenario.apply_command",
		trace.WithAttributes(
			attribute.String("room.id", roomID),
			attribute.String("command.type", string(req.Command.Type)),
		),
	)
	defer span.End()

	room, ok := s.Room(roomID)
	if !ok {
		return apperrors.New(apperrors.CodeNotConnected, fmt.Sprintf("room %q has no active scenario", roomID))
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	var err error
	switch req.Command.Type {
	case protocol.CommandSelectCards:
		err = s.selectCards(room, req.Command.SelectCards)
	case protocol.CommandMove:
		err = s.move(room, req.Command.Move)
	case protocol.CommandAttack:
		err = s.attack(ctx, room, req.Command.Attack)
	case protocol.CommandEndTurn:
		err = s.endTurn(room, req.Command.EndTurn)
	case protocol.CommandRest:
		err = s.rest(room, req.Command.Rest)
	case protocol.CommandRestDecision:
		err = s.restDecision(ctx, room, req.Command.RestDecision)
	default:
		err = apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("unknown command type %q", req.Command.Type))
	}
	if err != nil {
		return err
	}

	s.evaluateObjectives(ctx, room)
	return nil
}

// actor resolves the acting character and enforces turn legality.
func (s *Service) actor(room *Room, characterID string) (*domain.Character, error) {
	c := room.characterByID(characterID)
	if c == nil {
		return nil, apperrors.New(apperrors.CodeCharacterNotFound, fmt.Sprintf("character %q is not in this scenario", characterID))
	}
	if c.IsExhausted {
		return nil, apperrors.New(apperrors.CodeCharacterExhausted, fmt.Sprintf("%s is exhausted and out of the scenario", c.Name))
	}
	if room.ActiveCharacterID != "" && room.ActiveCharacterID != characterID {
		return nil, apperrors.New(apperrors.CodeNotYourTurn, fmt.Sprintf("it is not %s's turn", c.Name))
	}
	return c, nil
}

func (s *Service) selectCards(room *Room, cmd *protocol.SelectCardsCommand) error {
	c, err := s.actor(room, cmd.CharacterID)
	if err != nil {
		return err
	}
	if len(room.selected[c.ID]) > 0 {
		return apperrors.New(apperrors.CodeCardsAlreadySelected, fmt.Sprintf("%s already selected cards this round", c.Name))
	}
	if len(cmd.CardIDs) != 2 {
		return apperrors.New(apperrors.CodeInvalidAction, "exactly two cards must be selected")
	}
	for _, cardID := range cmd.CardIDs {
		if !c.HasCardInHand(cardID) {
			return apperrors.New(apperrors.CodeCardNotInHand, fmt.Sprintf("card %q is not in %s's hand", cardID, c.Name))
		}
	}
	if cmd.CardIDs[0] == cmd.CardIDs[1] {
		return apperrors.New(apperrors.CodeInvalidAction, "selected cards must be distinct")
	}

	for _, cardID := range cmd.CardIDs {
		for i, id := range c.Hand {
			if id == cardID {
				c.Hand = append(c.Hand[:i], c.Hand[i+1:]...)
				break
			}
		}
		c.ActiveCards = append(c.ActiveCards, cardID)
	}
	room.selected[c.ID] = append([]string(nil), cmd.CardIDs...)
	return nil
}

func (s *Service) move(room *Room, cmd *protocol.MoveCommand) error {
	c, err := s.actor(room, cmd.CharacterID)
	if err != nil {
		return err
	}
	if !room.hasSelected(c.ID, cmd.CardID) {
		return apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("card %q was not selected this round", cmd.CardID))
	}
	stats, ok := room.Cards[cmd.CardID]
	if !ok || stats.Move <= 0 {
		return apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("card %q has no movement", cmd.CardID))
	}
	if len(cmd.Path) == 0 {
		return apperrors.New(apperrors.CodeInvalidHex, "movement path is empty")
	}
	if c.CurrentHex == nil {
		return apperrors.New(apperrors.CodeInvalidHex, fmt.Sprintf("%s is not on the board", c.Name))
	}
	if len(cmd.Path) > stats.Move {
		return apperrors.New(apperrors.CodeInsufficientMovement, fmt.Sprintf("path is %d hexes, card allows %d", len(cmd.Path), stats.Move))
	}

	at := *c.CurrentHex
	for _, step := range cmd.Path {
		if !at.Adjacent(step) {
			return apperrors.New(apperrors.CodeInvalidHex, fmt.Sprintf("hex %s is not adjacent to %s", step.Key(), at.Key()))
		}
		if room.Blocked[step.Key()] || room.hexOccupied(step) {
			return apperrors.New(apperrors.CodeHexBlocked, fmt.Sprintf("hex %s is blocked", step.Key()))
		}
		at = step
	}

	dest := cmd.Path[len(cmd.Path)-1]
	c.CurrentHex = &dest
	return nil
}

func (s *Service) attack(ctx context.Context, room *Room, cmd *protocol.AttackCommand) error {
	c, err := s.actor(room, cmd.CharacterID)
	if err != nil {
		return err
	}
	if !room.hasSelected(c.ID, cmd.CardID) {
		return apperrors.New(apperrors.CodeNoAttackAvailable, fmt.Sprintf("card %q was not selected this round", cmd.CardID))
	}
	stats, ok := room.Cards[cmd.CardID]
	if !ok || stats.Attack <= 0 {
		return apperrors.New(apperrors.CodeNoAttackAvailable, fmt.Sprintf("card %q has no attack", cmd.CardID))
	}

	target := room.monsterByID(cmd.TargetID)
	if target == nil || target.IsDead {
		return apperrors.New(apperrors.CodeTargetNotFound, fmt.Sprintf("target %q is not in this scenario", cmd.TargetID))
	}

	// The ranged property belongs to the card, not the request: a melee
	// card cannot declare itself ranged to dodge retaliate.
	if cmd.Ranged && stats.Range <= 0 {
		return apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("card %q cannot attack at range", cmd.CardID))
	}

	reach := MeleeRange
	if cmd.Ranged {
		reach = stats.Range
	}
	if c.CurrentHex == nil || target.CurrentHex == nil {
		return apperrors.New(apperrors.CodeTargetOutOfRange, "attacker or target is not on the board")
	}
	if dist := c.CurrentHex.Distance(*target.CurrentHex); dist > reach {
		return apperrors.New(apperrors.CodeTargetOutOfRange, fmt.Sprintf("target is %d hexes away, range is %d", dist, reach))
	}

	card := s.drawModifier(room, cmd.Advantage, cmd.Disadvantage)
	damage := combat.Damage(stats.Attack, card)
	damage = combat.ApplyPierce(damage, target.Shield, stats.Pierce)

	target.Health -= damage
	if target.Health <= 0 {
		target.Health = 0
		target.IsDead = true
	}

	s.emit(ctx, room, telemetry.Event{
		Type:   telemetry.EventAttackResolved,
		RoomID: room.ID,
		Attributes: map[string]any{
			"attacker_id": c.ID,
			"target_id":   target.ID,
			"base_attack": stats.Attack,
			"damage":      damage,
			"miss":        card.Modifier.IsMiss(),
			"target_dead": target.IsDead,
		},
	})

	if !target.IsDead && target.Retaliate > 0 {
		healthAfter := combat.ApplyRetaliate(c.Health, target.Retaliate, cmd.Ranged)
		if lost := c.Health - healthAfter; lost > 0 {
			s.damageCharacter(ctx, room, c, lost)
		}
	}
	return nil
}

// drawModifier draws from the room deck, honoring advantage and
// disadvantage. The two flags cancel each other out.
func (s *Service) drawModifier(room *Room, advantage, disadvantage bool) combat.Card {
	first := room.Deck.Draw()
	if advantage == disadvantage {
		return first
	}
	second := room.Deck.Draw()
	if advantage {
		return combat.Advantage(first, second)
	}
	return combat.Disadvantage(first, second)
}

// damageCharacter applies damage to a character, accumulates scenario
// stats, and runs the health-change exhaustion check.
func (s *Service) damageCharacter(ctx context.Context, room *Room, c *domain.Character, amount int) {
	lost := c.ApplyDamage(amount)
	room.Stats.TotalDamageTaken += lost

	check := s.rules.Check(c, exhaustion.TriggerHealthChange)
	if check.Exhausted && !c.IsExhausted {
		s.exhaust(ctx, room, c, check.Reason)
	}
}

// exhaust applies the exhaustion transition and announces it.
func (s *Service) exhaust(ctx context.Context, room *Room, c *domain.Character, reason domain.ExhaustionReason) {
	if err := s.rules.Execute(c, reason); err != nil {
		s.logger.Error("exhaustion transition failed",
			"room_id", room.ID,
			"character_id", c.ID,
			"error", err,
		)
		return
	}
	delete(room.selected, c.ID)

	s.emit(ctx, room, telemetry.Event{
		Type:   telemetry.EventCharacterExhausted,
		RoomID: room.ID,
		Attributes: map[string]any{
			"character_id": c.ID,
			"reason":       string(reason),
		},
	})

	if exhaustion.PartyExhausted(room.Characters) {
		room.Failed = true
		s.emit(ctx, room, telemetry.Event{
			Type:       telemetry.EventScenarioFailed,
			RoomID:     room.ID,
			Attributes: map[string]any{"reason": "party_exhausted"},
		})
	}
}

func (s *Service) endTurn(room *Room, cmd *protocol.EndTurnCommand) error {
	c, err := s.actor(room, cmd.CharacterID)
	if err != nil {
		return err
	}

	// Played cards land in the discard pile; round-bound effects expire.
	c.DiscardPile = append(c.DiscardPile, c.ActiveCards...)
	c.ActiveCards = nil
	kept := c.ActiveEffects[:0]
	for _, effect := range c.ActiveEffects {
		if effect.RoundBound {
			c.DiscardPile = append(c.DiscardPile, effect.CardID)
			continue
		}
		kept = append(kept, effect)
	}
	c.ActiveEffects = kept

	if room.ActiveCharacterID == c.ID {
		room.ActiveCharacterID = ""
	}
	return nil
}

func (s *Service) rest(room *Room, cmd *protocol.RestCommand) error {
	c, err := s.actor(room, cmd.CharacterID)
	if err != nil {
		return err
	}
	if c.IsResting || c.ShortRestState != nil {
		return apperrors.New(apperrors.CodeRestNotAllowed, fmt.Sprintf("%s is already resting", c.Name))
	}
	if len(c.DiscardPile) < s.rules.MinRestCards {
		return apperrors.New(apperrors.CodeInsufficientCardsForRest,
			fmt.Sprintf("%s has %d discarded cards, %d are required to rest", c.Name, len(c.DiscardPile), s.rules.MinRestCards))
	}

	switch cmd.RestType {
	case domain.RestLong:
		return s.longRest(c, cmd.LoseCardID)
	case domain.RestShort:
		return s.shortRest(room, c)
	default:
		return apperrors.New(apperrors.CodeInvalidAction, fmt.Sprintf("unknown rest type %q", cmd.RestType))
	}
}

// longRest loses a chosen discard, recovers the rest, and heals.
func (s *Service) longRest(c *domain.Character, loseCardID string) error {
	found := false
	for i, id := range c.DiscardPile {
		if id == loseCardID {
			c.DiscardPile = append(c.DiscardPile[:i], c.DiscardPile[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return apperrors.New(apperrors.CodeRestNotAllowed, fmt.Sprintf("card %q is not in the discard pile", loseCardID))
	}

	c.LostPile = append(c.LostPile, loseCardID)
	c.Hand = append(c.Hand, c.DiscardPile...)
	c.DiscardPile = nil
	c.Heal(longRestHeal)
	c.RestType = domain.RestNone
	return nil
}

// longRestHeal is the health recovered by a long rest.
const longRestHeal = 2

// shortRest loses a random discard and leaves a pending redraw
// decision for the player.
func (s *Service) shortRest(room *Room, c *domain.Character) error {
	lost := c.DiscardPile[room.rng(len(c.DiscardPile))]
	for i, id := range c.DiscardPile {
		if id == lost {
			c.DiscardPile = append(c.DiscardPile[:i], c.DiscardPile[i+1:]...)
			break
		}
	}

	c.Hand = append(c.Hand, c.DiscardPile...)
	c.DiscardPile = nil
	c.IsResting = true
	c.RestType = domain.RestShort
	c.ShortRestState = &domain.ShortRestState{LostCardID: lost, MayRedraw: true}
	return nil
}

// restDecision resolves a pending short rest: accepting the redraw
// costs one health and loses a different random card instead.
func (s *Service) restDecision(ctx context.Context, room *Room, cmd *protocol.RestDecisionCommand) error {
	c, err := s.actor(room, cmd.CharacterID)
	if err != nil {
		return err
	}
	if c.ShortRestState == nil || !c.ShortRestState.MayRedraw {
		return apperrors.New(apperrors.CodeRestNotAllowed, fmt.Sprintf("%s has no pending rest decision", c.Name))
	}

	state := c.ShortRestState
	if cmd.Accept {
		pool := append([]string{state.LostCardID}, c.Hand...)
		lost := pool[room.rng(len(pool))]
		c.Hand = nil
		for _, id := range pool {
			if id != lost {
				c.Hand = append(c.Hand, id)
			}
		}
		c.LostPile = append(c.LostPile, lost)
		c.IsResting = false
		c.RestType = domain.RestNone
		c.ShortRestState = nil
		s.damageCharacter(ctx, room, c, redrawDamage)
		return nil
	}

	c.LostPile = append(c.LostPile, state.LostCardID)
	c.IsResting = false
	c.RestType = domain.RestNone
	c.ShortRestState = nil
	return nil
}

// redrawDamage is the health cost of redrawing the lost rest card.
const redrawDamage = 1

// StartRound advances the room to the next round and runs the
// round-start exhaustion checks: a character who can neither play two
// cards nor rest leaves play.
func (s *Service) StartRound(ctx context.Context, roomID string) error {
	room, ok := s.Room(roomID)
	if !ok {
		return apperrors.New(apperrors.CodeNotConnected, fmt.Sprintf("room %q has no active scenario", roomID))
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	room.Round++
	room.selected = make(map[string][]string)

	for _, c := range room.Characters {
		if c.IsExhausted {
			continue
		}
		check := s.rules.Check(c, exhaustion.TriggerRoundStart)
		if check.Exhausted {
			s.exhaust(ctx, room, c, check.Reason)
		}
	}

	s.evaluateObjectives(ctx, room)
	return nil
}

// SetActiveCharacter is called by the turn scheduler when initiative
// passes to a character.
func (s *Service) SetActiveCharacter(roomID, characterID string) error {
	room, ok := s.Room(roomID)
	if !ok {
		return apperrors.New(apperrors.CodeNotConnected, fmt.Sprintf("room %q has no active scenario", roomID))
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	room.ActiveCharacterID = characterID
	return nil
}

// CollectLoot consumes a limited-use loot token through the counter
// store's conditional decrement, so two characters cannot both pick up
// the last token, then credits the scenario stats.
func (s *Service) CollectLoot(ctx context.Context, roomID, characterID, tokenID string) error {
	if s.counters == nil {
		return apperrors.New(apperrors.CodeCounterNotFound, "no counter store is configured")
	}
	room, ok := s.Room(roomID)
	if !ok {
		return apperrors.New(apperrors.CodeNotConnected, fmt.Sprintf("room %q has no active scenario", roomID))
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	c := room.characterByID(characterID)
	if c == nil {
		return apperrors.New(apperrors.CodeCharacterNotFound, fmt.Sprintf("character %q is not in this scenario", characterID))
	}

	if _, err := s.counters.DecrementIfAvailable(ctx, roomID+"/loot/"+tokenID); err != nil {
		return err
	}

	room.Stats.LootCollected++
	if room.Stats.LootByID == nil {
		room.Stats.LootByID = make(map[string]int)
	}
	room.Stats.LootByID[tokenID]++

	s.evaluateObjectives(ctx, room)
	return nil
}

// evaluateObjectives re-runs every objective against a fresh snapshot
// and announces progress, milestones, and terminal outcomes.
func (s *Service) evaluateObjectives(ctx context.Context, room *Room) {
	if len(room.Objectives) == 0 {
		return
	}

	snap := room.snapshot()
	allComplete := true
	for _, def := range room.Objectives {
		result := s.objectives.Evaluate(ctx, def, snap)
		if result.Err != "" {
			s.logger.Warn("objective evaluation error",
				"room_id", room.ID,
				"objective_id", def.ID,
				"error", result.Err,
			)
		}

		if result.Failed && !room.Failed {
			room.Failed = true
			s.emit(ctx, room, telemetry.Event{
				Type:       telemetry.EventScenarioFailed,
				RoomID:     room.ID,
				Attributes: map[string]any{"objective_id": def.ID},
			})
		}
		if !result.Complete {
			allComplete = false
		}

		if def.TrackProgress && result.Progress != nil {
			s.announceProgress(ctx, room, def, result.Progress)
		}
	}

	if allComplete && !room.Complete && !room.Failed {
		room.Complete = true
		s.emit(ctx, room, telemetry.Event{
			Type:       telemetry.EventScenarioComplete,
			RoomID:     room.ID,
			Attributes: map[string]any{"round": room.Round},
		})
	}
}

// announceProgress emits a progress event plus one milestone event per
// newly crossed threshold.
func (s *Service) announceProgress(ctx context.Context, room *Room, def objective.Definition, progress *objective.Progress) {
	s.emit(ctx, room, telemetry.Event{
		Type:   telemetry.EventObjectiveProgress,
		RoomID: room.ID,
		Attributes: map[string]any{
			"objective_id": def.ID,
			"current":      progress.Current,
			"target":       progress.Target,
			"percent":      progress.Percent,
		},
	})

	highest := room.milestonesSent[def.ID]
	for _, percent := range progress.MilestonesReached {
		if percent <= highest {
			continue
		}
		attrs := map[string]any{
			"objective_id": def.ID,
			"percent":      percent,
		}
		if message, ok := objective.MilestoneMessage(def, percent); ok {
			attrs["message"] = message
		}
		s.emit(ctx, room, telemetry.Event{
			Type:       telemetry.EventObjectiveMilestone,
			RoomID:     room.ID,
			Attributes: attrs,
		})
		highest = percent
	}
	room.milestonesSent[def.ID] = highest
}

func (s *Service) emit(ctx context.Context, room *Room, evt telemetry.Event) {
	if err := s.emitter.Emit(ctx, evt); err != nil {
		s.logger.Error("event emission failed",
			"room_id", room.ID,
			"event_type", string(evt.Type),
			"error", err,
		)
	}
}
