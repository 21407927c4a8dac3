package game

import (
	"fmt"
	"strings"

	"rps_webapp/internal/domain"
)

// beats maps each hand to the hand it defeats.
var beats = map[domain.Choice]domain.Choice{
	domain.ChoiceRock:     domain.ChoiceScissors,
	domain.ChoiceScissors: domain.ChoicePaper,
	domain.ChoicePaper:    domain.ChoiceRock,
}

// ParseChoice canonicalizes raw input (trim + lowercase) and validates it.
func ParseChoice(raw string) (domain.Choice, error) {
	c := domain.Choice(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidChoice, raw)
	}
	return c, nil
}

// DetermineWinner decides one round. Both hands must be valid.
func DetermineWinner(player, computer domain.Choice) (domain.Result, error) {
	if !player.Valid() {
		return "", fmt.Errorf("%w: player %q", domain.ErrInvalidChoice, player)
	}
	if !computer.Valid() {
		return "", fmt.Errorf("%w: computer %q", domain.ErrInvalidChoice, computer)
	}

	if player == computer {
		return domain.ResultDraw, nil
	}
	if beats[player] == computer {
		return domain.ResultPlayer, nil
	}
	return domain.ResultComputer, nil
}
