package topics

const (
	// Preços
	PriceUpdates = "price_updates"

	// Ciclo de vida das rodadas
	RoundOpened = "round_opened"
	RoundClosed = "round_closed"

	// Apostas e prêmios
	WagerPlaced     = "wager_placed"
	WinningsClaimed = "winnings_claimed"
)
