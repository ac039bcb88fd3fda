package core

// RuntimeConfig is handed to a game when it starts.
type RuntimeConfig struct {
	ScreenW  int    // Screen width in characters
	ScreenH  int    // Screen height in characters
	TickRate int    // Simulation ticks per second
	Seed     uint32 // Round seed; 0 lets the platform pick one
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal at 30 TPS.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState is what a game reports to the platform after each tick.
type GameState struct {
	Score    int  // Score of the leading seat
	GameOver bool // The round has a result
	Paused   bool
	Winner   int // Winning seat index, -1 while undecided or on a draw
}

// StepResult is returned by Game.Step after each tick.
type StepResult struct {
	State GameState
}
