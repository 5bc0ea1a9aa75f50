package metrics

// AgentConfig describes a search agent in an experiment.
type AgentConfig struct {
	ID           int
	Playouts     int
	CPuct        float64
	RolloutLimit int // 0 uses the default limit
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

// UpdateRecord holds the diagnostics of one policy update.
type UpdateRecord struct {
	Batch           int
	KL              float64
	LRMultiplier    float64
	Loss            float64
	Entropy         float64
	ExplainedVarOld float64
	ExplainedVarNew float64
	Epochs          int
}

// ArenaRecord holds the result of one arena evaluation.
type ArenaRecord struct {
	Batch        int
	PurePlayouts int
	Wins         int
	Losses       int
	Ties         int
	WinRatio     float64
}
