package simulation

// Reward shaping and geometry thresholds
const (
	TimePenalty          = -1.0
	CollisionPenalty     = -100.0
	LandingReward        = 100.0
	CrashLandingPenalty  = -50.0
	OutOfBoundsPenalty   = -10.0
	TerminationThreshold = -200.0

	CollisionDistance = 30.0
	BoundsMargin      = 50.0
)
