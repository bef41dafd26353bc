package rank

// ChangeEvent reports that a player's cached rank no longer matched their
// point total and has been moved to a new tier.
type ChangeEvent struct {
	PlayerID    string
	DisplayName string
	From        Tier
	To          Tier
	Promoted    bool
}

// Evaluate recomputes the tier for the given point total and compares it
// against the cached rank name. It returns the tier the profile should now
// carry and, when the name changed, a ChangeEvent describing the move.
// Intermediate tiers crossed in a single mutation produce no extra events;
// only the before/after pair matters.
func Evaluate(playerID, displayName, cachedRank string, points float64) (Tier, *ChangeEvent) {
	newTier := FromPoints(points)
	if newTier.Name == cachedRank {
		return newTier, nil
	}

	oldThreshold := thresholdByName(cachedRank)
	from := FromPoints(float64(oldThreshold))
	return newTier, &ChangeEvent{
		PlayerID:    playerID,
		DisplayName: displayName,
		From:        from,
		To:          newTier,
		Promoted:    newTier.Threshold > oldThreshold,
	}
}
