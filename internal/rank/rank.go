package rank

// Tier is one rung of the dojo ladder: a point threshold paired with the
// Persian display name and its Japanese counterpart.
type Tier struct {
	Threshold int
	Name      string
	Kanji     string
}

// ladder is ordered by strictly increasing threshold. The first entry has
// threshold 0 so every point total matches at least one tier.
var ladder = []Tier{
	{0, "ولگرد بی‌خانمان", "浮浪者"},
	{5, "شاگرد شمشیرزن", "弟子"},
	{10, "سامورایی جوان", "若侍"},
	{15, "رونین سرگردان", "浪人"},
	{20, "جنگجوی بوشیدو", "武士道の戦士"},
	{25, "نگهبان شوگان", "将軍の守護者"},
	{30, "فرمانده میدان", "指揮官"},
	{35, "استاد شمشیر", "剣の師匠"},
	{40, "سامورایی بزرگ", "大侍"},
	{45, "شوگان", "将軍"},
	{50, "شوگان اعظم", "大将軍"},
}

// Tiers returns a copy of the ladder in ascending threshold order.
func Tiers() []Tier {
	out := make([]Tier, len(ladder))
	copy(out, ladder)
	return out
}

// Index returns the position in the ladder of the highest tier whose
// threshold is at or below the given points.
func Index(points float64) int {
	idx := 0
	for i, t := range ladder {
		if points >= float64(t.Threshold) {
			idx = i
		}
	}
	return idx
}

// FromPoints returns the highest tier whose threshold is at or below points.
func FromPoints(points float64) Tier {
	return ladder[Index(points)]
}

// Next returns the tier directly above the current one for the given points.
// ok is false when the player already sits at the top of the ladder.
func Next(points float64) (next Tier, ok bool) {
	idx := Index(points) + 1
	if idx >= len(ladder) {
		return Tier{}, false
	}
	return ladder[idx], true
}

// thresholdByName maps a cached rank name back to its threshold. Unknown
// names (including the empty string of a fresh profile) map to 0.
func thresholdByName(name string) int {
	for _, t := range ladder {
		if t.Name == name {
			return t.Threshold
		}
	}
	return 0
}
