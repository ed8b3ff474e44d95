package domain

import "sort"

// Standing is one user's position in a ranking scope.
type Standing struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// RankStandings orders by points descending, then user id ascending, and
// assigns 1-based ordinal ranks. Equal points never share a rank.
func RankStandings(standings []Standing) []Standing {
	ranked := make([]Standing, len(standings))
	copy(ranked, standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// FindStanding returns the standing of userID, or nil when the user is not in
// the ranked population.
func FindStanding(ranked []Standing, userID string) *Standing {
	for i := range ranked {
		if ranked[i].UserID == userID {
			s := ranked[i]
			return &s
		}
	}
	return nil
}
