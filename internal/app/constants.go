package app

// MinPlayersToStartMatch defines the minimum number of occupied seats
// required to start a match. Keep this centralized so tests or local runs
// can adjust the rule without touching multiple call sites.
const MinPlayersToStartMatch = 2
