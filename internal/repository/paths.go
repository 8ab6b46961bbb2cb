package repository

import "strings"

const (
	playersRoot     = "players/"
	coordinatesRoot = "galaxy/coordinates/"
	namesRoot       = "galaxy/names/"
)

// PlayersPrefix is the root under which every player namespace lives.
func PlayersPrefix() string { return playersRoot }

// PlanetPath is the home planet document of a player.
func PlanetPath(playerID string) string {
	return playersRoot + playerID + "/planet"
}

// MissionsPrefix lists a player's active missions.
func MissionsPrefix(playerID string) string {
	return playersRoot + playerID + "/missions/"
}

// MissionPath is one active mission of a player.
func MissionPath(playerID, missionID string) string {
	return MissionsPrefix(playerID) + missionID
}

// ReportsPrefix lists a player's report inbox.
func ReportsPrefix(playerID string) string {
	return playersRoot + playerID + "/reports/"
}

// ReportPath is one report in a player's inbox.
func ReportPath(playerID, reportID string) string {
	return ReportsPrefix(playerID) + reportID
}

// ClaimPath is a key inside one of the global allocation namespaces.
func ClaimPath(namespace, key string) string {
	switch namespace {
	case "coordinates":
		return coordinatesRoot + key
	case "names":
		return namesRoot + key
	default:
		return "galaxy/" + namespace + "/" + key
	}
}

// PlayerIDFromPlanetPath extracts the player id from a PlanetPath.
func PlayerIDFromPlanetPath(path string) (string, bool) {
	if !strings.HasPrefix(path, playersRoot) || !strings.HasSuffix(path, "/planet") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, playersRoot), "/planet")
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
